package parallel

// DivUp returns ceil(x / y) for x >= 0 and y > 0. It does not overflow for
// any x up to math.MaxInt64.
func DivUp(x, y int64) int64 {
	q := x / y
	if x%y != 0 {
		q++
	}
	return q
}

// Chunk is one contiguous sub-range of a partitioned range.
type Chunk struct {
	Index int   `json:"index" yaml:"index"`
	Begin int64 `json:"begin" yaml:"begin"`
	End   int64 `json:"end" yaml:"end"`
}

// Len returns the number of indices in the chunk.
func (c Chunk) Len() int64 {
	return c.End - c.Begin
}

// Plan describes how a call partitions its range.
//
// Plans are deterministic in (begin, end, grainSize, threads, nested).
type Plan struct {
	// Parallel is false when the whole range runs as one unit on the
	// calling goroutine.
	Parallel bool `json:"parallel" yaml:"parallel"`

	// Threads is the number of workers the call uses, 0 for an empty range.
	Threads int `json:"threads" yaml:"threads"`

	// ChunkSize is the nominal length of each chunk; the last may be shorter.
	ChunkSize int64 `json:"chunkSize" yaml:"chunkSize"`

	// Chunks lists the non-empty sub-ranges in ascending order.
	Chunks []Chunk `json:"chunks" yaml:"chunks"`
}

func sequentialPlan(begin, end int64) Plan {
	return Plan{
		Threads:   1,
		ChunkSize: end - begin,
		Chunks:    []Chunk{{Index: 0, Begin: begin, End: end}},
	}
}

// PlanFor returns the partition For uses for [begin, end) given the number
// of available threads and whether the caller is already inside a parallel
// region.
//
// The range is split into T = min(threads, ceil(n/grainSize)) chunks of
// ceil(n/T) indices (T = threads when grainSize is 0). Ceiling rounding can
// leave trailing chunks empty; those are omitted.
func PlanFor(begin, end, grainSize int64, threads int, nested bool) Plan {
	if begin >= end {
		return Plan{}
	}

	n := end - begin
	if n <= grainSize || n <= 1 || threads <= 1 || nested {
		return sequentialPlan(begin, end)
	}

	t := int64(threads)
	if grainSize > 0 {
		t = min(t, DivUp(n, grainSize))
	}
	chunkSize := DivUp(n, t)

	chunks := make([]Chunk, 0, t)
	for i := int64(0); i < t; i++ {
		// offsets stay below n, so begin+off never wraps
		off := i * chunkSize
		if off >= n {
			break
		}
		b := begin + off
		chunks = append(chunks, Chunk{
			Index: int(i),
			Begin: b,
			End:   b + min(n-off, chunkSize),
		})
	}

	return Plan{
		Parallel:  true,
		Threads:   len(chunks),
		ChunkSize: chunkSize,
		Chunks:    chunks,
	}
}

// PlanReduce returns the partition Reduce uses for [begin, end).
//
// Chunks are grainSize long (a grain size of 0 yields one chunk per index)
// and are queued onto min(threads, chunks) workers.
func PlanReduce(begin, end, grainSize int64, threads int, nested bool) Plan {
	if begin >= end {
		return Plan{}
	}

	n := end - begin
	if n <= grainSize || nested || threads <= 1 {
		return sequentialPlan(begin, end)
	}

	g := max(grainSize, 1)
	count := DivUp(n, g)

	chunks := make([]Chunk, count)
	for i := int64(0); i < count; i++ {
		b := begin + i*g
		chunks[i] = Chunk{
			Index: int(i),
			Begin: b,
			End:   b + min(end-b, g),
		}
	}

	return Plan{
		Parallel:  true,
		Threads:   int(min(int64(threads), count)),
		ChunkSize: g,
		Chunks:    chunks,
	}
}
