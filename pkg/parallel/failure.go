package parallel

import "sync/atomic"

type captured struct {
	err error
}

// failureLatch keeps the first failure reported by any unit of one call.
// It moves from empty to captured exactly once; later reports are dropped.
type failureLatch struct {
	first   atomic.Pointer[captured]
	dropped atomic.Int64
}

// tryCapture stores err if no failure has been captured yet and reports
// whether it won. Safe for concurrent use.
func (l *failureLatch) tryCapture(err error) bool {
	if l.first.CompareAndSwap(nil, &captured{err: err}) {
		return true
	}
	l.dropped.Add(1)
	return false
}

// drain returns the captured failure, if any. Only the orchestrating
// goroutine calls it, after every unit has joined.
func (l *failureLatch) drain() error {
	if c := l.first.Load(); c != nil {
		return c.err
	}
	return nil
}

// droppedCount returns how many failures lost the race to tryCapture.
func (l *failureLatch) droppedCount() int64 {
	return l.dropped.Load()
}
