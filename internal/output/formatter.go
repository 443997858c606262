package output

import (
	"io"

	"github.com/aryankumar/forkjoin/internal/executor"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs data as a borderless, tab-separated table
	FormatTable Format = "table"
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	// Format outputs a single data item to the writer
	Format(w io.Writer, data interface{}) error

	// FormatChunks outputs one row per executed chunk followed, for tables,
	// by a summary line
	FormatChunks(w io.Writer, results []executor.Result) error
}

// Tabular is implemented by values with a natural table layout. The table
// formatter renders them row by row; JSON and YAML encode the value itself.
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// ChunkRecord is the serialized form of one executor.Result
type ChunkRecord struct {
	Chunk    int    `json:"chunk" yaml:"chunk"`
	Worker   int    `json:"worker" yaml:"worker"`
	Begin    int64  `json:"begin" yaml:"begin"`
	End      int64  `json:"end" yaml:"end"`
	Elements int64  `json:"elements" yaml:"elements"`
	Status   string `json:"status" yaml:"status"`
	Duration string `json:"duration" yaml:"duration"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewChunkRecords converts results to their serialized form, keeping order
func NewChunkRecords(results []executor.Result) []ChunkRecord {
	records := make([]ChunkRecord, len(results))
	for i, r := range results {
		rec := ChunkRecord{
			Chunk:    r.Index,
			Worker:   r.Worker,
			Begin:    r.Begin,
			End:      r.End,
			Elements: r.End - r.Begin,
			Status:   "success",
			Duration: r.Duration.String(),
		}
		if r.Error != nil {
			rec.Status = "failed"
			rec.Error = r.Error.Error()
		}
		records[i] = rec
	}
	return records
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide enables wide output with additional columns
	Wide bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) Option {
	return func(o *Options) {
		o.Wide = wide
	}
}

// ParseFormat maps a user-supplied name to a Format, reporting whether it
// is known
func ParseFormat(name string) (Format, bool) {
	switch f := Format(name); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, true
	case "":
		return FormatTable, true
	default:
		return FormatTable, false
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
