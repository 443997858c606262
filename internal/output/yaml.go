package output

import (
	"io"

	"github.com/aryankumar/forkjoin/internal/executor"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{
		options: opts,
	}
}

// Format outputs a single data item as YAML
func (f *YAMLFormatter) Format(w io.Writer, data interface{}) error {
	if results, ok := data.([]executor.Result); ok {
		return f.FormatChunks(w, results)
	}
	return f.encode(w, data)
}

// FormatChunks outputs chunk results as a YAML sequence
func (f *YAMLFormatter) FormatChunks(w io.Writer, results []executor.Result) error {
	return f.encode(w, NewChunkRecords(results))
}

func (f *YAMLFormatter) encode(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(data)
}
