// Package output renders forkjoin command results as tables, JSON or YAML.
//
// Every formatter implements [Formatter]: Format encodes an arbitrary value,
// FormatChunks renders the per-chunk results of a parallel run. Values that
// implement [Tabular] get their own column layout in table mode and are
// encoded as-is in JSON and YAML mode.
//
// # Basic Usage
//
//	formatter := output.NewFormatter(output.FormatTable, output.WithWide(true))
//	formatter.FormatChunks(os.Stdout, results)
//
// # Table Output
//
// Tables are borderless and tab-separated. Chunk tables list the chunk index,
// the worker that ran it, its range, element count, status and duration, and
// end with a summary line including the max/avg duration imbalance. Wide mode
// adds the error column.
//
// # Color Support
//
// Colors are enabled only when writing to a terminal, detected with
// go-isatty, and can be turned off with WithNoColor(true).
package output
