package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aryankumar/forkjoin/internal/executor"
	"github.com/olekukonko/tablewriter"
)

// imbalanceWarnRatio is the max/avg chunk duration ratio above which the
// summary highlights the imbalance
const imbalanceWarnRatio = 2.0

// TableFormatter formats output as a table
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case nil:
		return nil
	case Tabular:
		return f.formatTabular(w, v)
	case []executor.Result:
		return f.FormatChunks(w, v)
	case map[string]interface{}:
		return f.formatMap(f.createTable(w), v)
	case []map[string]interface{}:
		return f.formatMapSlice(f.createTable(w), v)
	case string:
		fmt.Fprintln(w, v)
		return nil
	default:
		fmt.Fprintln(w, v)
		return nil
	}
}

// FormatChunks outputs one row per chunk and a summary line
func (f *TableFormatter) FormatChunks(w io.Writer, results []executor.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No chunks")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"CHUNK", "WORKER", "RANGE", "ELEMENTS", "STATUS", "DURATION"}
	if f.options.Wide {
		headers = append(headers, "ERROR")
	}
	f.setHeaders(table, headers, colors)

	for _, result := range results {
		table.Append(f.formatResultRow(result, colors))
	}

	table.Render()

	f.printSummary(w, results, colors)

	return nil
}

// formatResultRow formats a single chunk result as a table row
func (f *TableFormatter) formatResultRow(result executor.Result, colors *ColorScheme) []string {
	status := "Success"
	if result.Error != nil {
		status = "Failed"
	}

	row := []string{
		colors.Chunk("%d", result.Index),
		strconv.Itoa(result.Worker),
		fmt.Sprintf("[%d,%d)", result.Begin, result.End),
		strconv.FormatInt(result.End-result.Begin, 10),
		colors.StatusColor(result.Error != nil)("%s", status),
		colors.Duration("%s", result.Duration.Round(time.Microsecond)),
	}

	if f.options.Wide {
		errStr := ""
		if result.Error != nil {
			errStr = result.Error.Error()
			if len(errStr) > 50 {
				errStr = errStr[:47] + "..."
			}
		}
		row = append(row, errStr)
	}

	return row
}

// formatTabular renders a Tabular value
func (f *TableFormatter) formatTabular(w io.Writer, data Tabular) error {
	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)
	f.setHeaders(table, data.Headers(), colors)
	table.AppendBulk(data.Rows())
	table.Render()
	return nil
}

// formatMap formats a map as a two-column table sorted by key
func (f *TableFormatter) formatMap(table *tablewriter.Table, data map[string]interface{}) error {
	if !f.options.NoHeaders {
		table.SetHeader([]string{"KEY", "VALUE"})
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		table.Append([]string{k, fmt.Sprintf("%v", data[k])})
	}

	table.Render()
	return nil
}

// formatMapSlice formats a slice of maps as a table with sorted columns
func (f *TableFormatter) formatMapSlice(table *tablewriter.Table, data []map[string]interface{}) error {
	if len(data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data[0]))
	for k := range data[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if !f.options.NoHeaders {
		headers := make([]string, len(keys))
		for i, k := range keys {
			headers[i] = strings.ToUpper(k)
		}
		table.SetHeader(headers)
	}

	for _, item := range data {
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = fmt.Sprintf("%v", item[k])
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

func (f *TableFormatter) setHeaders(table *tablewriter.Table, headers []string, colors *ColorScheme) {
	if f.options.NoHeaders {
		return
	}
	if colors.Disabled {
		table.SetHeader(headers)
		return
	}
	colored := make([]string, len(headers))
	for i, h := range headers {
		colored[i] = colors.Header("%s", h)
	}
	table.SetHeader(colored)
}

// createTable creates a new borderless, tab-separated table
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

// printSummary prints a summary of the chunk results
func (f *TableFormatter) printSummary(w io.Writer, results []executor.Result, colors *ColorScheme) {
	summary := executor.Summarize(results)

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: ")

	successText := colors.Success("%d successful", summary.Successful)

	failedText := fmt.Sprintf("%d failed", summary.Failed)
	if summary.Failed > 0 {
		failedText = colors.Error("%s", failedText)
	}

	durationText := colors.Duration("avg=%s", summary.AvgDuration.Round(time.Microsecond))

	imbalance := summary.Imbalance()
	imbalanceText := fmt.Sprintf("imbalance=%.2f", imbalance)
	if imbalance > imbalanceWarnRatio {
		imbalanceText = colors.Warning("%s", imbalanceText)
	}

	fmt.Fprintf(w, "%s, %s, %d workers, %d elements, %s, %s\n",
		successText, failedText, summary.Workers, summary.Elements, durationText, imbalanceText)
}
