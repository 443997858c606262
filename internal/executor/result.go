package executor

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CountSuccessful returns the number of successful results (no error)
func CountSuccessful(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Error == nil {
			count++
		}
	}
	return count
}

// CountFailed returns the number of failed results (has error)
func CountFailed(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Error != nil {
			count++
		}
	}
	return count
}

// FilterFailed returns only the failed results
func FilterFailed(results []Result) []Result {
	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// GroupByWorker groups results by the worker that ran them
func GroupByWorker(results []Result) map[int][]Result {
	grouped := make(map[int][]Result)
	for _, r := range results {
		grouped[r.Worker] = append(grouped[r.Worker], r)
	}
	return grouped
}

// Workers returns the distinct worker ids seen in results, ascending
func Workers(results []Result) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0)
	for _, r := range results {
		if !seen[r.Worker] {
			seen[r.Worker] = true
			ids = append(ids, r.Worker)
		}
	}
	sort.Ints(ids)
	return ids
}

// Elements returns the total number of indices covered by results
func Elements(results []Result) int64 {
	var n int64
	for _, r := range results {
		n += r.End - r.Begin
	}
	return n
}

// AverageDuration calculates the average duration of all results
func AverageDuration(results []Result) time.Duration {
	if len(results) == 0 {
		return 0
	}

	var total time.Duration
	for _, r := range results {
		total += r.Duration
	}

	return total / time.Duration(len(results))
}

// MaxDuration returns the maximum duration among all results
func MaxDuration(results []Result) time.Duration {
	if len(results) == 0 {
		return 0
	}

	max := results[0].Duration
	for _, r := range results {
		if r.Duration > max {
			max = r.Duration
		}
	}
	return max
}

// MinDuration returns the minimum duration among all results
func MinDuration(results []Result) time.Duration {
	if len(results) == 0 {
		return 0
	}

	min := results[0].Duration
	for _, r := range results {
		if r.Duration < min {
			min = r.Duration
		}
	}
	return min
}

// Summary provides a summary of execution results
type Summary struct {
	Total       int
	Successful  int
	Failed      int
	Workers     int
	Elements    int64
	AvgDuration time.Duration
	MaxDuration time.Duration
	MinDuration time.Duration
}

// Summarize creates a summary of the results
func Summarize(results []Result) Summary {
	return Summary{
		Total:       len(results),
		Successful:  CountSuccessful(results),
		Failed:      CountFailed(results),
		Workers:     len(Workers(results)),
		Elements:    Elements(results),
		AvgDuration: AverageDuration(results),
		MaxDuration: MaxDuration(results),
		MinDuration: MinDuration(results),
	}
}

// Imbalance returns MaxDuration/AvgDuration, 1.0 for a perfectly balanced run
func (s Summary) Imbalance() float64 {
	if s.AvgDuration <= 0 {
		return 0
	}
	return float64(s.MaxDuration) / float64(s.AvgDuration)
}

// String returns a human-readable string representation of the summary
func (s Summary) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Chunks: %d, ", s.Total))
	sb.WriteString(fmt.Sprintf("Workers: %d, ", s.Workers))
	sb.WriteString(fmt.Sprintf("Elements: %d, ", s.Elements))
	sb.WriteString(fmt.Sprintf("Failed: %d", s.Failed))

	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf(", Avg: %s", s.AvgDuration.Round(time.Microsecond)))
		sb.WriteString(fmt.Sprintf(", Max: %s", s.MaxDuration.Round(time.Microsecond)))
		sb.WriteString(fmt.Sprintf(", Min: %s", s.MinDuration.Round(time.Microsecond)))
	}

	return sb.String()
}

// HasErrors returns true if any results contain errors
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.Error != nil {
			return true
		}
	}
	return false
}
