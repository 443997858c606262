package cli

import (
	"fmt"
	"strconv"

	"github.com/aryankumar/forkjoin/internal/util"
	"github.com/aryankumar/forkjoin/pkg/parallel"
	"github.com/spf13/cobra"
)

// planView renders a parallel.Plan with one row per chunk
type planView struct {
	Kind      string `json:"kind" yaml:"kind"`
	Begin     int64  `json:"begin" yaml:"begin"`
	End       int64  `json:"end" yaml:"end"`
	GrainSize int64  `json:"grainSize" yaml:"grainSize"`

	parallel.Plan `yaml:",inline"`
}

func (v planView) Headers() []string {
	return []string{"CHUNK", "BEGIN", "END", "ELEMENTS"}
}

func (v planView) Rows() [][]string {
	rows := make([][]string, len(v.Chunks))
	for i, c := range v.Chunks {
		rows[i] = []string{
			strconv.Itoa(c.Index),
			strconv.FormatInt(c.Begin, 10),
			strconv.FormatInt(c.End, 10),
			strconv.FormatInt(c.Len(), 10),
		}
	}
	return rows
}

type planOptions struct {
	begin  int64
	end    int64
	grain  int64
	reduce bool
	nested bool
}

// newPlanCmd creates the plan command
func newPlanCmd(a *app) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how a range would be partitioned",
		Long: `Show the chunks a For or Reduce call would split [begin, end) into with
the current thread count, without running anything.`,
		Example: `  # Partition one million indices with the default grain size
  forkjoin plan --end 1000000

  # Partition for a reduction on 4 threads
  forkjoin plan --end 100 --grain 8 --reduce -t 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("grain") {
				opts.grain = a.cfg.Defaults.GrainSize
			}
			return runPlan(cmd, a, opts)
		},
	}

	cmd.Flags().Int64Var(&opts.begin, "begin", 0, "first index of the range")
	cmd.Flags().Int64Var(&opts.end, "end", 0, "index one past the last of the range")
	cmd.Flags().Int64Var(&opts.grain, "grain", 0, "grain size (default from config)")
	cmd.Flags().BoolVar(&opts.reduce, "reduce", false, "partition as Reduce instead of For")
	cmd.Flags().BoolVar(&opts.nested, "nested", false, "partition as if called from inside a parallel region")

	return cmd
}

func validatePlanOptions(opts *planOptions) error {
	var rangeErr, grainErr error
	if opts.begin > opts.end {
		rangeErr = util.NewValidationError("end", opts.end, fmt.Sprintf("must not be less than begin (%d)", opts.begin))
	}
	if opts.grain < 0 {
		grainErr = util.NewValidationError("grain", opts.grain, "must be non-negative")
	}
	if err := util.CombineErrors(rangeErr, grainErr); err != nil {
		return fmt.Errorf("%w: %w", util.ErrInvalidRange, err)
	}
	return nil
}

func runPlan(cmd *cobra.Command, a *app, opts *planOptions) error {
	if err := validatePlanOptions(opts); err != nil {
		return err
	}

	formatter, err := a.formatter()
	if err != nil {
		return err
	}

	threads := a.runtime().MaxThreads()
	view := planView{Kind: "for", Begin: opts.begin, End: opts.end, GrainSize: opts.grain}
	if opts.reduce {
		view.Kind = "reduce"
		view.Plan = parallel.PlanReduce(opts.begin, opts.end, opts.grain, threads, opts.nested)
	} else {
		view.Plan = parallel.PlanFor(opts.begin, opts.end, opts.grain, threads, opts.nested)
	}

	out := cmd.OutOrStdout()
	if a.isTable() {
		mode := "sequential"
		if view.Parallel {
			mode = "parallel"
		}
		fmt.Fprintf(out, "%s [%d,%d) grain=%d: %s, %d threads, %d chunks of %d\n\n",
			view.Kind, opts.begin, opts.end, opts.grain, mode, view.Threads, len(view.Chunks), view.ChunkSize)
	}

	return formatter.Format(out, view)
}
