package cli

import (
	"fmt"
	"strconv"

	"github.com/aryankumar/forkjoin/internal/config"
	"github.com/aryankumar/forkjoin/pkg/parallel"
	"github.com/spf13/cobra"
)

// infoView renders parallel.Info as a two-column table
type infoView struct {
	parallel.Info `yaml:",inline"`
}

func (v infoView) Headers() []string {
	return []string{"SETTING", "VALUE"}
}

func (v infoView) Rows() [][]string {
	env := func(s string) string {
		if s == "" {
			return "[not set]"
		}
		return s
	}
	return [][]string{
		{"Max Threads", strconv.Itoa(v.MaxThreads)},
		{"GOMAXPROCS", strconv.Itoa(v.GOMAXPROCS)},
		{"NumCPU", strconv.Itoa(v.NumCPU)},
		{config.EnvNumThreads, env(v.EnvNumThreads)},
		{config.EnvOMPNumThreads, env(v.EnvOMPNumThreads)},
		{"Go Version", v.GoVersion},
		{"Debug Preconditions", strconv.FormatBool(v.DebugPreconditions)},
	}
}

// newInfoCmd creates the info command
func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the resolved parallel runtime configuration",
		Long: `Show the thread count the runtime resolves and the process settings it
is derived from: --threads or threads.num, then FORKJOIN_NUM_THREADS, then
OMP_NUM_THREADS, then GOMAXPROCS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := a.formatter()
			if err != nil {
				return err
			}

			info := a.runtime().Info()
			if err := formatter.Format(cmd.OutOrStdout(), infoView{Info: info}); err != nil {
				return fmt.Errorf("failed to write runtime info: %w", err)
			}
			return nil
		},
	}
}
