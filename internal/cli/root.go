package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aryankumar/forkjoin/internal/config"
	"github.com/aryankumar/forkjoin/internal/output"
	"github.com/aryankumar/forkjoin/internal/util"
	"github.com/aryankumar/forkjoin/pkg/parallel"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand of one invocation
type app struct {
	cfgFile string
	manager *config.Manager
	cfg     *config.ForkJoinConfig
}

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "forkjoin",
		Short: "forkjoin - fork-join parallelism over index ranges",
		Long: `forkjoin inspects and exercises a fork-join runtime that splits an
index range into chunks, runs them on a team of goroutines and joins the
results. Use it to see how ranges are partitioned, which thread count the
runtime resolves, and how a workload scales.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// shell completion requests parse no flags of their own
			if cmd.Name() == cobra.ShellCompRequestCmd || cmd.Name() == cobra.ShellCompNoDescRequestCmd {
				return nil
			}
			return a.initConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.forkjoin.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output with debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().IntP("threads", "t", 0, "number of threads (0 resolves from the environment)")
	_ = rootCmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(
		[]string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newInfoCmd(a))
	rootCmd.AddCommand(newPlanCmd(a))
	rootCmd.AddCommand(newBenchCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// initConfig loads configuration, applies flag overrides and sets up logging
func (a *app) initConfig(cmd *cobra.Command) error {
	setupLogging(cmd)

	a.manager = config.NewManager(a.cfgFile)

	flags := cmd.Flags()
	bindings := map[string]string{
		"threads.num":           "threads",
		"defaults.outputFormat": "output",
		"defaults.noColor":      "no-color",
	}
	for key, name := range bindings {
		if err := a.manager.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}

	cfg, err := a.manager.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if used := a.manager.ConfigFileUsed(); used != "" {
		slog.Debug("loaded configuration", "file", used)
	}

	return nil
}

// runtime builds the Runtime the current command runs on
func (a *app) runtime(opts ...parallel.Option) *parallel.Runtime {
	threads := a.cfg.Threads.Num
	opts = append([]parallel.Option{
		parallel.WithThreadSource(func() int { return config.ResolveNumThreads(threads) }),
		parallel.WithLogger(slog.Default()),
	}, opts...)
	return parallel.NewRuntime(opts...)
}

// formatter returns the formatter selected by --output or the config file
func (a *app) formatter(opts ...output.Option) (output.Formatter, error) {
	format, ok := output.ParseFormat(a.cfg.Defaults.OutputFormat)
	if !ok {
		return nil, fmt.Errorf("%w: unknown output format %q", util.ErrInvalidArgument, a.cfg.Defaults.OutputFormat)
	}
	opts = append([]output.Option{output.WithNoColor(a.cfg.Defaults.NoColor)}, opts...)
	return output.NewFormatter(format, opts...), nil
}

// isTable reports whether the selected output format is a table
func (a *app) isTable() bool {
	format, _ := output.ParseFormat(a.cfg.Defaults.OutputFormat)
	return format == output.FormatTable
}

// setupLogging configures structured logging with slog
func setupLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(slog.New(newLogHandler(os.Stderr, logLevel, noColor)))

	if verbose {
		slog.Debug("verbose logging enabled")
	}
}

func newLogHandler(w io.Writer, level slog.Level, noColor bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	if noColor {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
