package cli

import (
	"fmt"

	"github.com/aryankumar/forkjoin/internal/output"
	"github.com/aryankumar/forkjoin/internal/util"
	"github.com/aryankumar/forkjoin/pkg/version"
	"github.com/spf13/cobra"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for the forkjoin binary",
		// Version needs no config file
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd)
		},
	}

	return cmd
}

func runVersion(cmd *cobra.Command) error {
	info := version.Get()
	outputFormat, _ := cmd.Flags().GetString("output")
	noColor, _ := cmd.Flags().GetBool("no-color")

	if outputFormat == "" {
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	}

	format, ok := output.ParseFormat(outputFormat)
	if !ok {
		return fmt.Errorf("%w: unknown output format %q", util.ErrInvalidArgument, outputFormat)
	}
	return output.NewFormatter(format, output.WithNoColor(noColor)).Format(cmd.OutOrStdout(), info)
}
