package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aryankumar/forkjoin/internal/cli"
	"github.com/aryankumar/forkjoin/internal/util"
)

func main() {
	ctx, stop := util.SetupSignalHandler(slog.Default())

	err := cli.Execute(ctx)
	stop()

	if err != nil {
		slog.Debug("command failed", "error", err)
		msg := util.FriendlyError(err)
		fmt.Fprintln(os.Stderr, "Error:", msg)
		if msg != err.Error() {
			fmt.Fprintln(os.Stderr, " ", err)
		}
		switch {
		case util.IsCancelled(err):
			os.Exit(130)
		case util.IsValidationError(err):
			os.Exit(2)
		default:
			os.Exit(1)
		}
	}
}
