package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/internal/cli"
	oserrors "github.com/matzehuels/overlaysmith/pkg/errors"
)

// Exit statuses besides 0 and 1.
const (
	exitUsage     = 2
	exitAmbiguous = 3
	exitSignal    = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "overlaysmith:", err)
	}
	os.Exit(exitCode(err))
}

func newRoot() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	var verbose, quiet bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log warnings and errors only")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// The level must be set before the root pre-run installs the log hooks.
	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch {
		case verbose:
			c.SetLogLevel(cli.LogDebug)
		case quiet:
			c.SetLogLevel(cli.LogWarn)
		}
		if next == nil {
			return nil
		}
		return next(cmd, args)
	}
	return root
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitSignal
	case oserrors.Is(err, oserrors.ErrCodeAmbiguousPackage):
		return exitAmbiguous
	case oserrors.Is(err, oserrors.ErrCodeInvalidInput), oserrors.Is(err, oserrors.ErrCodeInvalidConfig):
		return exitUsage
	}
	return 1
}
