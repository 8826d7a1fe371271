// Package cli wires the crate commands to cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/prompt"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitReportable = 1
	ExitFailure    = 2
)

const opAnnotation = "op"

// IO is the process environment a command runs in. A nil UI uses terminal
// prompts on In and Err.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	UI  prompt.UI
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, stdio IO) int {
	c := newCommandContext(stdio)
	root := newRootCommand(c)
	root.SetArgs(args)
	root.SetIn(stdio.In)
	root.SetOut(stdio.Out)
	root.SetErr(stdio.Err)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil || errors.Is(err, prompt.ErrCancelled) {
		return ExitOK
	}

	op := errmsg.Op("run " + root.Name())
	if cmd != nil && cmd.Annotations[opAnnotation] != "" {
		op = errmsg.Op(cmd.Annotations[opAnnotation])
	}
	fmt.Fprintln(stdio.Err, errmsg.Format(op, err))

	switch {
	case !c.started:
		// Flag and argument errors are raised before any command runs.
		if cmd != nil {
			fmt.Fprintf(stdio.Err, "Run '%s --help' for usage.\n", cmd.CommandPath())
		}
		return ExitReportable
	case errmsg.IsReportable(err), errors.Is(err, context.Canceled):
		return ExitReportable
	default:
		return ExitFailure
	}
}

func newRootCommand(c *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "crate",
		Short:         "Catalog, tag and file a music collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.started = true
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&c.catalogFlag, "catalog", "", "Catalog database path")
	flags.StringVar(&c.logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newImportCommand(c))
	rootCmd.AddCommand(newMergeCommand(c))
	rootCmd.AddCommand(newRetagCommand(c))
	rootCmd.AddCommand(newPicardFixupCommand(c))
	rootCmd.AddCommand(newShowCommand(c))
	rootCmd.AddCommand(newEditCommand(c))
	rootCmd.AddCommand(newDeleteCommand(c))

	return rootCmd
}

func annotate(op errmsg.Op) map[string]string {
	return map[string]string{opAnnotation: string(op)}
}
