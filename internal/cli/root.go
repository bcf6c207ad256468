package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// runtime holds the App shared by the commands of one invocation.
type runtime struct {
	build      Builder
	configPath string
	app        *App
	lines      *bufio.Reader
}

func (rt *runtime) setup(cmd *cobra.Command, _ []string) error {
	if rt.app != nil {
		return nil
	}
	app, err := rt.build(rt.configPath)
	if err != nil {
		return err
	}
	if err := app.Start(cmd.Context()); err != nil {
		_ = app.Close()
		return err
	}
	rt.app = app
	return nil
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

func newRootCommand(rt *runtime, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskclient",
		Short: "Command line client for the Task Service",
		Long: `taskclient signs in to the Task Service and manages tasks: list with
status and date filters, search, create, update and inspect them.

Configuration comes from --config (YAML), .env and the environment.`,
		Version:           version,
		PersistentPreRunE: rt.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "path to a YAML config file (or TASKCLIENT_CONFIG)")

	root.AddCommand(
		newLoginCmd(rt),
		newRegisterCmd(rt),
		newLogoutCmd(rt),
		newWhoamiCmd(rt),
		newListCmd(rt),
		newShowCmd(rt),
		newCreateCmd(rt),
		newUpdateCmd(rt),
		newSearchCmd(rt),
		newEventsCmd(rt),
	)
	return root
}

// Run executes one command line against the App produced by build.
func Run(ctx context.Context, args []string, build Builder, in io.Reader, out, errOut io.Writer) error {
	rt := &runtime{build: build}
	root := newRootCommand(rt, "dev")
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, rt.close())
}

// Execute runs the CLI with the process arguments and prints the error, if any.
func Execute(ctx context.Context, version string) error {
	rt := &runtime{build: DefaultBuilder}
	root := newRootCommand(rt, version)

	err := errors.Join(root.ExecuteContext(ctx), rt.close())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
	}
	return err
}
