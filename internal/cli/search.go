package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

func newSearchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search tasks",
		Long: `Search tasks by free text. With QUERY the search runs once. Without it
every line read from stdin is treated as the new search text; a query runs
once input pauses for SEARCH_DEBOUNCE, and an empty line lists every task.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := rt.app.RequireSession(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				var results []task.Task
				ctl, err := rt.app.NewSearch(token, func(tasks []task.Task) { results = tasks })
				if err != nil {
					return err
				}
				defer ctl.Close()
				if err := ctl.Query(ctx, args[0]); err != nil {
					return err
				}
				return printResults(out, args[0], results)
			}

			ctl, err := rt.app.NewSearch(token, func(tasks []task.Task) {
				_ = printResults(out, "", tasks)
			})
			if err != nil {
				return err
			}
			defer ctl.Close()

			for {
				line, err := rt.readLine(cmd, "")
				if err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return err
				}
				ctl.OnInput(line)
				if ctx.Err() != nil {
					return nil
				}
			}
			ctl.Drain()
			return nil
		},
	}
}

func printResults(w io.Writer, query string, tasks []task.Task) error {
	if query != "" {
		fmt.Fprintf(w, "%d task(s) matching %q\n", len(tasks), query)
	} else {
		fmt.Fprintf(w, "%d task(s)\n", len(tasks))
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, emptyMessage(task.StatusAll))
		return nil
	}
	return printTasks(w, tasks)
}
