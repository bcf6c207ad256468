package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

type listFlags struct {
	status string
	from   string
	to     string
	query  string
}

func newListCmd(rt *runtime) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with status counts",
		Long: `List tasks of the signed in user.

Examples:
  taskclient list
  taskclient list --status in_progress
  taskclient list --from 2024-05-01 --to 2024-05-31
  taskclient list --query "release"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			status, dates, err := flags.filters()
			if err != nil {
				return err
			}

			token, err := rt.app.RequireSession(ctx)
			if err != nil {
				return err
			}
			l := rt.app.NewList(token)

			if strings.TrimSpace(flags.query) != "" {
				ctl, err := rt.app.NewSearch(token, l.Deliver)
				if err != nil {
					return err
				}
				defer ctl.Close()
				if err := ctl.Query(ctx, flags.query); err != nil {
					return err
				}
			} else if err := l.Load(ctx); err != nil {
				return err
			}

			l.SetStatusFilter(status)
			l.SetDateRange(dates)

			out := cmd.OutOrStdout()
			printCounts(out, l.Counts())
			displayed := l.Displayed()
			if len(displayed) == 0 {
				fmt.Fprintln(out, emptyMessage(l.StatusFilter()))
				return nil
			}
			return printTasks(out, displayed)
		},
	}
	cmd.Flags().StringVarP(&flags.status, "status", "s", string(task.StatusAll), "status filter: all, pending, in_progress, completed, overdue")
	cmd.Flags().StringVar(&flags.from, "from", "", "show tasks ending on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "show tasks ending on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "search text instead of listing everything")
	return cmd
}

func (f listFlags) filters() (task.Status, task.DateRange, error) {
	status := task.NormalizeStatus(f.status)
	if status == "" {
		status = task.StatusAll
	}
	if status != task.StatusAll && !status.Known() {
		return "", task.DateRange{}, fmt.Errorf("unknown status %q", f.status)
	}

	var dates task.DateRange
	var err error
	if f.from != "" {
		if dates.From, err = task.ParseDate(f.from); err != nil {
			return "", task.DateRange{}, fmt.Errorf("invalid --from date %q", f.from)
		}
	}
	if f.to != "" {
		if dates.To, err = task.ParseDate(f.to); err != nil {
			return "", task.DateRange{}, fmt.Errorf("invalid --to date %q", f.to)
		}
	}
	return status, dates, nil
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show every field of one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			l, err := loadList(cmd, rt)
			if err != nil {
				return err
			}
			t, ok := l.Find(id)
			if !ok {
				return fmt.Errorf("%w: %d", task.ErrTaskNotFound, id)
			}
			return printTask(cmd.OutOrStdout(), t)
		},
	}
}

type taskFlags struct {
	title        string
	description  string
	status       string
	priority     string
	start        string
	end          string
	jira         string
	pullRequests []string
	assignee     int64
}

func (f *taskFlags) register(cmd *cobra.Command, defaults bool) {
	status, priority := "", ""
	if defaults {
		status, priority = string(task.StatusPending), string(task.PriorityLow)
	}
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&f.status, "status", status, "pending, in_progress, completed or overdue")
	cmd.Flags().StringVar(&f.priority, "priority", priority, "low, medium or high")
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.jira, "jira", "", "Jira link")
	cmd.Flags().StringArrayVar(&f.pullRequests, "pr", nil, "pull request link (repeatable)")
	cmd.Flags().Int64Var(&f.assignee, "assignee", 0, "assignee user id (defaults to the signed in user)")
}

func newCreateCmd(rt *runtime) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Long: `Create a task. Title, description and both dates are required and the
end date must not precede the start date.

Example:
  taskclient create -t "Release 1.2" -d "Cut and tag" --start 2024-05-01 --end 2024-05-03 \
    --priority high --pr https://github.com/org/repo/pull/7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			token, err := rt.app.RequireSession(ctx)
			if err != nil {
				return err
			}

			d := task.NewDraft(rt.app.Session.UserID())
			d.Title = flags.title
			d.Description = flags.description
			d.Status = task.NormalizeStatus(flags.status)
			d.Priority = task.Priority(strings.ToLower(strings.TrimSpace(flags.priority)))
			d.StartDate = flags.start
			d.EndDate = flags.end
			d.JiraLink = strings.TrimSpace(flags.jira)
			d.PullRequests = flags.pullRequests
			if cmd.Flags().Changed("assignee") {
				d.UserID = flags.assignee
			}

			l := rt.app.NewList(token)
			created, err := l.Create(ctx, d)
			if err != nil {
				return err
			}
			l.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d %q\n", created.ID, created.Title)
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newUpdateCmd(rt *runtime) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of an existing task",
		Long: `Change fields of an existing task. Only the flags that are given change;
the full record is sent to the service. --pr replaces all pull request links.

Example:
  taskclient update 12 --status completed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			l, err := loadList(cmd, rt)
			if err != nil {
				return err
			}
			current, ok := l.Find(id)
			if !ok {
				return fmt.Errorf("%w: %d", task.ErrTaskNotFound, id)
			}

			edited, err := flags.apply(cmd, current)
			if err != nil {
				return err
			}
			updated, err := l.Update(cmd.Context(), edited)
			if err != nil {
				return err
			}
			l.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d (%s)\n", updated.ID, updated.Status.Label())
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

// apply copies t and overwrites the fields whose flags were set.
func (f *taskFlags) apply(cmd *cobra.Command, t task.Task) (task.Task, error) {
	changed := cmd.Flags().Changed
	if changed("title") {
		t.Title = f.title
	}
	if changed("description") {
		t.Description = f.description
	}
	if changed("status") {
		status := task.NormalizeStatus(f.status)
		if !status.Known() {
			return task.Task{}, fmt.Errorf("unknown status %q", f.status)
		}
		t.Status = status
	}
	if changed("priority") {
		p, ok := task.ParsePriority(f.priority)
		if !ok {
			return task.Task{}, fmt.Errorf("unknown priority %q", f.priority)
		}
		t.Priority = p
	}
	if changed("start") {
		t.StartDate = f.start
	}
	if changed("end") {
		t.EndDate = f.end
	}
	if changed("jira") {
		t.JiraLink = strings.TrimSpace(f.jira)
	}
	if changed("pr") {
		t.SetPullRequests(f.pullRequests)
	}
	if changed("assignee") {
		t.UserID = f.assignee
	}
	return t, nil
}

func loadList(cmd *cobra.Command, rt *runtime) (*task.List, error) {
	token, err := rt.app.RequireSession(cmd.Context())
	if err != nil {
		return nil, err
	}
	l := rt.app.NewList(token)
	if err := l.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return l, nil
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
