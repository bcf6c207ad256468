package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Oniqq60/task_system_control/taskclient/internal/services"
	"github.com/Oniqq60/task_system_control/taskclient/internal/session"
	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

func printTasks(w io.Writer, tasks []task.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tSTART\tEND\tASSIGNEE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			truncate(t.Title, 40),
			t.Status.Label(),
			t.Priority,
			formatDate(t.StartDate),
			formatDate(t.EndDate),
			orDash(t.Username),
		)
	}
	return tw.Flush()
}

func printCounts(w io.Writer, counts map[task.Status]int) {
	parts := []string{fmt.Sprintf("all: %d", counts[task.StatusAll])}
	for _, s := range task.Statuses {
		parts = append(parts, fmt.Sprintf("%s: %d", strings.ToLower(s.Label()), counts[s]))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func emptyMessage(status task.Status) string {
	if status == task.StatusAll || status == "" {
		return "No tasks found"
	}
	return fmt.Sprintf("No %s tasks", strings.ReplaceAll(string(status), "_", " "))
}

func printTask(w io.Writer, t task.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status.Label())
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Start date:\t%s\n", formatDate(t.StartDate))
	fmt.Fprintf(tw, "End date:\t%s\n", formatDate(t.EndDate))
	fmt.Fprintf(tw, "Assignee:\t%s\n", orDash(t.Username))
	fmt.Fprintf(tw, "User ID:\t%d\n", t.UserID)
	fmt.Fprintf(tw, "Created by:\t%d\n", t.CreatedBy)

	jira := t.JiraLink
	if jira == "" {
		jira = "No Jira Link"
	}
	fmt.Fprintf(tw, "Jira:\t%s\n", jira)

	links := t.PullRequests()
	if len(links) == 0 {
		fmt.Fprintf(tw, "Pull requests:\t%s\n", "No Pull Request")
	}
	for i, link := range links {
		label := ""
		if i == 0 {
			label = "Pull requests:"
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, link)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, t.Description)
	return nil
}

// describeError renders command errors with the server or validation detail.
func describeError(err error) string {
	var verr *task.ValidationError
	if errors.As(err, &verr) {
		return formatValidation(verr)
	}
	var cerr *session.CredentialsError
	if errors.As(err, &cerr) {
		return formatFields(cerr.Fields)
	}
	var serr *services.StatusError
	if errors.As(err, &serr) {
		if serr.Message != "" {
			return fmt.Sprintf("%s (%s)", serr.Error(), serr.Message)
		}
		return serr.Error()
	}
	return err.Error()
}

func formatValidation(verr *task.ValidationError) string {
	out := formatFields(verr.Fields)

	idx := make([]int, 0, len(verr.Links))
	for i := range verr.Links {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		out += fmt.Sprintf("\n  pull request %d: %s", i+1, verr.Links[i])
	}
	return out
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, fields[k])
	}
	return b.String()
}

func formatDate(raw string) string {
	if raw == "" {
		return "-"
	}
	d, err := task.ParseDate(raw)
	if err != nil {
		return raw
	}
	return d.Format("2006-01-02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
