package task

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

// StatusAll - псевдо-статус фильтра, совпадает с любой задачей
const StatusAll Status = "all"

// Statuses перечисляет известные статусы в порядке отображения
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusOverdue}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// placeholderLink - значение, которое бэкенд подставляет вместо пустого списка ссылок
const placeholderLink = "string"

const linkSeparator = ","

type Task struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Status            Status   `json:"status"`
	UserID            int64    `json:"user_id"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	JiraLink          string   `json:"jira_link"`
	CreatedBy         int64    `json:"created_by"`
	PullRequestsLinks string   `json:"pull_requests_links"`
	Username          string   `json:"username,omitempty"` // только для отображения, на сервер не отправляется
	Priority          Priority `json:"priority"`
}

// PullRequests разворачивает ссылки на pull request'ы в список
func (t Task) PullRequests() []string {
	return SplitLinks(t.PullRequestsLinks)
}

// SetPullRequests сворачивает список ссылок обратно в строку транспорта
func (t *Task) SetPullRequests(links []string) {
	t.PullRequestsLinks = JoinLinks(links)
}

func (t Task) Start() (time.Time, error) {
	return ParseDate(t.StartDate)
}

func (t Task) End() (time.Time, error) {
	return ParseDate(t.EndDate)
}

func SplitLinks(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == placeholderLink {
		return nil
	}
	parts := strings.Split(raw, linkSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" && part != placeholderLink {
			out = append(out, part)
		}
	}
	return out
}

func JoinLinks(links []string) string {
	return strings.Join(links, linkSeparator)
}

// NormalizeStatus приводит статус к виду snake_case в нижнем регистре:
// "In Progress", "IN-PROGRESS" и "in_progress" считаются одним статусом.
func NormalizeStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Status(s)
}

func (s Status) Known() bool {
	n := NormalizeStatus(string(s))
	for _, known := range Statuses {
		if n == known {
			return true
		}
	}
	return false
}

// Label возвращает статус в виде заголовка: "in_progress" -> "IN PROGRESS"
func (s Status) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(NormalizeStatus(string(s))), "_", " "))
}

func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Priorities {
		if p == known {
			return p, true
		}
	}
	return "", false
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate разбирает дату в любом из форматов, которые присылает бэкенд
// или вводит пользователь.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
