package events

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

// TaskEvent - событие изменения задачи в Kafka
type TaskEvent struct {
	Kind      string    `json:"kind"`
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTaskEvent(kind string, t task.Task, at time.Time) TaskEvent {
	return TaskEvent{
		Kind:      kind,
		TaskID:    strconv.FormatInt(t.ID, 10),
		UserID:    strconv.FormatInt(t.UserID, 10),
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		Timestamp: at.UTC(),
	}
}

// String renders the event as a single log-friendly line.
func (e TaskEvent) String() string {
	label := task.NormalizeStatus(e.Status).Label()
	return fmt.Sprintf("%s %s task=%s user=%s status=%s title=%q",
		e.Timestamp.Format(time.RFC3339),
		strings.ToUpper(e.Kind),
		e.TaskID,
		e.UserID,
		label,
		e.Title,
	)
}
