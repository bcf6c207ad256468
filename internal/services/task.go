package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/Oniqq60/task_system_control/taskclient/internal/task"
)

// TaskService is the REST client of the remote Task Service.
type TaskService struct {
	*client
}

func NewTaskService(opts Options) (*TaskService, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return &TaskService{client: c}, nil
}

func (s *TaskService) Close() error {
	if s == nil {
		return nil
	}
	s.close()
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, token string) ([]task.Task, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	const failure = "failed to fetch tasks"
	body, err := s.do(ctx, request{
		op:      "list_tasks",
		failure: failure,
		method:  http.MethodGet,
		path:    "/tasks",
		token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decodeTaskList(body, failure)
}

func (s *TaskService) CreateTask(ctx context.Context, token string, t task.Task) (task.Task, error) {
	if token == "" {
		return task.Task{}, ErrMissingToken
	}
	const failure = "failed to create task"
	payload, err := json.Marshal(newTaskPayload(t))
	if err != nil {
		return task.Task{}, fmt.Errorf("%s: %w", failure, err)
	}
	body, err := s.do(ctx, request{
		op:      "create_task",
		failure: failure,
		method:  http.MethodPost,
		path:    "/tasks",
		token:   token,
		body:    bytes.NewReader(payload),
	})
	if err != nil {
		return task.Task{}, err
	}
	var created task.Task
	if err := decodeJSON(body, failure, &created); err != nil {
		return task.Task{}, err
	}
	return created, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, token string, id int64, t task.Task) (task.Task, error) {
	if token == "" {
		return task.Task{}, ErrMissingToken
	}
	if id == 0 {
		return task.Task{}, task.ErrMissingTaskID
	}
	const failure = "failed to update task"
	payload, err := json.Marshal(newTaskPayload(t))
	if err != nil {
		return task.Task{}, fmt.Errorf("%s: %w", failure, err)
	}
	body, err := s.do(ctx, request{
		op:      "update_task",
		failure: failure,
		method:  http.MethodPut,
		path:    "/tasks/" + strconv.FormatInt(id, 10),
		token:   token,
		body:    bytes.NewReader(payload),
	})
	if err != nil {
		return task.Task{}, err
	}
	var updated task.Task
	if err := decodeJSON(body, failure, &updated); err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// SearchTasks sends query exactly as typed; callers decide what an empty
// query means.
func (s *TaskService) SearchTasks(ctx context.Context, token, query string) ([]task.Task, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	const failure = "failed to search tasks"
	body, err := s.do(ctx, request{
		op:      "search_tasks",
		failure: failure,
		method:  http.MethodGet,
		path:    "/tasks/search/",
		query:   url.Values{"query": []string{query}},
		token:   token,
	})
	if err != nil {
		return nil, err
	}
	return decodeTaskList(body, failure)
}

// taskPayload is the body of create and update calls: no server id and no
// display-only username.
type taskPayload struct {
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Status            task.Status   `json:"status"`
	UserID            int64         `json:"user_id"`
	StartDate         string        `json:"start_date"`
	EndDate           string        `json:"end_date"`
	JiraLink          string        `json:"jira_link"`
	CreatedBy         int64         `json:"created_by"`
	PullRequestsLinks string        `json:"pull_requests_links"`
	Priority          task.Priority `json:"priority"`
}

func newTaskPayload(t task.Task) taskPayload {
	return taskPayload{
		Title:             t.Title,
		Description:       t.Description,
		Status:            t.Status,
		UserID:            t.UserID,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		JiraLink:          t.JiraLink,
		CreatedBy:         t.CreatedBy,
		PullRequestsLinks: t.PullRequestsLinks,
		Priority:          t.Priority,
	}
}

// decodeTaskList treats anything but a JSON array as an empty list.
func decodeTaskList(body []byte, failure string) ([]task.Task, error) {
	if !gjson.ParseBytes(body).IsArray() {
		return []task.Task{}, nil
	}
	tasks := make([]task.Task, 0)
	if err := decodeJSON(body, failure, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
