package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyDate     = errors.New("date is empty")
	ErrTaskNotFound  = errors.New("task not found")
	ErrMissingTaskID = errors.New("task id is required")
	ErrNoService     = errors.New("task service is required")
	ErrNoCredential  = errors.New("credential is required")
)

// ValidationError описывает ошибки формы создания задачи.
// Fields - ошибки по именам полей, Links - по индексам ссылок на pull request'ы.
type ValidationError struct {
	Fields map[string]string
	Links  map[int]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields)+len(e.Links))

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	idx := make([]int, 0, len(e.Links))
	for i := range e.Links {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		parts = append(parts, fmt.Sprintf("pull_requests_links[%d]: %s", i, e.Links[i]))
	}

	return "invalid task: " + strings.Join(parts, "; ")
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0 && len(e.Links) == 0
}
