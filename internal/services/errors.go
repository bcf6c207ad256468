package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// StatusError is returned for any Task Service response with status >= 400.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", e.Op, e.StatusCode)
}

// Detail returns the server supplied message, falling back to the operation text.
func (e *StatusError) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}

func IsUnauthorized(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// errorMessage pulls a human readable message out of an error body. FastAPI
// style backends answer with {"detail": "..."} or {"detail": [{"msg": "..."}]}.
func errorMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error", "detail", "detail.0.msg"} {
		res := gjson.GetBytes(body, path)
		if res.Type == gjson.String {
			if msg := strings.TrimSpace(res.String()); msg != "" {
				return msg
			}
		}
	}
	return ""
}
