package session

import (
	"regexp"
	"sort"
	"strings"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Credentials - данные формы входа или регистрации
type Credentials struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// CredentialsError перечисляет ошибки полей формы
type CredentialsError struct {
	Fields map[string]string
}

func (e *CredentialsError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid credentials: " + strings.Join(parts, "; ")
}

// Validate checks the form; signUp additionally requires a name and a
// matching confirmation.
func (c Credentials) Validate(signUp bool) error {
	fields := make(map[string]string)

	if signUp && strings.TrimSpace(c.Name) == "" {
		fields["name"] = "Name is required"
	}

	if strings.TrimSpace(c.Email) == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(c.Email) {
		fields["email"] = "Email is invalid"
	}

	if c.Password == "" {
		fields["password"] = "Password is required"
	} else if len(c.Password) < minPasswordLength {
		fields["password"] = "Password must be at least 6 characters"
	}

	if signUp && c.Password != c.ConfirmPassword {
		fields["confirm_password"] = "Passwords do not match"
	}

	if len(fields) == 0 {
		return nil
	}
	return &CredentialsError{Fields: fields}
}
