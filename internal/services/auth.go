package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Oniqq60/task_system_control/taskclient/internal/dto"
)

// AuthService covers the user endpoints of the Task Service.
type AuthService struct {
	*client
}

func NewAuthService(opts Options) (*AuthService, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	return &AuthService{client: c}, nil
}

func (s *AuthService) Close() error {
	if s == nil {
		return nil
	}
	s.close()
	return nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) error {
	const failure = "failed to create account"
	payload, err := json.Marshal(dto.RegisterRequest{
		Username: email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", failure, err)
	}
	_, err = s.do(ctx, request{
		op:       "register",
		failure:  failure,
		fallback: "Failed to create account",
		method:   http.MethodPost,
		path:     "/users/register",
		body:     bytes.NewReader(payload),
	})
	return err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (dto.LoginResponse, error) {
	const failure = "failed to sign in"
	form := url.Values{
		"grant_type":    {"password"},
		"username":      {email},
		"password":      {password},
		"scope":         {""},
		"client_id":     {"string"},
		"client_secret": {""},
	}
	body, err := s.do(ctx, request{
		op:          "login",
		failure:     failure,
		fallback:    "Invalid email or password",
		method:      http.MethodPost,
		path:        "/users/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return dto.LoginResponse{}, err
	}
	var resp dto.LoginResponse
	if err := decodeJSON(body, failure, &resp); err != nil {
		return dto.LoginResponse{}, err
	}
	return resp, nil
}

// ValidateToken returns the user behind token or a *StatusError when the
// token is expired or invalid.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (dto.User, error) {
	if token == "" {
		return dto.User{}, ErrMissingToken
	}
	const failure = "token validation failed"
	body, err := s.do(ctx, request{
		op:      "validate_token",
		failure: failure,
		method:  http.MethodGet,
		path:    "/users/me",
		token:   token,
	})
	if err != nil {
		return dto.User{}, err
	}
	var user dto.User
	if err := decodeJSON(body, failure, &user); err != nil {
		return dto.User{}, err
	}
	return user, nil
}
