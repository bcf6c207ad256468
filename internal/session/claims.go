package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken   = errors.New("authorization token is required")
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token is expired")
)

// Claims - то, что клиент может прочитать из токена без секрета сервера
type Claims struct {
	UserID    int64
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an exp that is already past.
// Tokens without exp never expire locally.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims читает claims токена без проверки подписи: подпись проверяет
// сервер, клиенту нужны только id пользователя и срок действия.
func ParseClaims(token string) (Claims, error) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		return Claims{}, ErrEmptyToken
	}

	type jwtClaims struct {
		UserID interface{} `json:"user_id"`
		ID     interface{} `json:"id"`
		jwt.RegisteredClaims
	}

	parsed := &jwtClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, parsed); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := Claims{Subject: parsed.Subject}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	for _, candidate := range []interface{}{parsed.UserID, parsed.ID, parsed.Subject} {
		if id, ok := numericID(candidate); ok {
			claims.UserID = id
			break
		}
	}
	return claims, nil
}

func numericID(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		if val > 0 && val == float64(int64(val)) {
			return int64(val), true
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}
