package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name   string
		claims jwt.MapClaims
		userID int64
	}{
		{"user_id number", jwt.MapClaims{"user_id": 7, "exp": exp.Unix()}, 7},
		{"id string", jwt.MapClaims{"id": "12", "exp": exp.Unix()}, 12},
		{"numeric subject", jwt.MapClaims{"sub": "42", "exp": exp.Unix()}, 42},
		{"email subject", jwt.MapClaims{"sub": "ann@example.com", "exp": exp.Unix()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseClaims(signToken(t, tt.claims))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if claims.UserID != tt.userID {
				t.Fatalf("expected user id %d, got %d", tt.userID, claims.UserID)
			}
			if !claims.ExpiresAt.Equal(exp) {
				t.Fatalf("expected exp %v, got %v", exp, claims.ExpiresAt)
			}
		})
	}
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	if _, err := ParseClaims(""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if _, err := ParseClaims("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestClaimsExpired(t *testing.T) {
	now := time.Now()
	if (Claims{}).Expired(now) {
		t.Fatalf("token without exp must not expire")
	}
	if !(Claims{ExpiresAt: now.Add(-time.Second)}).Expired(now) {
		t.Fatalf("expected expired")
	}
	if (Claims{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("expected valid")
	}
}
