package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Oniqq60/task_system_control/taskclient/internal/dto"
)

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrSessionExpired  = errors.New("session expired, please sign in again")
	ErrNoAuthenticator = errors.New("session: authenticator is not configured")
)

// Authenticator - удалённые операции входа, которые нужны сессии
type Authenticator interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (dto.LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (dto.User, error)
}

// Service владеет состоянием сессии процесса: токеном, его типом и
// пользователем. Состояние меняют только SignIn, SignOut и неудачная
// валидация.
type Service struct {
	auth          Authenticator
	store         Store
	logger        *zap.Logger
	defaultUserID int64
	now           func() time.Time

	mu     sync.RWMutex
	record Record
	active bool
}

type Options struct {
	Auth          Authenticator
	Store         Store
	Logger        *zap.Logger
	DefaultUserID int64
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{
		auth:          opts.Auth,
		store:         store,
		logger:        logger,
		defaultUserID: opts.DefaultUserID,
		now:           time.Now,
	}
}

// Restore loads the persisted session, if any. A missing session is not an error.
func (s *Service) Restore(ctx context.Context) error {
	rec, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}
	if rec.TokenType == "" {
		rec.TokenType = defaultTokenType
	}

	s.mu.Lock()
	s.record = rec
	s.active = true
	s.mu.Unlock()
	return nil
}

// SignUp регистрирует пользователя и сразу выполняет вход
func (s *Service) SignUp(ctx context.Context, creds Credentials) (dto.User, error) {
	if err := creds.Validate(true); err != nil {
		return dto.User{}, err
	}
	if s.auth == nil {
		return dto.User{}, ErrNoAuthenticator
	}
	email := strings.TrimSpace(creds.Email)
	if err := s.auth.Register(ctx, email, creds.Password); err != nil {
		return dto.User{}, err
	}
	return s.signIn(ctx, email, creds.Password, strings.TrimSpace(creds.Name))
}

// SignIn выполняет вход, проверяет полученный токен и сохраняет сессию
func (s *Service) SignIn(ctx context.Context, email, password string) (dto.User, error) {
	creds := Credentials{Email: email, Password: password}
	if err := creds.Validate(false); err != nil {
		return dto.User{}, err
	}
	if s.auth == nil {
		return dto.User{}, ErrNoAuthenticator
	}
	return s.signIn(ctx, strings.TrimSpace(email), password, "")
}

func (s *Service) signIn(ctx context.Context, email, password, name string) (dto.User, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return dto.User{}, err
	}
	if resp.AccessToken == "" {
		return dto.User{}, fmt.Errorf("%w: empty access token", ErrInvalidToken)
	}

	user, err := s.auth.ValidateToken(ctx, resp.AccessToken)
	if err != nil {
		return dto.User{}, fmt.Errorf("validate new token: %w", err)
	}
	if user.Email == "" && resp.User != nil {
		user = *resp.User
	}
	if user.Email == "" {
		user.Email = email
	}
	if user.Name == "" {
		user.Name = name
	}

	rec := Record{
		Token:     resp.AccessToken,
		TokenType: resp.TokenType,
		User:      &user,
	}
	if rec.TokenType == "" {
		rec.TokenType = defaultTokenType
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return dto.User{}, err
	}

	s.mu.Lock()
	s.record = rec
	s.active = true
	s.mu.Unlock()

	s.logger.Info("signed in", zap.String("email", user.Email))
	return user, nil
}

// Validate проверяет текущий токен: сначала локально по exp, затем
// запросом к сервису. При любой ошибке сессия очищается.
func (s *Service) Validate(ctx context.Context) (dto.User, error) {
	token := s.Token()
	if token == "" {
		return dto.User{}, ErrNotSignedIn
	}

	if claims, err := ParseClaims(token); err == nil && claims.Expired(s.now()) {
		s.invalidate(ctx, "token expired locally")
		return dto.User{}, ErrSessionExpired
	}

	if s.auth == nil {
		return s.storedUser(), nil
	}
	user, err := s.auth.ValidateToken(ctx, token)
	if err != nil {
		s.logger.Warn("token validation failed", zap.Error(err))
		s.invalidate(ctx, "remote validation failed")
		return dto.User{}, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	s.mu.Lock()
	s.record.User = &user
	rec := s.record
	s.mu.Unlock()
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("failed to persist validated user", zap.Error(err))
	}
	return user, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.record = Record{}
	s.active = false
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

func (s *Service) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active && s.record.Token != ""
}

// Token returns the bearer credential or "" when signed out.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return ""
	}
	return s.record.Token
}

func (s *Service) User() (dto.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active || s.record.User == nil {
		return dto.User{}, false
	}
	return *s.record.User, true
}

// UserID - id автора/исполнителя новых задач: из токена, иначе значение
// по умолчанию из конфигурации.
func (s *Service) UserID() int64 {
	if claims, err := ParseClaims(s.Token()); err == nil && claims.UserID > 0 {
		return claims.UserID
	}
	return s.defaultUserID
}

func (s *Service) storedUser() dto.User {
	user, _ := s.User()
	return user
}

func (s *Service) invalidate(ctx context.Context, reason string) {
	s.logger.Info("clearing session", zap.String("reason", reason))
	if err := s.SignOut(ctx); err != nil {
		s.logger.Warn("failed to clear session store", zap.Error(err))
	}
}
