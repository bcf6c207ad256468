package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Oniqq60/task_system_control/taskclient/internal/dto"
)

var ErrNoSession = errors.New("no stored session")

const defaultTokenType = "bearer"

// Record - сохранённое состояние сессии
type Record struct {
	Token     string    `json:"authToken"`
	TokenType string    `json:"tokenType"`
	User      *dto.User `json:"userData,omitempty"`
}

// Store хранит сессию между запусками. Load возвращает ErrNoSession,
// если сохранённой сессии нет.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// MemoryStore живёт только в рамках процесса
type MemoryStore struct {
	mu  sync.Mutex
	rec *Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return Record{}, ErrNoSession
	}
	return *s.rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
