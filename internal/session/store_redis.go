package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Oniqq60/task_system_control/taskclient/internal/dto"
)

const (
	tokenKey     = "authToken"
	tokenTypeKey = "tokenType"
	userKey      = "userData"
)

// RedisStore хранит сессию в Redis под тремя ключами с общим префиксом
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Load(ctx context.Context) (Record, error) {
	vals, err := s.rdb.MGet(ctx, s.key(tokenKey), s.key(tokenTypeKey), s.key(userKey)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("load session from redis: %w", err)
	}

	token, _ := vals[0].(string)
	if token == "" {
		return Record{}, ErrNoSession
	}
	rec := Record{Token: token}
	rec.TokenType, _ = vals[1].(string)

	if raw, ok := vals[2].(string); ok && raw != "" {
		var user dto.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return Record{}, fmt.Errorf("decode session user: %w", err)
		}
		rec.User = &user
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	if rec.Token == "" {
		return errors.New("session token is required")
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(tokenKey), rec.Token, 0)
	pipe.Set(ctx, s.key(tokenTypeKey), rec.TokenType, 0)
	if rec.User != nil {
		raw, err := json.Marshal(rec.User)
		if err != nil {
			return fmt.Errorf("encode session user: %w", err)
		}
		pipe.Set(ctx, s.key(userKey), raw, 0)
	} else {
		pipe.Del(ctx, s.key(userKey))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key(tokenKey), s.key(tokenTypeKey), s.key(userKey)).Err(); err != nil {
		return fmt.Errorf("clear session in redis: %w", err)
	}
	return nil
}
