package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSessionNotFound - сессия с таким идентификатором не найдена (или истекла).
var ErrSessionNotFound = errors.New("story session not found")

// Session - серверный снимок сессии истории для возобновления с другого клиента.
// Источником правды остается клиент: контроллер генерации это хранилище не читает.
type Session struct {
	StoryText  string    `json:"storyText"`
	InputCount int       `json:"inputCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store интерфейс хранилища сессий.
type Store interface {
	Save(ctx context.Context, id string, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// Compile-time check
var _ Store = (*redisStore)(nil)

// redisStore - реализация Store поверх Redis.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore создает Redis-хранилище сессий с заданным TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("SessionStore"),
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("story_session:%s", id)
}

// Save сохраняет снимок сессии, продлевая TTL.
func (r *redisStore) Save(ctx context.Context, id string, s Session) error {
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session in redis", zap.String("session_id", id), zap.Error(err))
		return fmt.Errorf("failed to save session in redis: %w", err)
	}

	r.logger.Debug("Session saved",
		zap.String("session_id", id),
		zap.Int("input_count", s.InputCount),
		zap.Int("story_chars", len(s.StoryText)),
	)
	return nil
}

// Get возвращает снимок сессии по идентификатору.
func (r *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get session from redis", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}
