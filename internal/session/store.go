package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Session is one browser session. UserID is zero while the visitor is
// anonymous; login binds it, logout clears it. Flash messages queued on the
// session are popped by the next rendered page.
type Session struct {
	ID     string
	UserID uint
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	SetUser(ctx context.Context, id string, userID uint) error
	ClearUser(ctx context.Context, id string) error
	AddFlash(ctx context.Context, id, message string) error
	PopFlashes(ctx context.Context, id string) ([]string, error)
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func flashKey(id string) string {
	return "session:" + id + ":flash"
}

func (s *redisStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{ID: uuid.NewString()}

	if err := s.client.HSet(ctx, sessionKey(sess.ID), "user_id", 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.client.Expire(ctx, sessionKey(sess.ID), s.ttl).Err(); err != nil {
		return nil, err
	}

	return sess, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := s.client.HGet(ctx, sessionKey(id), "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	return &Session{ID: id, UserID: uint(userID)}, nil
}

func (s *redisStore) SetUser(ctx context.Context, id string, userID uint) error {
	if err := s.client.HSet(ctx, sessionKey(id), "user_id", userID).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, sessionKey(id), s.ttl).Err()
}

func (s *redisStore) ClearUser(ctx context.Context, id string) error {
	return s.client.HSet(ctx, sessionKey(id), "user_id", 0).Err()
}

func (s *redisStore) AddFlash(ctx context.Context, id, message string) error {
	if err := s.client.RPush(ctx, flashKey(id), message).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, flashKey(id), s.ttl).Err()
}

func (s *redisStore) PopFlashes(ctx context.Context, id string) ([]string, error) {
	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, flashKey(id), 0, -1)
	pipe.Del(ctx, flashKey(id))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	return rangeCmd.Val(), nil
}
