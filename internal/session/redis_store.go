package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ST1000-S/iTechies/internal/domain"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store backed by the given client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: TTLOrDefault(ttl)}
}

func (s *RedisStore) Create(ctx context.Context, userID string, role domain.Role) (*Session, error) {
	sess := &Session{Token: uuid.NewString(), UserID: userID, Role: role}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, payload, s.ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	sess.Token = token
	return &sess, nil
}

func (s *RedisStore) Touch(ctx context.Context, token string) error {
	ok, err := s.client.Expire(ctx, keyPrefix+token, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
