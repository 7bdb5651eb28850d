package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskpad/api/internal/models"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "user_sessions:"
)

// RedisStore keeps each session as a JSON value whose Redis TTL mirrors the
// session expiry, plus a per-user set of issued tokens so a user's active
// sessions can be listed. Redis evicts session keys on its own; the index
// sets are reconciled by Prune.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func userIndexKey(userID string) string {
	return userIndexPrefix + userID
}

func (s *RedisStore) Save(ctx context.Context, sess models.Session) error {
	if sess.Token == "" || sess.UserID == "" {
		return fmt.Errorf("session: token and user id required")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expiry must be in the future")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.Token), data, ttl)
	pipe.SAdd(ctx, userIndexKey(sess.UserID), sess.Token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (models.Session, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("session: get: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return models.Session{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	sess.Token = token

	// Redis eviction lags expiry by up to its cleanup cycle.
	if sess.Expired(time.Now()) {
		return models.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) ExpireAt(ctx context.Context, token string, at time.Time) error {
	sess, err := s.Get(ctx, token)
	if err != nil {
		return err
	}

	if !at.After(time.Now()) {
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, sessionKey(token))
		pipe.SRem(ctx, userIndexKey(sess.UserID), token)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("session: expire: %w", err)
		}
		return nil
	}

	sess.ExpiresAt = at
	return s.Save(ctx, sess)
}

func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	tokens, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}

	sessions := make([]models.Session, 0, len(tokens))
	for _, token := range tokens {
		sess, err := s.Get(ctx, token)
		if err == ErrNotFound {
			continue // stale index entry, Prune will drop it
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// Prune removes index entries whose session keys Redis has already evicted.
// Returns the number of entries removed.
func (s *RedisStore) Prune(ctx context.Context) (int, error) {
	var removed int

	iter := s.client.Scan(ctx, 0, userIndexPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		tokens, err := s.client.SMembers(ctx, indexKey).Result()
		if err != nil {
			return removed, fmt.Errorf("session: prune members: %w", err)
		}

		for _, token := range tokens {
			exists, err := s.client.Exists(ctx, sessionKey(token)).Result()
			if err != nil {
				return removed, fmt.Errorf("session: prune exists: %w", err)
			}
			if exists == 0 {
				if err := s.client.SRem(ctx, indexKey, token).Err(); err != nil {
					return removed, fmt.Errorf("session: prune srem: %w", err)
				}
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("session: prune scan: %w", err)
	}
	return removed, nil
}
