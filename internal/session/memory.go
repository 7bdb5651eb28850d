package session

import (
	"context"
	"sync"
	"time"

	"taskpad/api/internal/models"
)

// MemoryStore is a process-local Store used in tests and single-node
// development runs. Now is swappable so expiry can be driven by a test clock.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session

	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.Session),
		Now:      time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok || sess.Expired(s.Now()) {
		return models.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) ExpireAt(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok || sess.Expired(s.Now()) {
		return ErrNotFound
	}
	sess.ExpiresAt = at
	s.sessions[token] = sess
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.Now()
	var sessions []models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID && !sess.Expired(now) {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}
