// Package session persists opaque-token sessions. A token resolves to
// exactly one user until it expires; expiry is the only invalidation
// mechanism, logout simply moves expiry to now.
package session

import (
	"context"
	"errors"
	"time"

	"taskpad/api/internal/models"
)

var ErrNotFound = errors.New("session not found or expired")

type Store interface {
	// Save persists the session under its token until ExpiresAt.
	Save(ctx context.Context, s models.Session) error
	// Get resolves a token. Expired or unknown tokens yield ErrNotFound.
	Get(ctx context.Context, token string) (models.Session, error)
	// ExpireAt rewrites the session's expiry. A time at or before now
	// invalidates the token immediately.
	ExpireAt(ctx context.Context, token string, at time.Time) error
	// ListByUser returns the user's active sessions.
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
}
