package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"taskpad/api/internal/repository"
	"taskpad/api/internal/session"
)

func newTestAuthService(t *testing.T) (*AuthService, *repository.MemoryUserRepository, *session.MemoryStore) {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	sessions := session.NewMemoryStore()

	var seq int
	newID := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	svc := NewAuthService(users, sessions, time.Hour, zerolog.Nop(), newID)
	return svc, users, sessions
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "A@X.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if len(user.PasswordHash) == 0 {
		t.Fatal("password hash not derived")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	tests := []struct {
		field string
		input RegisterInput
	}{
		{"name", RegisterInput{Email: "a@x.com", Password: "secret123"}},
		{"email", RegisterInput{Name: "Alice", Password: "secret123"}},
		{"password", RegisterInput{Name: "Alice", Email: "a@x.com"}},
	}
	for _, tt := range tests {
		var vErr *ValidationError
		_, err := svc.Register(ctx, tt.input)
		if !errors.As(err, &vErr) || vErr.Field != tt.field {
			t.Errorf("missing %s: got %v", tt.field, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestAuthService(t)

	first, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	var vErr *ValidationError
	_, err = svc.Register(ctx, RegisterInput{Name: "Mallory", Email: "a@x.com", Password: "other-pass"})
	if !errors.As(err, &vErr) || vErr.Field != "email" {
		t.Fatalf("duplicate email: got %v, want email validation error", err)
	}

	// The existing record stays untouched.
	existing, err := users.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if existing.ID != first.ID || existing.Name != "Alice" {
		t.Fatalf("existing record altered: %+v", existing)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	registered, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := svc.Authenticate(ctx, "a@x.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("resolved wrong user: %q", user.ID)
	}

	if _, err := svc.Authenticate(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@x.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	sess, err := svc.StartSession(ctx, user, "127.0.0.1", "go-test")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("empty session token")
	}

	resolved, got, err := svc.ResolveSession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("session resolved to %q, want %q", resolved.ID, user.ID)
	}
	if got.UserID != user.ID {
		t.Fatalf("session user id %q", got.UserID)
	}
}

func TestConcurrentSessionsPermitted(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	first, err := svc.StartSession(ctx, user, "", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	second, err := svc.StartSession(ctx, user, "", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		if _, _, err := svc.ResolveSession(ctx, token); err != nil {
			t.Fatalf("ResolveSession %q: %v", token, err)
		}
	}

	sessions, err := svc.ListSessions(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("active sessions = %d, want 2", len(sessions))
	}
}

func TestEndSessionInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestAuthService(t)

	user, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	sess, err := svc.StartSession(ctx, user, "", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if err := svc.EndSession(ctx, sess.Token); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if _, _, err := svc.ResolveSession(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("after logout: got %v, want ErrSessionInvalid", err)
	}
	if err := svc.EndSession(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("double logout: got %v, want ErrSessionInvalid", err)
	}
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newTestAuthService(t)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	clock := func() time.Time { return now }
	svc.now = clock
	sessions.Now = clock

	user, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	sess, err := svc.StartSession(ctx, user, "", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != time.Hour {
		t.Fatalf("ttl = %v, want 1h", got)
	}

	if _, _, err := svc.ResolveSession(ctx, sess.Token); err != nil {
		t.Fatalf("before expiry: %v", err)
	}

	now = base.Add(time.Hour)
	if _, _, err := svc.ResolveSession(ctx, sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("at expiry: got %v, want ErrSessionInvalid", err)
	}
}

func TestResolveSessionEmptyToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	if _, _, err := svc.ResolveSession(context.Background(), ""); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("empty token: got %v", err)
	}
}
