package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskpad/api/internal/models"
	"taskpad/api/internal/repository"
	"taskpad/api/internal/security"
	"taskpad/api/internal/session"
)

// UserStore is the persistence surface AuthService needs from the user
// repository. The Postgres and in-memory repositories both satisfy it.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type AuthService struct {
	users      UserStore
	sessions   session.Store
	sessionTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
	newID      func() string
}

func NewAuthService(users UserStore, sessions session.Store, sessionTTL time.Duration, log zerolog.Logger, newID func() string) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		log:        log,
		now:        time.Now,
		newID:      newID,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a user account. The returned user still carries the
// password hash; callers sanitize before responding.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	if input.Name == "" {
		return models.User{}, &ValidationError{Field: "name", Reason: "required"}
	}
	if input.Email == "" {
		return models.User{}, &ValidationError{Field: "email", Reason: "required"}
	}
	if input.Password == "" {
		return models.User{}, &ValidationError{Field: "password", Reason: "required"}
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, &ValidationError{Field: "email", Reason: "already registered"}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           s.newID(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique constraint can still fire under concurrent registration.
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, &ValidationError{Field: "email", Reason: "already registered"}
		}
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate performs the basic email/password check. It never reports
// which of the two checks failed.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// StartSession mints an opaque token for an already-authenticated user and
// persists it with the configured TTL.
func (s *AuthService) StartSession(ctx context.Context, user models.User, ip, userAgent string) (models.Session, error) {
	token, err := security.NewSessionToken()
	if err != nil {
		return models.Session{}, err
	}

	now := s.now()
	sess := models.Session{
		Token:     token,
		UserID:    user.ID,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, err
	}

	s.log.Info().Str("user_id", user.ID).Time("expires_at", sess.ExpiresAt).Msg("session started")
	return sess, nil
}

// ResolveSession validates a token and loads the user it authenticates.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (models.User, models.Session, error) {
	if token == "" {
		return models.User{}, models.Session{}, ErrSessionInvalid
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return models.User{}, models.Session{}, ErrSessionInvalid
		}
		return models.User{}, models.Session{}, err
	}
	if sess.Expired(s.now()) {
		return models.User{}, models.Session{}, ErrSessionInvalid
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, models.Session{}, ErrSessionInvalid
		}
		return models.User{}, models.Session{}, err
	}
	return user, sess, nil
}

// EndSession expires the token immediately. Subsequent resolutions fail.
func (s *AuthService) EndSession(ctx context.Context, token string) error {
	err := s.sessions.ExpireAt(ctx, token, s.now())
	if errors.Is(err, session.ErrNotFound) {
		return ErrSessionInvalid
	}
	return err
}

func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}
