package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskpad/api/internal/models"
	"taskpad/api/internal/sniff"
)

// TodoStore is implemented by the Postgres and in-memory todo repositories.
// Every operation is scoped by the owning user; foreign todos behave as
// missing.
type TodoStore interface {
	Create(ctx context.Context, todo models.Todo) error
	GetByID(ctx context.Context, userID, id string) (models.Todo, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Todo, error)
	Update(ctx context.Context, todo models.Todo) error
	Delete(ctx context.Context, userID, id string) error
}

// BlobStore is the attachment storage surface, implemented by the MinIO
// object store.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
}

const attachmentURLTTL = 15 * time.Minute

type TodoService struct {
	todos TodoStore
	blobs BlobStore
	log   zerolog.Logger
	newID func() string
	now   func() time.Time
}

func NewTodoService(todos TodoStore, blobs BlobStore, log zerolog.Logger, newID func() string) *TodoService {
	return &TodoService{
		todos: todos,
		blobs: blobs,
		log:   log,
		newID: newID,
		now:   time.Now,
	}
}

func (s *TodoService) Create(ctx context.Context, userID, title, notes string) (models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Todo{}, &ValidationError{Field: "title", Reason: "required"}
	}

	now := s.now()
	todo := models.Todo{
		ID:        s.newID(),
		UserID:    userID,
		Title:     title,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, userID, id string) (models.Todo, error) {
	return s.todos.GetByID(ctx, userID, id)
}

func (s *TodoService) List(ctx context.Context, userID string, limit, offset int) ([]models.Todo, error) {
	return s.todos.ListByUser(ctx, userID, limit, offset)
}

type UpdateTodoInput struct {
	Title *string
	Notes *string
	Done  *bool
}

func (s *TodoService) Update(ctx context.Context, userID, id string, input UpdateTodoInput) (models.Todo, error) {
	todo, err := s.todos.GetByID(ctx, userID, id)
	if err != nil {
		return models.Todo{}, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return models.Todo{}, &ValidationError{Field: "title", Reason: "required"}
		}
		todo.Title = title
	}
	if input.Notes != nil {
		todo.Notes = *input.Notes
	}
	if input.Done != nil {
		todo.Done = *input.Done
	}
	todo.UpdatedAt = s.now()

	if err := s.todos.Update(ctx, todo); err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	todo, err := s.todos.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.todos.Delete(ctx, userID, id); err != nil {
		return err
	}

	if todo.AttachmentKey != nil {
		if err := s.blobs.Remove(ctx, *todo.AttachmentKey); err != nil {
			s.log.Warn().Err(err).Str("todo_id", id).Msg("remove orphaned attachment failed")
		}
	}
	return nil
}

// Attach stores one file for the todo, replacing any previous attachment.
// The content type is sniffed from the payload, not the request header.
func (s *TodoService) Attach(ctx context.Context, userID, id string, r io.Reader, size int64) (string, error) {
	todo, err := s.todos.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}

	contentType, head, err := sniff.Detect(r)
	if err != nil {
		return "", fmt.Errorf("sniff attachment: %w", err)
	}
	body := io.MultiReader(bytes.NewReader(head), r)

	key := fmt.Sprintf("attachments/%s/%s", userID, id)
	if err := s.blobs.Put(ctx, key, body, size, contentType); err != nil {
		return "", err
	}

	todo.AttachmentKey = &key
	todo.UpdatedAt = s.now()
	if err := s.todos.Update(ctx, todo); err != nil {
		return "", err
	}

	s.log.Info().Str("todo_id", id).Str("content_type", contentType).Msg("attachment stored")
	return contentType, nil
}

// AttachmentURL returns a short-lived presigned link to the todo's
// attachment. A missing attachment surfaces as a validation error.
func (s *TodoService) AttachmentURL(ctx context.Context, userID, id string) (string, error) {
	todo, err := s.todos.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if todo.AttachmentKey == nil {
		return "", &ValidationError{Field: "attachment", Reason: "none stored"}
	}
	return s.blobs.PresignedGet(ctx, *todo.AttachmentKey, attachmentURLTTL)
}
