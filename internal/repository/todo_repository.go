package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskpad/api/internal/models"
)

var ErrTodoNotFound = errors.New("todo not found")

type TodoRepository struct {
	pool *pgxpool.Pool
}

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func (r *TodoRepository) Create(ctx context.Context, todo models.Todo) error {
	const query = `
		INSERT INTO todos (id, user_id, title, notes, done, attachment_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Notes,
		todo.Done,
		todo.AttachmentKey,
	)
	return err
}

// GetByID is scoped by owner. A todo belonging to another user is
// indistinguishable from a missing one.
func (r *TodoRepository) GetByID(ctx context.Context, userID, id string) (models.Todo, error) {
	const query = `
		SELECT id, user_id, title, notes, done, attachment_key, created_at, updated_at
		FROM todos WHERE id = $1 AND user_id = $2
	`

	row := r.pool.QueryRow(ctx, query, id, userID)
	var todo models.Todo
	if err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Notes,
		&todo.Done,
		&todo.AttachmentKey,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Todo{}, ErrTodoNotFound
		}
		return models.Todo{}, err
	}
	return todo, nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Todo, error) {
	const query = `
		SELECT id, user_id, title, notes, done, attachment_key, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		var todo models.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.UserID,
			&todo.Title,
			&todo.Notes,
			&todo.Done,
			&todo.AttachmentKey,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (r *TodoRepository) Update(ctx context.Context, todo models.Todo) error {
	const query = `
		UPDATE todos
		SET title = $3, notes = $4, done = $5, attachment_key = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	cmd, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Notes,
		todo.Done,
		todo.AttachmentKey,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}
