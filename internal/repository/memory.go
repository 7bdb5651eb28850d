package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskpad/api/internal/models"
)

// MemoryUserRepository and MemoryTodoRepository back tests and local
// development without a database. They mirror the Postgres repositories'
// contracts, including the sentinel errors.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

type MemoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]models.Todo
}

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{todos: make(map[string]models.Todo)}
}

func (r *MemoryTodoRepository) Create(_ context.Context, todo models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	r.todos[todo.ID] = todo
	return nil
}

func (r *MemoryTodoRepository) GetByID(_ context.Context, userID, id string) (models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return models.Todo{}, ErrTodoNotFound
	}
	return todo, nil
}

func (r *MemoryTodoRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var todos []models.Todo
	for _, todo := range r.todos {
		if todo.UserID == userID {
			todos = append(todos, todo)
		}
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})

	if offset >= len(todos) {
		return nil, nil
	}
	todos = todos[offset:]
	if limit < len(todos) {
		todos = todos[:limit]
	}
	return todos, nil
}

func (r *MemoryTodoRepository) Update(_ context.Context, todo models.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.todos[todo.ID]
	if !ok || existing.UserID != todo.UserID {
		return ErrTodoNotFound
	}
	todo.CreatedAt = existing.CreatedAt
	todo.UpdatedAt = time.Now()
	r.todos[todo.ID] = todo
	return nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}
