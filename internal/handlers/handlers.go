package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"taskpad/api/internal/config"
	"taskpad/api/internal/middleware"
	"taskpad/api/internal/repository"
	"taskpad/api/internal/service"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	auth  *service.AuthService
	todos *service.TodoService
	db    *pgxpool.Pool
	cache *redis.Client
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, auth *service.AuthService, todos *service.TodoService, db *pgxpool.Pool, cache *redis.Client) HandlerSet {
	return HandlerSet{
		log:   log,
		cfg:   cfg,
		auth:  auth,
		todos: todos,
		db:    db,
		cache: cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	cookieName := h.cfg.Session.CookieName

	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.POST("/login", middleware.BasicAuth(h.auth), h.Login)

		authed := users.Group("")
		authed.Use(middleware.SessionAuth(h.auth, cookieName))
		authed.POST("/logout", h.Logout)
		authed.GET("", h.Me)
		authed.GET("/sessions", h.ListSessions)
	}

	todos := router.Group("/todos")
	todos.Use(middleware.SessionAuth(h.auth, cookieName))
	{
		todos.GET("", h.ListTodos)
		todos.POST("", h.CreateTodo)
		todos.PATCH("/:id", h.UpdateTodo)
		todos.DELETE("/:id", h.DeleteTodo)
		todos.POST("/:id/attachment", h.UploadAttachment)
		todos.GET("/:id/attachment", h.GetAttachment)
	}
}

// respondError maps service and repository errors to response statuses.
// Authentication failures stay generic; nothing sensitive leaves here.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	var vErr *service.ValidationError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"field":  vErr.Field,
			"reason": vErr.Reason,
		})
	case errors.Is(err, repository.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrSessionInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}
