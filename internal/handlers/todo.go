package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskpad/api/internal/middleware"
	"taskpad/api/internal/models"
	"taskpad/api/internal/service"
)

type todoResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Notes         string    `json:"notes,omitempty"`
	Done          bool      `json:"done"`
	HasAttachment bool      `json:"hasAttachment"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toTodoResponse(todo models.Todo) todoResponse {
	return todoResponse{
		ID:            todo.ID,
		Title:         todo.Title,
		Notes:         todo.Notes,
		Done:          todo.Done,
		HasAttachment: todo.AttachmentKey != nil,
		CreatedAt:     todo.CreatedAt,
		UpdatedAt:     todo.UpdatedAt,
	}
}

func (h HandlerSet) ListTodos(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	limit := 50
	offset := 0
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	todos, err := h.todos.List(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]todoResponse, 0, len(todos))
	for _, todo := range todos {
		items = append(items, toTodoResponse(todo))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createTodoRequest struct {
	Title string `json:"title" binding:"required"`
	Notes string `json:"notes"`
}

func (h HandlerSet) CreateTodo(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todos.Create(c.Request.Context(), user.ID, req.Title, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTodoResponse(todo))
}

type updateTodoRequest struct {
	Title *string `json:"title"`
	Notes *string `json:"notes"`
	Done  *bool   `json:"done"`
}

func (h HandlerSet) UpdateTodo(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todos.Update(c.Request.Context(), user.ID, c.Param("id"), service.UpdateTodoInput{
		Title: req.Title,
		Notes: req.Notes,
		Done:  req.Done,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTodoResponse(todo))
}

func (h HandlerSet) DeleteTodo(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.todos.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

const maxAttachmentBytes = 10 << 20 // 10 MiB

func (h HandlerSet) UploadAttachment(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	if fileHeader.Size > maxAttachmentBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "attachment too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	contentType, err := h.todos.Attach(c.Request.Context(), user.ID, c.Param("id"), file, fileHeader.Size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"contentType": contentType,
		"size":        fileHeader.Size,
	})
}

func (h HandlerSet) GetAttachment(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	url, err := h.todos.AttachmentURL(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
