package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskpad/api/internal/middleware"
	"taskpad/api/internal/models"
	"taskpad/api/internal/service"
	"taskpad/api/internal/session"
)

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// userResponse is the sanitized user representation. The password hash never
// appears in any response shape.
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func sanitizeUser(user models.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

func (h HandlerSet) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sanitizeUser(user))
}

// Login runs behind BasicAuth, so the user is already resolved. It mints the
// session and hands the token back as a cookie; the body stays empty.
func (h HandlerSet) Login(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sess, err := h.auth.StartSession(c.Request.Context(), user, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	session.SetCookie(c.Writer, h.cfg.Session.CookieName, sess.Token, sess.ExpiresAt, h.cfg.Session.CookieSecure)
	c.Status(http.StatusOK)
}

func (h HandlerSet) Logout(c *gin.Context) {
	token := c.GetString(middleware.CtxSessionToken)

	if err := h.auth.EndSession(c.Request.Context(), token); err != nil {
		h.respondError(c, err)
		return
	}

	session.ClearCookie(c.Writer, h.cfg.Session.CookieName, h.cfg.Session.CookieSecure)
	c.Status(http.StatusOK)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, sanitizeUser(user))
}

type sessionResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Current   bool      `json:"current"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	current := c.GetString(middleware.CtxSessionToken)

	sessions, err := h.auth.ListSessions(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, sessionResponse{
			CreatedAt: sess.CreatedAt,
			ExpiresAt: sess.ExpiresAt,
			IPAddress: sess.IPAddress,
			UserAgent: sess.UserAgent,
			Current:   sess.Token == current,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}
