package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskpad/api/internal/models"
	"taskpad/api/internal/service"
)

// Context keys shared by the auth middlewares and the handlers. Downstream
// handlers never need to know which middleware authenticated the request.
const (
	CtxUser         = "current_user"
	CtxSessionToken = "session_token"
)

// BasicAuth verifies HTTP Basic email/password credentials and attaches the
// resolved user to the context. It establishes no session; that is the login
// handler's job.
func BasicAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="taskpad"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(CtxUser, user)
		c.Next()
	}
}

// SessionAuth resolves the session cookie to a user and attaches both the
// user and the raw token to the context.
func SessionAuth(auth *service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, sess, err := auth.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxSessionToken, sess.Token)
		c.Next()
	}
}

// CurrentUser extracts the authenticated user placed by BasicAuth or
// SessionAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(CtxUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
