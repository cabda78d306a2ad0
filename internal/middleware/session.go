package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/logger"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "currentSession"

// SessionResolver loads a live session by id.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*models.Session, error)
}

// SessionSource names where the session id travels on a request.
type SessionSource struct {
	Header string
	Cookie string
}

// ID reads the session id from the header first, then the cookie.
func (s SessionSource) ID(c *gin.Context) string {
	if s.Header != "" {
		if id := strings.TrimSpace(c.GetHeader(s.Header)); id != "" {
			return id
		}
	}
	if s.Cookie != "" {
		if id, err := c.Cookie(s.Cookie); err == nil {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

// Session protects routes by requiring a live gateway session.
func Session(resolver SessionResolver, source SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := source.ID(c)
		if id == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing session"))
			c.Abort()
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Set(logger.SessionIDKey, sess.ID)
		c.Set(logger.UserIDKey, sess.UserID())
		c.Next()
	}
}

// CurrentSession returns the session attached by Session, or nil.
func CurrentSession(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return sess
}
