package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

// RequireRoles admits sessions whose user carries any of the roles.
// The upstream still enforces its own rules; this only keeps admin screens
// away from users who could never use them.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, role := range roles {
			if sess.User.HasRole(role) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
