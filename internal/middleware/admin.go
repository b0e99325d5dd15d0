package middleware

import (
	"github.com/gin-gonic/gin"

	"gorm-trashbin/pkg/errors"
	"gorm-trashbin/pkg/response"
)

// RequireAdmin restricts the route to tokens carrying the admin claim. It
// must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxIsAdminKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if isAdmin, _ := v.(bool); !isAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
