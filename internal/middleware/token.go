package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-chat/internal/auth"
)

// ReplaceToken rewrites a `Token token=<t>` Authorization header into the
// canonical `Bearer <t>` form for every later handler.
func ReplaceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader(AuthHeaderKey); header != "" {
			c.Request.Header.Set(AuthHeaderKey, auth.NormalizeAuthorization(header))
		}
		c.Next()
	}
}
