package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-chat/internal/auth"
	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/pkg/log"
	"github.com/weiawesome/wes-chat/pkg/response"
)

const (
	PrincipalKey  = "principal"
	UserIDKey     = log.FieldUserID
	ScreenNameKey = log.FieldScreenName
	AuthHeaderKey = "Authorization"
)

// Authenticator resolves an Authorization header to a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, authHeader string) (*domain.Principal, error)
}

// AuthMiddleware guards routes that need an authenticated principal.
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// RequireAuth aborts with 401 before the handler runs unless the request
// carries a valid credential. On success the principal is stored on the
// gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		principal, err := m.authenticator.Authenticate(ctx, c.GetHeader(AuthHeaderKey))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials")
				return
			}
			l := log.Ctx(ctx)
			l.Error().Err(err).Msg("failed to authenticate request")
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to authenticate request")
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(UserIDKey, principal.ID)
		c.Set(ScreenNameKey, principal.ScreenName)
		c.Request = c.Request.WithContext(log.WithStr(ctx, log.FieldUserID, principal.ID))

		c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from the gin context.
func GetPrincipal(c *gin.Context) *domain.Principal {
	if p, exists := c.Get(PrincipalKey); exists {
		if principal, ok := p.(*domain.Principal); ok {
			return principal
		}
	}
	return nil
}

// GetUserID extracts user ID from Gin context.
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetToken returns the bearer credential of the request, if any.
func GetToken(c *gin.Context) string {
	token, _ := auth.BearerToken(auth.NormalizeAuthorization(c.GetHeader(AuthHeaderKey)))
	return token
}
