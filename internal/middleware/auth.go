package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-service/internal/constants"
	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/services"
)

// Authenticator resolves a bearer token to a stored user
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// ResolvePrincipal attaches the caller's principal to the context.
// Requests without a bearer token continue as anonymous; a bearer token that
// does not resolve to a user aborts the request with 401.
func ResolvePrincipal(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			c.Set(constants.ContextKeyPrincipal, models.Principal{})
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
		user, err := authenticator.Authenticate(token)
		if err != nil {
			if apierrors.KindOf(err) != apierrors.KindUnauthenticated {
				apierrors.Respond(c, err)
				c.Abort()
				return
			}

			log.Printf("request %s: rejected bearer token: %s", GetRequestID(c), rejectionReason(err))
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipal, models.PrincipalOf(user))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the current principal from context.
// The boolean is false for anonymous requests.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return models.Principal{}, false
	}

	principal, ok := value.(models.Principal)
	if !ok || principal.IsAnonymous() {
		return models.Principal{}, false
	}
	return principal, true
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, services.ErrTokenExpired):
		return "expired"
	case errors.Is(err, services.ErrUnknownTokenSubject):
		return "unknown subject"
	default:
		return err.Error()
	}
}
