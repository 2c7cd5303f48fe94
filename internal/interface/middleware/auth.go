package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookworm-api/internal/application"
	"github.com/oksasatya/bookworm-api/internal/domain/entity"
	"github.com/oksasatya/bookworm-api/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// Auth requires a valid bearer token for a user that still exists.
// It sets userID and the public user in the Gin context on success.
func Auth(authn Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "No authentication token, access denied", nil)
			return
		}
		u, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			if application.KindOf(err) == application.KindUnauthenticated {
				response.Abort(c, http.StatusUnauthorized, "Token is not valid", nil)
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("authenticate request failed")
			}
			response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u.Public())
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
// "Bearer <token>" is accepted with any scheme casing; anything else yields "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (entity.PublicUser, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return entity.PublicUser{}, false
	}
	u, ok := v.(entity.PublicUser)
	return u, ok
}
