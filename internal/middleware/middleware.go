package middleware

import (
	"net/http"
	"strings"

	"github.com/PizzaFlow/backend/internal/auth"
	"github.com/PizzaFlow/backend/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
	ClientIDKey = "clientID"
)

// OAuth2Auth validates Bearer tokens (login and OAuth2 issued) and stores the
// caller identity in the gin context.
func OAuth2Auth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_request",
				"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
			return
		}

		identity, err := auth.Authenticate(strings.TrimPrefix(authHeader, "Bearer "), jwtSecret)
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}

		c.Set(identityKey, identity)
		c.Set(UserIDKey, identity.UserID)
		c.Set(UserRoleKey, identity.Role)
		if identity.ClientID != "" {
			c.Set(ClientIDKey, identity.ClientID)
		}

		c.Next()
	}
}

// CurrentIdentity returns the identity stored by OAuth2Auth.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}

// respondWithOAuth2Error responds with the RFC 6750 error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}
