package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shorturl-api/internal/authz"
	"shorturl-api/internal/jwt"
)

const (
	identityKey = "identity"

	// UnauthorizedMessage is returned for missing or invalid bearer tokens.
	UnauthorizedMessage = "Invalid or absent token. You must first sign-in to continue"
)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller's identity in the context.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromRequest(c, jwtService)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": UnauthorizedMessage,
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware stores the caller's identity when a valid bearer
// token is present and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := identityFromRequest(c, jwtService); ok {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": UnauthorizedMessage,
			})
			return
		}
		if identity.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You can not perform this action.",
			})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by the auth middlewares.
func CurrentIdentity(c *gin.Context) (authz.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return authz.Identity{}, false
	}
	identity, ok := value.(authz.Identity)
	return identity, ok
}

func identityFromRequest(c *gin.Context, jwtService *jwt.JWTService) (authz.Identity, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return authz.Identity{}, false
	}

	claims, err := jwtService.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return authz.Identity{}, false
	}

	return authz.Identity{UserID: claims.Subject, Role: claims.Role}, true
}
