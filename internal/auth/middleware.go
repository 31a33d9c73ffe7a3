package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "claims"
	tokenKey  = "token"
)

// Middleware enforces a bearer JWT signed with HS256 and rejects tokens on
// the revocation list. Claims and the raw token land in the gin context for
// downstream handlers.
func Middleware(signingKey, issuer string, revoked RevocationList) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if isRevoked, err := revoked.Revoked(c.Request.Context(), tokenStr); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth check failed"})
			return
		} else if isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set(tokenKey, tokenStr)
		c.Next()
	}
}

// RequireRole gates a route group on the role claim. Runs after Middleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := FromContext(c)
		if !ok || claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// FromContext returns the claims Middleware stored.
func FromContext(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

// TokenFromContext returns the raw bearer token Middleware stored.
func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(tokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
