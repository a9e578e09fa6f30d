package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opengive/donation-ledger/internal/auth"
)

const (
	// ClaimsKey is the key under which verified claims live in the context
	ClaimsKey = "auth_claims"

	bearerPrefix = "Bearer "
)

// TokenVerifier validates an access token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth middleware requires a valid bearer token and stores the verified
// claims for handlers
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims retrieves the verified claims placed by the Auth middleware
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
