package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "X-API-Key"

// RequireAPIKey guards the batch endpoint with the pre-shared key.
// Missing or wrong key is 401; no batch logic runs after that.
func RequireAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.GetHeader(APIKeyHeader)
		if client == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}
		if !secureCompare(key, client) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
