package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RequireBearer verifies a Bearer JWT (HS256) and injects "operator_id" into
// the context. It returns 401 on missing/invalid token; 403 on claim
// validation failure. Used by the read-side reporting routes only; the batch
// endpoint runs on the pre-shared API key instead.
func RequireBearer(secret, iss, aud string) gin.HandlerFunc {
	if secret == "" {
		// Fail fast at startup: misconfiguration.
		panic("jwt secret is required for RequireBearer middleware")
	}

	return func(c *gin.Context) {
		// 1) Extract Bearer token
		authz := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimSpace(authz[len("Bearer "):])
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty bearer token"})
			return
		}

		// 2) Parse + verify signature (HS256 only) and validate registered claims.
		// WithIssuer/WithAudience make the claim *required*, so they are only
		// applied when configured.
		opts := []jwt.ParserOption{jwt.WithLeeway(30 * time.Second)}
		if iss != "" {
			opts = append(opts, jwt.WithIssuer(iss))
		}
		if aud != "" {
			opts = append(opts, jwt.WithAudience(aud))
		}
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(
			raw,
			claims,
			func(t *jwt.Token) (any, error) {
				// Enforce HS256
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			},
			opts...,
		)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// 3) Basic subject sanity check (expect a UUID operator id)
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid subject"})
			return
		}
		if _, err := uuid.Parse(claims.Subject); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid subject"})
			return
		}

		// 4) Propagate identity to handlers
		c.Set("operator_id", claims.Subject)

		// Continue to the handler
		c.Next()
	}
}
