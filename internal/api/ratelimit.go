package api

import (
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware enforces the per-client-address window on the batch
// endpoint: rpm requests per minute, keyed by remote IP. rpm <= 0 disables it.
func RateLimitMiddleware(rpm int) gin.HandlerFunc {
	if rpm <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	lmt := tollbooth.NewLimiter(float64(rpm)/60.0, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Minute,
	})
	lmt.SetBurst(rpm)
	return func(c *gin.Context) {
		httpError := tollbooth.LimitByRequest(lmt, c.Writer, c.Request)
		if httpError != nil {
			c.AbortWithStatusJSON(httpError.StatusCode, gin.H{"error": httpError.Message})
			return
		}
		c.Next()
	}
}
