package api

import (
	_ "github.com/cezarfuhr/pix-payout-api/docs"
	"github.com/cezarfuhr/pix-payout-api/internal/auth"
	"github.com/cezarfuhr/pix-payout-api/internal/config"
	"github.com/cezarfuhr/pix-payout-api/telemetry"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes mounts everything. The batch endpoint sits behind the rate
// limiter and the pre-shared API key; the read side is JWT-guarded and only
// mounted when ah is configured.
func SetupRoutes(r *gin.Engine, h *Handlers, ah *AuthHandlers, cfg config.Config) {
	v1 := r.Group("/v1")
	{
		batch := v1.Group("/payouts")
		batch.Use(RateLimitMiddleware(cfg.RateLimitRPM))
		batch.Use(auth.RequireAPIKey(cfg.APIKey))
		batch.POST("/batch", h.ProcessBatch)
	}

	if ah != nil {
		r.POST("/auth/register", ah.Register)
		r.POST("/auth/login", ah.Login)

		bearer := auth.RequireBearer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
		reads := v1.Group("", bearer)
		reads.GET("/payouts/:external_id", h.GetPayout)
		reads.GET("/events/payouts", h.KafkaPoll)
	}

	r.GET("/health", h.Health)
	r.GET("/metrics", telemetry.MetricsHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
