package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cezarfuhr/pix-payout-api/internal/api"
	"github.com/cezarfuhr/pix-payout-api/internal/auth"
	"github.com/cezarfuhr/pix-payout-api/internal/config"
	"github.com/cezarfuhr/pix-payout-api/internal/event"
	pixkafka "github.com/cezarfuhr/pix-payout-api/internal/kafka"
	"github.com/cezarfuhr/pix-payout-api/internal/payout"
	"github.com/cezarfuhr/pix-payout-api/internal/storage"
	"github.com/cezarfuhr/pix-payout-api/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func main() {
	log, _ := telemetry.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config error", zap.Error(err))
	}

	telemetry.InitMetrics()

	// store: postgres when configured, memory otherwise (dev/test)
	var (
		ledger    storage.PayoutRepo
		operators storage.OperatorRepo
		dbPing    func(ctx context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres connect failed", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatal("schema setup failed", zap.Error(err))
		}
		cancel()
		ledger, operators, dbPing = pg, pg, pg.Ping
		log.Info("using postgres ledger store")
	} else {
		mem := storage.NewMemoryStore()
		ledger, operators = mem, mem
		log.Info("using in-memory ledger store")
	}

	// validator
	v := validator.New()

	// batch processor with the simulated settlement rail
	exec := payout.NewSimulatedExecutor(cfg.PaymentSuccessRate)
	proc := payout.NewProcessor(log, ledger, exec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// settlement event publishing (optional)
	var publish func(payout.Report)
	if cfg.KafkaEnabled() {
		schema, err := pixkafka.NewValidator()
		if err != nil {
			log.Fatal("event schema load failed", zap.Error(err))
		}
		producer := pixkafka.NewProducer(cfg.BrokerList(), cfg.KafkaTopic)
		defer producer.Close()

		// queue 100, drained by the worker goroutine
		worker := event.NewWorker(log, producer, schema, 100)
		go worker.Run(ctx)
		publish = worker.EnqueueReport
	}

	// handlers with dependencies
	h := &api.Handlers{
		Log:          log,
		Ledger:       ledger,
		Processor:    proc,
		V:            v,
		DBPing:       dbPing,
		KafkaEnabled: cfg.KafkaEnabled(),
		KafkaBrokers: cfg.BrokerList(),
		KafkaTopic:   cfg.KafkaTopic,
		Publish:      publish,
	}

	// operator auth only when a JWT secret is configured
	var ah *api.AuthHandlers
	if cfg.JWTSecret != "" {
		ttl, err := time.ParseDuration(cfg.JWTAccessTTL)
		if err != nil {
			ttl = 15 * time.Minute
		}
		issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, ttl)
		if err != nil {
			log.Fatal("jwt setup failed", zap.Error(err))
		}
		ah = &api.AuthHandlers{Log: log, Operators: operators, V: v, Tokens: issuer}
	}

	// gin engine
	r := gin.New()
	r.Use(gin.Recovery())

	// http log middleware; request bodies (and pix keys) stay out of logs
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
		)
	})
	r.Use(telemetry.PrometheusMiddleware())

	api.SetupRoutes(r, h, ah, cfg)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Port))

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	cancel()
	ctxTimeout, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctxTimeout)
	log.Info("server stopped")
}
