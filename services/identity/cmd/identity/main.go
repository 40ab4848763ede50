package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/ntsvetkov/identity-platform/pkg/logging"
	loggingmw "github.com/ntsvetkov/identity-platform/pkg/middleware/logging"
	"github.com/ntsvetkov/identity-platform/pkg/ratelimit"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/config"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/events"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/httpserver"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/repo"
	"github.com/ntsvetkov/identity-platform/services/identity/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer(cfg.KafkaAddress, "identity.auth-events")
		defer producer.Close()
	}

	svc := &service.IdentityService{
		Repo:      &repo.GormRepo{DB: db},
		Events:    producer,
		JWTSecret: cfg.JWTSecret,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(ecM.Recover())
	e.Use(ecM.RequestID())
	e.Use(ecM.Secure())
	e.Use(ecM.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	counters := ratelimit.NewRedisStore(redisClient)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		GeneralLimit: ratelimit.Config{
			Limiter:    ratelimit.New(counters, "identity:general", ratelimit.Limit{Capacity: 10, Window: time.Second}),
			FailClosed: cfg.RateLimitFailClosed,
		},
		SensitiveLimit: ratelimit.Config{
			Limiter:    ratelimit.New(counters, "identity:register", ratelimit.Limit{Capacity: 5, Window: time.Minute}),
			FailClosed: cfg.RateLimitFailClosed,
		},
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()
	logger.Info("identity service started", "addr", cfg.ListenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
