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
	"github.com/redis/go-redis/v9"

	"github.com/ntsvetkov/identity-platform/gateway/internal/config"
	"github.com/ntsvetkov/identity-platform/gateway/internal/httpserver"
	"github.com/ntsvetkov/identity-platform/pkg/logging"
	loggingmw "github.com/ntsvetkov/identity-platform/pkg/middleware/logging"
	"github.com/ntsvetkov/identity-platform/pkg/ratelimit"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(loggingmw.RequestLogger(logger))

	if err := httpserver.Register(e, &httpserver.Deps{
		IdentityURL: cfg.IdentityURL,
		RateLimit: ratelimit.Config{
			Limiter: ratelimit.New(
				ratelimit.NewRedisStore(redisClient),
				"gateway:general",
				ratelimit.Limit{Capacity: 100, Window: time.Minute},
			),
			FailClosed: cfg.RateLimitFailClosed,
		},
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()
	logger.Info("gateway started", "addr", cfg.ListenAddr, "identity_url", cfg.IdentityURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
