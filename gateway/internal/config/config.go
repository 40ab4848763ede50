package config

import (
	"log"
	"os"
)

type Config struct {
	ListenAddr  string
	IdentityURL string
	RedisURL    string
	LogLevel    string

	RateLimitFailClosed bool
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func Load() *Config {
	return &Config{
		ListenAddr:          getenv("GATEWAY_ADDR", ":3000"),
		IdentityURL:         must(os.Getenv("IDENTITY_SERVICE_URL"), "IDENTITY_SERVICE_URL"),
		RedisURL:            must(os.Getenv("REDIS_URL"), "REDIS_URL"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		RateLimitFailClosed: os.Getenv("RATE_LIMIT_FAIL_CLOSED") == "true",
	}
}
