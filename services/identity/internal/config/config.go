package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ntsvetkov/identity-platform/services/identity/internal/models"
)

type Config struct {
	ListenAddr   string
	DatabaseURL  string
	RedisURL     string
	JWTSecret    []byte
	KafkaAddress string
	LogLevel     string

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
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		ListenAddr:          getenv("IDENTITY_ADDR", ":3001"),
		DatabaseURL:         must(os.Getenv("DATABASE_URL"), "DATABASE_URL"),
		RedisURL:            must(os.Getenv("REDIS_URL"), "REDIS_URL"),
		JWTSecret:           []byte(must(os.Getenv("JWT_SECRET"), "JWT_SECRET")),
		KafkaAddress:        os.Getenv("KAFKA_ADDRESS"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		RateLimitFailClosed: os.Getenv("RATE_LIMIT_FAIL_CLOSED") == "true",
	}
}

// InitDB opens the user/refresh-token store and keeps the schema
// current. TranslateError lets unique-index violations surface as
// gorm.ErrDuplicatedKey.
func InitDB(ctx context.Context, databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
