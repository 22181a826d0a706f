package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config selects the Redis endpoint.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// ConfigFromEnv reads REDIS_ADDR, REDIS_PASSWORD and REDIS_DB.
func ConfigFromEnv() Config {
	db, _ := strconv.Atoi(strings.TrimSpace(os.Getenv("REDIS_DB")))
	return Config{
		Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}
}

// Connect opens a Redis client and verifies connectivity.
func Connect(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ConnectFromEnv dials Redis using REDIS_ADDR and returns the client plus a cleanup function.
// When REDIS_ADDR is missing or the connection fails, it logs and returns nil with a no-op cleanup.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger) (*goredis.Client, func()) {
	cfg := ConfigFromEnv()
	if cfg.Addr == "" {
		return nil, func() {}
	}
	client, err := Connect(ctx, cfg)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to redis, skipping redis preference store", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("redis connection established", slog.String("addr", cfg.Addr))
	}
	return client, func() { _ = client.Close() }
}
