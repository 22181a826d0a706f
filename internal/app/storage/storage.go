// Package storage picks the preference store backend shared by the API, worker and purger.
package storage

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/memory"
	filterspostgres "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/persistence/postgres"
	filtersredis "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/persistence/redis"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	"github.com/Apurer/go-adoption-filters/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-adoption-filters/internal/platform/postgres"
	platformredis "github.com/Apurer/go-adoption-filters/internal/platform/redis"
)

// Backend kinds reported by Preferences.Kind.
const (
	KindPostgres = "postgres"
	KindRedis    = "redis"
	KindMemory   = "memory"
)

// DefaultPreferenceTTL is how long an untouched filter query is kept.
const DefaultPreferenceTTL = 90 * 24 * time.Hour

// PreferenceTTLFromEnv reads PREFERENCE_TTL_HOURS. Missing or invalid values yield
// DefaultPreferenceTTL.
func PreferenceTTLFromEnv() time.Duration {
	hours, err := strconv.Atoi(strings.TrimSpace(os.Getenv("PREFERENCE_TTL_HOURS")))
	if err != nil || hours <= 0 {
		return DefaultPreferenceTTL
	}
	return time.Duration(hours) * time.Hour
}

// Options selects the preference store. Postgres wins over Redis, memory is the fallback.
type Options struct {
	PostgresDSN string
	Redis       platformredis.Config
	// RedisTTL expires queries stored in Redis. Zero keeps them forever.
	RedisTTL time.Duration
}

// Preferences is the selected backend with the capabilities it supports.
type Preferences struct {
	Kind  string
	Store ports.PreferenceStore
	Users ports.UserResolver
	// Purger is nil for Redis, which expires entries through RedisTTL.
	Purger  ports.PreferencePurger
	setUser func(ctx context.Context, id int64) error
	cleanup func()
}

// Open connects to the first configured backend that answers.
func Open(ctx context.Context, opts Options, logger *slog.Logger) *Preferences {
	if db, cleanup := platformpostgres.Open(ctx, opts.PostgresDSN, logger); db != nil {
		if err := migrations.Run(db); err != nil {
			if logger != nil {
				logger.Warn("failed to migrate postgres schema, skipping postgres preference store", slog.String("error", err.Error()))
			}
			cleanup()
		} else {
			store := filterspostgres.NewPreferenceStore(db)
			return &Preferences{
				Kind:    KindPostgres,
				Store:   store,
				Users:   store,
				Purger:  store,
				setUser: store.SetUserID,
				cleanup: cleanup,
			}
		}
	}
	if opts.Redis.Addr != "" {
		client, err := platformredis.Connect(ctx, opts.Redis)
		if err == nil {
			store := filtersredis.NewPreferenceStore(client, filtersredis.WithTTL(opts.RedisTTL))
			if logger != nil {
				logger.Info("preference store configured with redis",
					slog.String("addr", opts.Redis.Addr), slog.Duration("ttl", opts.RedisTTL))
			}
			return &Preferences{
				Kind:    KindRedis,
				Store:   store,
				Users:   store,
				setUser: store.SetUserID,
				cleanup: func() { _ = client.Close() },
			}
		}
		if logger != nil {
			logger.Warn("failed to connect to redis, falling back to in-memory preference store", slog.String("error", err.Error()))
		}
	}
	if logger != nil {
		logger.Warn("no persistent backend configured, using in-memory preference store")
	}
	return NewMemory(memory.NewPreferenceStore())
}

// NewMemory wraps an in-memory store.
func NewMemory(store *memory.PreferenceStore) *Preferences {
	return &Preferences{
		Kind:   KindMemory,
		Store:  store,
		Users:  store,
		Purger: store,
		setUser: func(_ context.Context, id int64) error {
			store.SetUserID(id)
			return nil
		},
		cleanup: func() {},
	}
}

// SetUserID records the device user id in the selected backend.
func (p *Preferences) SetUserID(ctx context.Context, id int64) error {
	return p.setUser(ctx, id)
}

// Close releases the backend connection.
func (p *Preferences) Close() {
	if p != nil && p.cleanup != nil {
		p.cleanup()
	}
}
