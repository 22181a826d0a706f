package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-adoption-filters/internal/app/storage"
	filtersapp "github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	platformredis "github.com/Apurer/go-adoption-filters/internal/platform/redis"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	Redis             platformredis.Config
	CatalogBaseURL    string
	CatalogTimeout    time.Duration
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	TemporalAwait     bool
	SearchStatusID    int64
	SessionIdle       time.Duration
	Ordering          filtersapp.Ordering
	DeviceUserID      *int64
	PreferenceTTL     time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		Redis:             platformredis.ConfigFromEnv(),
		CatalogBaseURL:    strings.TrimSpace(os.Getenv("CATALOG_BASE_URL")),
		CatalogTimeout:    10 * time.Second,
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		TemporalAwait:     isTruthy(os.Getenv("TEMPORAL_AWAIT_COMMIT")),
		SearchStatusID:    filtersapp.DefaultSearchStatusID,
		SessionIdle:       filtersapp.DefaultIdleTimeout,
		PreferenceTTL:     storage.DefaultPreferenceTTL,
	}
	if seconds, ok, err := positiveInt("CATALOG_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.CatalogTimeout = time.Duration(seconds) * time.Second
	}
	if id, ok, err := positiveInt("SEARCH_STATUS_ID"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.SearchStatusID = int64(id)
	}
	if minutes, ok, err := positiveInt("SESSION_IDLE_MINUTES"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.SessionIdle = time.Duration(minutes) * time.Minute
	}
	if id, ok, err := positiveInt("DEVICE_USER_ID"); err != nil {
		return Config{}, err
	} else if ok {
		userID := int64(id)
		cfg.DeviceUserID = &userID
	}
	if hours, ok, err := positiveInt("PREFERENCE_TTL_HOURS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.PreferenceTTL = time.Duration(hours) * time.Hour
	}
	ordering, err := filtersapp.ParseOrdering(os.Getenv("FILTER_ORDERING"))
	if err != nil {
		return Config{}, fmt.Errorf("FILTER_ORDERING: %w", err)
	}
	cfg.Ordering = ordering
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func positiveInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, false, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, true, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
