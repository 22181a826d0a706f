package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-adoption-filters/internal/app/storage"
	filtersapp "github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_DB", "CATALOG_BASE_URL", "CATALOG_TIMEOUT_SECONDS",
		"TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED", "TEMPORAL_AWAIT_COMMIT",
		"SEARCH_STATUS_ID", "SESSION_IDLE_MINUTES", "DEVICE_USER_ID", "FILTER_ORDERING", "PREFERENCE_TTL_HOURS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr())
	require.Empty(t, cfg.PostgresDSN)
	require.Empty(t, cfg.Redis.Addr)
	require.Equal(t, 10*time.Second, cfg.CatalogTimeout)
	require.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	require.Equal(t, client.DefaultNamespace, cfg.TemporalNamespace)
	require.False(t, cfg.TemporalDisabled)
	require.Equal(t, filtersapp.DefaultSearchStatusID, cfg.SearchStatusID)
	require.Equal(t, filtersapp.DefaultIdleTimeout, cfg.SessionIdle)
	require.Equal(t, filtersapp.OrderingLatestTrigger, cfg.Ordering)
	require.Nil(t, cfg.DeviceUserID)
	require.Equal(t, storage.DefaultPreferenceTTL, cfg.PreferenceTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CATALOG_BASE_URL", "http://catalog:8000/api")
	t.Setenv("CATALOG_TIMEOUT_SECONDS", "3")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("SEARCH_STATUS_ID", "4")
	t.Setenv("SESSION_IDLE_MINUTES", "5")
	t.Setenv("DEVICE_USER_ID", "7")
	t.Setenv("FILTER_ORDERING", "Last-Completion")
	t.Setenv("PREFERENCE_TTL_HOURS", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, "http://catalog:8000/api", cfg.CatalogBaseURL)
	require.Equal(t, 3*time.Second, cfg.CatalogTimeout)
	require.True(t, cfg.TemporalDisabled)
	require.Equal(t, int64(4), cfg.SearchStatusID)
	require.Equal(t, 5*time.Minute, cfg.SessionIdle)
	require.Equal(t, int64(7), *cfg.DeviceUserID)
	require.Equal(t, filtersapp.OrderingLastCompletion, cfg.Ordering)
	require.Equal(t, 12*time.Hour, cfg.PreferenceTTL)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"CATALOG_TIMEOUT_SECONDS": "0",
		"SEARCH_STATUS_ID":        "abc",
		"SESSION_IDLE_MINUTES":    "-1",
		"FILTER_ORDERING":         "random",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
