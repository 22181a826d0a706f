package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	platformredis "github.com/Apurer/go-adoption-filters/internal/platform/redis"
)

func TestOpen_FallsBackToMemory(t *testing.T) {
	prefs := Open(context.Background(), Options{}, nil)
	defer prefs.Close()

	require.Equal(t, KindMemory, prefs.Kind)
	require.NotNil(t, prefs.Purger)
	require.NoError(t, prefs.SetUserID(context.Background(), 9))
	id, err := prefs.Users.CurrentUserID(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(9), id)
}

func TestOpen_PrefersRedisOverMemory(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()
	prefs := Open(ctx, Options{Redis: platformredis.Config{Addr: srv.Addr()}}, nil)
	defer prefs.Close()

	require.Equal(t, KindRedis, prefs.Kind)
	require.Nil(t, prefs.Purger)

	_, err := prefs.Store.SaveQuery(ctx, ports.KeyPetFilters, domain.FilterQuery{StateIDs: []int64{35}})
	require.NoError(t, err)
	loaded, err := prefs.Store.LoadQuery(ctx, ports.KeyPetFilters)
	require.NoError(t, err)
	require.Equal(t, []int64{35}, loaded.Entity.StateIDs)

	require.NoError(t, prefs.SetUserID(ctx, 3))
	id, err := prefs.Users.CurrentUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), id)
}

func TestOpen_UnreachableRedisFallsBack(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	prefs := Open(context.Background(), Options{Redis: platformredis.Config{Addr: addr}}, nil)
	defer prefs.Close()
	require.Equal(t, KindMemory, prefs.Kind)
}

func TestOpen_RedisQueriesExpireAfterTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()
	prefs := Open(ctx, Options{Redis: platformredis.Config{Addr: srv.Addr()}, RedisTTL: 48 * time.Hour}, nil)
	defer prefs.Close()

	_, err := prefs.Store.SaveQuery(ctx, ports.KeyMyPetsFilters, domain.FilterQuery{CityIDs: []int64{3304557}})
	require.NoError(t, err)

	var stored string
	for _, key := range srv.Keys() {
		if srv.TTL(key) > 0 {
			stored = key
		}
	}
	require.NotEmpty(t, stored)
	require.Equal(t, 48*time.Hour, srv.TTL(stored))

	srv.FastForward(49 * time.Hour)
	_, err = prefs.Store.LoadQuery(ctx, ports.KeyMyPetsFilters)
	require.ErrorIs(t, err, ports.ErrQueryNotFound)
}

func TestPreferenceTTLFromEnv(t *testing.T) {
	t.Setenv("PREFERENCE_TTL_HOURS", "")
	require.Equal(t, DefaultPreferenceTTL, PreferenceTTLFromEnv())

	t.Setenv("PREFERENCE_TTL_HOURS", "-3")
	require.Equal(t, DefaultPreferenceTTL, PreferenceTTLFromEnv())

	t.Setenv("PREFERENCE_TTL_HOURS", "24")
	require.Equal(t, 24*time.Hour, PreferenceTTLFromEnv())
}
