package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestConnect_EmptyAddr(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	require.Error(t, err)
}

func TestConnectFromEnv_Unset(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	client, cleanup := ConnectFromEnv(context.Background(), nil)
	defer cleanup()
	require.Nil(t, client)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", " cache:6379 ")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")
	require.Equal(t, Config{Addr: "cache:6379", Password: "secret", DB: 2}, ConfigFromEnv())
}
