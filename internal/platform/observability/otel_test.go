package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_WritesJSONAtLevel(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)
	logger.Info("dropped")
	logger.Warn("kept", slog.String("session.id", "s1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "kept", line["msg"])
	require.Equal(t, "s1", line["session.id"])
}

func TestNoop(t *testing.T) {
	instruments := Noop()
	_, span := instruments.Tracer("test").Start(context.Background(), "op")
	require.False(t, span.SpanContext().IsValid())
	span.End()

	counter, err := instruments.Meter("test").Int64Counter("filters.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
	instruments.Logger.Info("discarded")
}

func TestNilInstrumentsFallBack(t *testing.T) {
	var instruments *Instruments
	require.NotNil(t, instruments.Tracer("x"))
	require.NotNil(t, instruments.Meter("x"))
}
