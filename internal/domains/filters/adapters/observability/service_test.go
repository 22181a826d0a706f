package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	filtermemory "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/memory"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
)

func newInstrumented(t *testing.T) (application.Port, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	return newInstrumentedWithCatalog(t, filtermemory.NewCatalog(filtermemory.SeedData()))
}

func newInstrumentedWithCatalog(t *testing.T, catalog *filtermemory.Catalog) (application.Port, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	store := filtermemory.NewPreferenceStore()
	mgr := application.NewManager(catalog, store, application.WithUserResolver(store))
	svc := New(mgr, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))
	return svc, recorder, reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestService_RecordsSpansAndCounters(t *testing.T) {
	ctx := context.Background()
	svc, recorder, reader := newInstrumented(t)

	opened, err := svc.Open(ctx, types.OpenSessionInput{Screen: "pet-listing"})
	require.NoError(t, err)
	ref := types.SessionRef{SessionID: opened.ID}

	_, err = svc.Toggle(ctx, types.ToggleInput{SessionRef: ref, Domain: types.DomainSpecies, ID: 1})
	require.NoError(t, err)
	_, err = svc.Commit(ctx, ref)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	require.Equal(t, []string{"FilterSessions.Open", "FilterSessions.Toggle", "FilterSessions.Commit"}, names)
	require.Equal(t, int64(1), counterTotal(t, reader, "filters.sessions.opened"))
	require.Equal(t, int64(1), counterTotal(t, reader, "filters.selections.toggled"))
	require.Equal(t, int64(1), counterTotal(t, reader, "filters.queries.committed"))
}

func TestService_RecordsRejectedCommit(t *testing.T) {
	ctx := context.Background()
	svc, recorder, reader := newInstrumented(t)

	opened, err := svc.Open(ctx, types.OpenSessionInput{Screen: "pet-listing"})
	require.NoError(t, err)
	ref := types.SessionRef{SessionID: opened.ID}
	_, err = svc.Toggle(ctx, types.ToggleInput{SessionRef: ref, Domain: types.DomainAgeRange, ID: 2})
	require.NoError(t, err)
	_, err = svc.SetSpecificAge(ctx, types.SpecificAgeInput{SessionRef: ref, AgeRangeID: 2, Text: "40"})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, ref)
	require.ErrorIs(t, err, application.ErrInvalidAge)

	spans := recorder.Ended()
	last := spans[len(spans)-1]
	require.Equal(t, "FilterSessions.Commit", last.Name())
	require.Equal(t, codes.Error, last.Status().Code)
	require.Equal(t, int64(1), counterTotal(t, reader, "filters.queries.rejected"))
}

func TestService_PassesThroughNotFound(t *testing.T) {
	svc, _, _ := newInstrumented(t)
	_, err := svc.Get(context.Background(), types.SessionRef{SessionID: "missing"})
	require.ErrorIs(t, err, application.ErrSessionNotFound)
	require.ErrorIs(t, svc.Close(context.Background(), types.SessionRef{SessionID: "missing"}), application.ErrSessionNotFound)
}

func TestService_CountsDegradedCatalogFetches(t *testing.T) {
	ctx := context.Background()
	catalog := filtermemory.NewCatalog(filtermemory.SeedData())
	catalog.FailOn(filtermemory.OpListBreedsBySpecies, 1, errors.New("catalog unavailable"))
	svc, recorder, reader := newInstrumentedWithCatalog(t, catalog)

	opened, err := svc.Open(ctx, types.OpenSessionInput{Screen: "pet-listing"})
	require.NoError(t, err)
	require.Zero(t, counterTotal(t, reader, "filters.catalog.degraded"))

	snapshot, err := svc.Toggle(ctx, types.ToggleInput{SessionRef: types.SessionRef{SessionID: opened.ID}, Domain: types.DomainSpecies, ID: 1})
	require.NoError(t, err)
	require.Len(t, snapshot.Alerts, 1)
	require.Equal(t, "breeds", snapshot.Alerts[0].Source)
	require.Equal(t, int64(1), counterTotal(t, reader, "filters.catalog.degraded"))

	spans := recorder.Ended()
	toggle := spans[len(spans)-1]
	require.Equal(t, "FilterSessions.Toggle", toggle.Name())
	require.Len(t, toggle.Events(), 1)
	require.Equal(t, "catalog.degraded", toggle.Events()[0].Name)
}
