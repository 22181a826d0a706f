package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
)

const tracerName = "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/observability/service"

// Service decorates the filter sessions port with tracing, logging, and metrics.
type Service struct {
	inner   application.Port
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the filter sessions port.
func New(inner application.Port, opts ...Option) application.Port {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Open(ctx context.Context, input types.OpenSessionInput) (*types.SessionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.Open", attribute.String("filter.screen", input.Screen))
	defer span.End()

	s.logInfo(ctx, "opening filter session", slog.String("screen", input.Screen))
	result, err := s.inner.Open(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to open filter session", slog.String("screen", input.Screen))
	}
	s.metrics.recordOpened(ctx, result.Screen)
	s.observeSnapshot(ctx, span, result)
	s.logInfo(ctx, "filter session opened", slog.String("session.id", result.ID), slog.String("screen", result.Screen))
	return result, nil
}

func (s *Service) Get(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.Get", attribute.String("session.id", ref.SessionID))
	defer span.End()

	result, err := s.inner.Get(ctx, ref)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load filter session", slog.String("session.id", ref.SessionID))
	}
	s.observeSnapshot(ctx, span, result)
	return result, nil
}

func (s *Service) Toggle(ctx context.Context, input types.ToggleInput) (*types.SessionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.Toggle",
		attribute.String("session.id", input.SessionID),
		attribute.String("filter.domain", input.Domain),
		attribute.Int64("filter.item.id", input.ID),
	)
	defer span.End()

	s.logInfo(ctx, "toggling filter", slog.String("session.id", input.SessionID), slog.String("domain", input.Domain), slog.Int64("item.id", input.ID))
	result, err := s.inner.Toggle(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to toggle filter", slog.String("session.id", input.SessionID))
	}
	s.metrics.recordToggled(ctx, input.Domain)
	s.observeSnapshot(ctx, span, result)
	return result, nil
}

func (s *Service) SetSpecificAge(ctx context.Context, input types.SpecificAgeInput) (*types.SessionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.SetSpecificAge",
		attribute.String("session.id", input.SessionID),
		attribute.Int64("filter.age_range.id", input.AgeRangeID),
	)
	defer span.End()

	result, err := s.inner.SetSpecificAge(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set specific age", slog.String("session.id", input.SessionID))
	}
	if msg, ok := result.AgeErrors[input.AgeRangeID]; ok {
		span.SetAttributes(attribute.String("filter.age.error", msg))
	}
	s.observeSnapshot(ctx, span, result)
	return result, nil
}

func (s *Service) ToggleOnlyFavorites(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.ToggleOnlyFavorites", attribute.String("session.id", ref.SessionID))
	defer span.End()

	result, err := s.inner.ToggleOnlyFavorites(ctx, ref)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to toggle favorites filter", slog.String("session.id", ref.SessionID))
	}
	span.SetAttributes(
		attribute.Bool("filter.only_favorites", result.State.OnlyFavorites),
		attribute.Int("filter.favorites.count", result.FavoritesCount),
	)
	s.observeSnapshot(ctx, span, result)
	return result, nil
}

func (s *Service) Search(ctx context.Context, input types.SearchInput) (*types.SessionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.Search", attribute.String("session.id", input.SessionID))
	defer span.End()

	s.logInfo(ctx, "searching pets by name", slog.String("session.id", input.SessionID))
	result, err := s.inner.Search(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search pets", slog.String("session.id", input.SessionID))
	}
	span.SetAttributes(attribute.Int("pet.result.count", len(result.State.SearchResults)))
	s.observeSnapshot(ctx, span, result)
	return result, nil
}

func (s *Service) Clear(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.Clear", attribute.String("session.id", ref.SessionID))
	defer span.End()

	s.logInfo(ctx, "clearing filters", slog.String("session.id", ref.SessionID))
	result, err := s.inner.Clear(ctx, ref)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to clear filters", slog.String("session.id", ref.SessionID))
	}
	s.observeSnapshot(ctx, span, result)
	return result, nil
}

func (s *Service) Commit(ctx context.Context, ref types.SessionRef) (*types.CommitResult, error) {
	ctx, span := s.startSpan(ctx, "FilterSessions.Commit", attribute.String("session.id", ref.SessionID))
	defer span.End()

	s.logInfo(ctx, "committing filter query", slog.String("session.id", ref.SessionID))
	result, err := s.inner.Commit(ctx, ref)
	if err != nil {
		if errors.Is(err, application.ErrInvalidAge) {
			s.metrics.recordRejected(ctx)
		}
		return nil, s.handleError(ctx, span, err, "failed to commit filter query", slog.String("session.id", ref.SessionID))
	}
	s.metrics.recordCommitted(ctx, result.Key)
	span.SetAttributes(
		attribute.String("filter.key", result.Key),
		attribute.Int64Slice("filter.species_ids", result.Query.SpeciesIDs),
		attribute.Bool("filter.empty", result.Query.IsEmpty()),
	)
	s.logInfo(ctx, "filter query committed", slog.String("session.id", ref.SessionID), slog.String("key", result.Key))
	return result, nil
}

func (s *Service) Close(ctx context.Context, ref types.SessionRef) error {
	ctx, span := s.startSpan(ctx, "FilterSessions.Close", attribute.String("session.id", ref.SessionID))
	defer span.End()

	if err := s.inner.Close(ctx, ref); err != nil {
		return s.handleError(ctx, span, err, "failed to close filter session", slog.String("session.id", ref.SessionID))
	}
	s.logInfo(ctx, "filter session closed", slog.String("session.id", ref.SessionID))
	return nil
}

// observeSnapshot records list sizes and the alerts raised by degraded fetches.
func (s *Service) observeSnapshot(ctx context.Context, span trace.Span, snapshot *types.SessionSnapshot) {
	if snapshot == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("filter.species.count", len(snapshot.State.Species)),
		attribute.Int("filter.breeds.count", len(snapshot.State.Breeds)),
		attribute.Int("filter.age_ranges.count", len(snapshot.State.AgeRanges)),
		attribute.Int("filter.cities.count", len(snapshot.State.Cities)),
	)
	for _, alert := range snapshot.Alerts {
		span.AddEvent("catalog.degraded", trace.WithAttributes(attribute.String("source", alert.Source)))
		s.metrics.recordDegraded(ctx, alert.Source)
	}
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	sessionsOpened  metric.Int64Counter
	filtersToggled  metric.Int64Counter
	queriesCommit   metric.Int64Counter
	commitsRejected metric.Int64Counter
	fetchesDegraded metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	opened, _ := m.Int64Counter("filters.sessions.opened", metric.WithDescription("Number of filter sessions opened"))
	toggled, _ := m.Int64Counter("filters.selections.toggled", metric.WithDescription("Number of filter selections toggled"))
	committed, _ := m.Int64Counter("filters.queries.committed", metric.WithDescription("Number of filter queries committed"))
	rejected, _ := m.Int64Counter("filters.queries.rejected", metric.WithDescription("Number of commits blocked by age validation"))
	degraded, _ := m.Int64Counter("filters.catalog.degraded", metric.WithDescription("Number of catalog fetches dropped from a list"))
	return serviceMetrics{
		sessionsOpened:  opened,
		filtersToggled:  toggled,
		queriesCommit:   committed,
		commitsRejected: rejected,
		fetchesDegraded: degraded,
	}
}

func (m serviceMetrics) recordOpened(ctx context.Context, screen string) {
	addCounter(ctx, m.sessionsOpened, 1, attribute.String("filter.screen", screen))
}

func (m serviceMetrics) recordToggled(ctx context.Context, domain string) {
	addCounter(ctx, m.filtersToggled, 1, attribute.String("filter.domain", domain))
}

func (m serviceMetrics) recordCommitted(ctx context.Context, key string) {
	addCounter(ctx, m.queriesCommit, 1, attribute.String("filter.key", key))
}

func (m serviceMetrics) recordRejected(ctx context.Context) {
	addCounter(ctx, m.commitsRejected, 1)
}

func (m serviceMetrics) recordDegraded(ctx context.Context, source string) {
	addCounter(ctx, m.fetchesDegraded, 1, attribute.String("source", source))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ application.Port = (*Service)(nil)
