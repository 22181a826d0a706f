package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

// DefaultIdleTimeout is how long an untouched session survives SweepIdle.
const DefaultIdleTimeout = 30 * time.Minute

// Manager keeps the open filter sessions and implements Port.
type Manager struct {
	catalog        ports.CatalogClient
	store          ports.PreferenceStore
	publisher      ports.QueryPublisher
	users          ports.UserResolver
	notifier       ports.Notifier
	logger         *slog.Logger
	ordering       Ordering
	searchStatusID int64
	idleTimeout    time.Duration
	now            func() time.Time
	newID          func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

type Option func(*Manager)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithPublisher overrides how committed queries reach the preference store.
func WithPublisher(p ports.QueryPublisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithUserResolver sets the resolver of the device user id.
func WithUserResolver(u ports.UserResolver) Option {
	return func(m *Manager) {
		m.users = u
	}
}

// WithNotifier forwards user facing alerts.
func WithNotifier(n ports.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithOrdering selects the policy for overlapping cascades.
func WithOrdering(o Ordering) Option {
	return func(m *Manager) {
		m.ordering = o
	}
}

// WithSearchStatusID sets the adoption status used by free-text search.
func WithSearchStatusID(id int64) Option {
	return func(m *Manager) {
		m.searchStatusID = id
	}
}

// WithIdleTimeout sets the idle expiry used by SweepIdle.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager wires the filter sessions manager with its dependencies.
func NewManager(catalog ports.CatalogClient, store ports.PreferenceStore, opts ...Option) *Manager {
	m := &Manager{
		catalog:        catalog,
		store:          store,
		logger:         defaultLogger(),
		searchStatusID: DefaultSearchStatusID,
		idleTimeout:    DefaultIdleTimeout,
		now:            time.Now,
		newID:          func() string { return uuid.NewString() },
		sessions:       map[string]*Session{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.logger == nil {
		m.logger = defaultLogger()
	}
	return m
}

// Open mounts a new session for the requested screen.
func (m *Manager) Open(ctx context.Context, input types.OpenSessionInput) (*types.SessionSnapshot, error) {
	screen, err := ScreenByName(input.Screen)
	if err != nil {
		return nil, mapError(err)
	}
	users := m.users
	if input.UserID != nil {
		users = staticUser(*input.UserID)
	}
	session := NewSession(SessionConfig{
		ID:             m.newID(),
		Screen:         screen,
		Catalog:        m.catalog,
		Store:          m.store,
		Publisher:      m.publisher,
		Users:          users,
		Notifier:       m.notifier,
		Logger:         m.logger,
		Ordering:       m.ordering,
		SearchStatusID: m.searchStatusID,
		Now:            m.now,
	})
	session.Mount(ctx)

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()
	return snapshotOf(session), nil
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(_ context.Context, ref types.SessionRef) (*types.SessionSnapshot, error) {
	session, err := m.lookup(ref)
	if err != nil {
		return nil, err
	}
	return snapshotOf(session), nil
}

// Toggle flips one item and waits for its cascade.
func (m *Manager) Toggle(ctx context.Context, input types.ToggleInput) (*types.SessionSnapshot, error) {
	session, err := m.lookup(input.SessionRef)
	if err != nil {
		return nil, err
	}
	toggle, err := ParseToggle(input.Domain, input.ID)
	if err != nil {
		return nil, err
	}
	if err := session.Toggle(ctx, toggle); err != nil {
		return nil, mapError(err)
	}
	return snapshotOf(session), nil
}

// SetSpecificAge edits the specific age of a bucket.
func (m *Manager) SetSpecificAge(_ context.Context, input types.SpecificAgeInput) (*types.SessionSnapshot, error) {
	session, err := m.lookup(input.SessionRef)
	if err != nil {
		return nil, err
	}
	if _, err := session.SetSpecificAge(input.AgeRangeID, input.Text); err != nil {
		return nil, mapError(err)
	}
	return snapshotOf(session), nil
}

// ToggleOnlyFavorites flips the favorites filter.
func (m *Manager) ToggleOnlyFavorites(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error) {
	session, err := m.lookup(ref)
	if err != nil {
		return nil, err
	}
	session.ToggleOnlyFavorites(ctx)
	return snapshotOf(session), nil
}

// Search runs a free-text search.
func (m *Manager) Search(ctx context.Context, input types.SearchInput) (*types.SessionSnapshot, error) {
	session, err := m.lookup(input.SessionRef)
	if err != nil {
		return nil, err
	}
	session.Search(ctx, input.Text)
	return snapshotOf(session), nil
}

// Clear resets every filter of a session.
func (m *Manager) Clear(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error) {
	session, err := m.lookup(ref)
	if err != nil {
		return nil, err
	}
	if err := session.Clear(ctx); err != nil {
		return nil, err
	}
	return snapshotOf(session), nil
}

// Commit builds and publishes the query of a session.
func (m *Manager) Commit(ctx context.Context, ref types.SessionRef) (*types.CommitResult, error) {
	session, err := m.lookup(ref)
	if err != nil {
		return nil, err
	}
	query, err := session.Commit(ctx)
	if err != nil {
		return nil, err
	}
	return &types.CommitResult{SessionID: session.ID(), Key: session.Screen().Key, Query: query}, nil
}

// Close forgets a session.
func (m *Manager) Close(_ context.Context, ref types.SessionRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[ref.SessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, ref.SessionID)
	return nil
}

// SweepIdle closes sessions untouched for longer than the idle timeout and returns how many
// were removed.
func (m *Manager) SweepIdle() int {
	cutoff := m.now().Add(-m.idleTimeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, session := range m.sessions {
		if session.LastUsed().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.SweepIdle(); n > 0 {
				m.logger.Info("expired idle filter sessions", slog.Int("count", n))
			}
		}
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) lookup(ref types.SessionRef) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[ref.SessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func snapshotOf(s *Session) *types.SessionSnapshot {
	snapshot := s.Snapshot()
	return &snapshot
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ Port = (*Manager)(nil)
