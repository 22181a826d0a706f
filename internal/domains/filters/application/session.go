package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

// Ordering decides how overlapping cascades of the same kind are applied.
type Ordering int

const (
	// OrderingLatestTrigger discards results of a cascade superseded by a newer trigger.
	OrderingLatestTrigger Ordering = iota
	// OrderingLastCompletion applies every cascade result when it lands, so an older trigger
	// finishing last overwrites a newer one.
	OrderingLastCompletion
)

func (o Ordering) String() string {
	if o == OrderingLastCompletion {
		return "last-completion"
	}
	return "latest-trigger"
}

// ParseOrdering maps "latest-trigger" and "last-completion" to an Ordering. Blank selects the
// default.
func ParseOrdering(raw string) (Ordering, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", OrderingLatestTrigger.String():
		return OrderingLatestTrigger, nil
	case OrderingLastCompletion.String():
		return OrderingLastCompletion, nil
	default:
		return 0, fmt.Errorf("%w: unknown ordering %q", ErrInvalidInput, raw)
	}
}

// DefaultSearchStatusID is the adoption status used by free-text search ("available").
const DefaultSearchStatusID int64 = 1

// SessionConfig carries the collaborators and policies of one filter session.
type SessionConfig struct {
	ID             string
	Screen         Screen
	Catalog        ports.CatalogClient
	Store          ports.PreferenceStore
	Publisher      ports.QueryPublisher
	Users          ports.UserResolver
	Notifier       ports.Notifier
	Logger         *slog.Logger
	Ordering       Ordering
	SearchStatusID int64
	Now            func() time.Time
}

// Session owns the selection state of one mounted filter screen. All mutations go through its
// methods; it is safe for concurrent use and releases its lock while waiting on the network.
type Session struct {
	id             string
	screen         Screen
	catalog        ports.CatalogClient
	store          ports.PreferenceStore
	publisher      ports.QueryPublisher
	notifier       ports.Notifier
	logger         *slog.Logger
	resolver       *Resolver
	favorites      *FavoritesGate
	ordering       Ordering
	searchStatusID int64
	now            func() time.Time

	mu            sync.Mutex
	state         domain.SelectionState
	rootAgeRanges []domain.AgeRangeBucket
	speciesGen    uint64
	statesGen     uint64
	searchGen     uint64
	alerts        []types.Alert
	openedAt      time.Time
	lastUsed      time.Time
}

// NewSession builds an unmounted session.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		id:             cfg.ID,
		screen:         cfg.Screen,
		catalog:        cfg.Catalog,
		store:          cfg.Store,
		publisher:      cfg.Publisher,
		notifier:       cfg.Notifier,
		logger:         cfg.Logger,
		ordering:       cfg.Ordering,
		searchStatusID: cfg.SearchStatusID,
		now:            cfg.Now,
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.searchStatusID == 0 {
		s.searchStatusID = DefaultSearchStatusID
	}
	if s.publisher == nil && s.store != nil {
		s.publisher = storePublisher{store: s.store}
	}
	s.resolver = NewResolver(cfg.Catalog, s.reportFailure)
	s.favorites = NewFavoritesGate(cfg.Catalog, cfg.Users)
	s.openedAt = s.now()
	s.lastUsed = s.openedAt
	s.state = emptyState()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Screen returns the screen context of the session.
func (s *Session) Screen() Screen { return s.screen }

// Mount fetches the top level catalogs in parallel and hydrates any persisted query.
func (s *Session) Mount(ctx context.Context) {
	var (
		species []domain.Species
		ages    []domain.AgeRangeBucket
		states  []domain.State
	)
	var g errgroup.Group
	g.Go(func() error {
		list, err := s.catalog.ListSpecies(ctx)
		if err != nil {
			s.reportFailure(ctx, "species", 0, err)
			return nil
		}
		species = domain.Dedupe(list)
		return nil
	})
	g.Go(func() error {
		list, err := s.catalog.ListAgeRanges(ctx)
		if err != nil {
			s.reportFailure(ctx, "ageRanges", 0, err)
			return nil
		}
		ages = domain.Dedupe(list)
		return nil
	})
	g.Go(func() error {
		list, err := s.catalog.ListStates(ctx)
		if err != nil {
			s.reportFailure(ctx, "states", 0, err)
			return nil
		}
		states = domain.Dedupe(list)
		return nil
	})
	_ = g.Wait()

	persisted := s.loadPersisted(ctx)
	fb := persisted.Fallbacks()

	s.mu.Lock()
	s.rootAgeRanges = ages
	s.state.Species = domain.Reconcile(species, nil, fb.Species)
	s.state.States = domain.Reconcile(states, nil, fb.States)
	s.state.AgeRanges = s.rootAgeItems(fb.AgeRanges)
	s.state.OnlyFavorites = persisted.OnlyFavorites
	s.state.SearchText = persisted.SearchText
	s.state.SearchResults = append([]domain.Pet{}, persisted.SearchResults...)
	speciesTicket := speciesCascade{}.begin(s)
	statesTicket := stateCascade{}.begin(s)
	s.mu.Unlock()

	var hydrate errgroup.Group
	if len(speciesTicket.parents) > 0 {
		hydrate.Go(func() error {
			speciesCascade{}.run(ctx, s, speciesTicket, fb)
			return nil
		})
	}
	if len(statesTicket.parents) > 0 {
		hydrate.Go(func() error {
			stateCascade{}.run(ctx, s, statesTicket, fb)
			return nil
		})
	}
	if persisted.OnlyFavorites {
		hydrate.Go(func() error {
			s.loadFavorites(ctx)
			return nil
		})
	}
	_ = hydrate.Wait()
}

// Toggle flips one item and runs its cascade, if any, before returning.
func (s *Session) Toggle(ctx context.Context, t Toggle) error {
	if t == nil {
		return fmt.Errorf("%w: nil toggle", ErrInvalidInput)
	}
	s.mu.Lock()
	s.touch()
	if !t.flip(&s.state) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %T %+v", ErrUnknownItem, t, t)
	}
	c := t.cascade()
	var ticket cascadeTicket
	if c != nil {
		ticket = c.begin(s)
	}
	s.mu.Unlock()

	if c != nil {
		c.run(ctx, s, ticket, domain.QueryFallbacks{})
	}
	return nil
}

// SetSpecificAge stores the digits of raw as the specific age of a bucket and validates it.
// It returns the validation message, empty when the age is acceptable.
func (s *Session) SetSpecificAge(ageRangeID int64, raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	for i := range s.state.AgeRanges {
		item := &s.state.AgeRanges[i]
		if item.ID() != ageRangeID {
			continue
		}
		item.SpecificAge = domain.SanitizeAgeInput(raw)
		item.AgeError = domain.ValidateAge(item.SpecificAge, item.Value)
		return item.AgeError, nil
	}
	return "", fmt.Errorf("%w: age range %d", ErrUnknownItem, ageRangeID)
}

// ToggleOnlyFavorites flips the favorites filter and lazily resolves the favorite set.
// The flag flips even when favorites cannot be loaded; filtering then uses an empty set.
func (s *Session) ToggleOnlyFavorites(ctx context.Context) bool {
	s.mu.Lock()
	s.touch()
	s.state.OnlyFavorites = !s.state.OnlyFavorites
	on := s.state.OnlyFavorites
	s.mu.Unlock()

	if !s.favorites.Loaded() {
		s.loadFavorites(ctx)
	}
	return on
}

// Search runs a free-text search by pet name. Blank text clears the active search.
func (s *Session) Search(ctx context.Context, text string) []domain.Pet {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	s.touch()
	s.searchGen++
	gen := s.searchGen
	if text == "" {
		s.state.SearchText = ""
		s.state.SearchResults = nil
		s.mu.Unlock()
		return []domain.Pet{}
	}
	s.mu.Unlock()

	pets := []domain.Pet{}
	raw, err := s.catalog.SearchPets(ctx, text, s.searchStatusID)
	if err != nil {
		s.reportFailure(ctx, "search", 0, err)
	} else {
		pets = domain.NormalizeSearchResponse(raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ordering == OrderingLatestTrigger && gen != s.searchGen {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale search results", slog.String("session.id", s.id))
		return append([]domain.Pet{}, pets...)
	}
	s.state.SearchText = text
	s.state.SearchResults = pets
	return append([]domain.Pet{}, pets...)
}

// Clear drops every selection and the persisted query of the screen.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.touch()
	s.speciesGen++
	s.statesGen++
	s.searchGen++
	s.state.Species = domain.Reconcile(domain.Values(s.state.Species), nil, domain.Fallback{})
	s.state.States = domain.Reconcile(domain.Values(s.state.States), nil, domain.Fallback{})
	s.state.Breeds = []domain.Item[domain.Breed]{}
	s.state.Cities = []domain.Item[domain.City]{}
	s.state.AgeRanges = s.rootAgeItems(domain.Fallback{})
	s.state.OnlyFavorites = false
	s.state.FavoritePetIDs = nil
	s.state.SearchText = ""
	s.state.SearchResults = nil
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.DeleteQuery(ctx, s.screen.Key); err != nil && !errors.Is(err, ports.ErrQueryNotFound) {
		return fmt.Errorf("delete persisted query: %w", err)
	}
	return nil
}

// Commit builds the query and hands it to the publisher. It fails with an AgeValidationError
// while a selected bucket carries an age error.
func (s *Session) Commit(ctx context.Context) (domain.FilterQuery, error) {
	s.mu.Lock()
	s.touch()
	if errs := s.state.AgeErrors(); len(errs) > 0 {
		s.mu.Unlock()
		return domain.FilterQuery{}, &AgeValidationError{Errors: errs}
	}
	if s.state.OnlyFavorites {
		s.state.FavoritePetIDs = s.favorites.IDs()
	}
	query := domain.BuildQuery(s.state)
	s.mu.Unlock()

	if s.publisher == nil {
		return query, nil
	}
	if err := s.publisher.Publish(ctx, s.screen.Key, query); err != nil {
		return query, fmt.Errorf("publish filter query: %w", err)
	}
	return query, nil
}

// Snapshot returns a copy of the state and drains the pending alerts.
func (s *Session) Snapshot() types.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := types.SessionSnapshot{
		ID:             s.id,
		Screen:         s.screen.Name,
		State:          s.state.Clone(),
		FavoritesCount: s.favorites.Count(),
		AgeErrors:      s.state.AgeErrors(),
		Alerts:         s.alerts,
		OpenedAt:       s.openedAt,
		LastUsedAt:     s.lastUsed,
	}
	s.alerts = nil
	return snapshot
}

// State returns a copy of the selection state without draining alerts.
func (s *Session) State() domain.SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Favorites exposes the favorites gate for display and filtering.
func (s *Session) Favorites() *FavoritesGate { return s.favorites }

// LastUsed reports when the session was last mutated.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) refreshSpeciesChildren(ctx context.Context, t cascadeTicket, fb domain.QueryFallbacks) {
	if len(t.parents) == 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.applies(t.generation, s.speciesGen) {
			return
		}
		s.state.Breeds = []domain.Item[domain.Breed]{}
		s.state.AgeRanges = s.rootAgeItems(domain.Fallback{})
		return
	}

	var (
		breeds []domain.Breed
		ages   []domain.AgeRangeBucket
	)
	var g errgroup.Group
	g.Go(func() error {
		breeds = s.resolver.Breeds(ctx, t.parents)
		return nil
	})
	g.Go(func() error {
		ages = s.resolver.AgeRanges(ctx, t.parents)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.applies(t.generation, s.speciesGen) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale species cascade",
			slog.String("session.id", s.id), slog.Uint64("generation", t.generation))
		return
	}
	s.state.Breeds = domain.Reconcile(breeds, s.state.Breeds, fb.Breeds)
	s.state.AgeRanges = validateHydratedAges(domain.Reconcile(ages, s.state.AgeRanges, fb.AgeRanges))
}

func (s *Session) refreshCities(ctx context.Context, t cascadeTicket, fb domain.QueryFallbacks) {
	cities := []domain.City{}
	if len(t.parents) > 0 {
		cities = s.resolver.Cities(ctx, t.parents)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.applies(t.generation, s.statesGen) {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale state cascade",
			slog.String("session.id", s.id), slog.Uint64("generation", t.generation))
		return
	}
	if len(t.parents) == 0 {
		s.state.Cities = []domain.Item[domain.City]{}
		return
	}
	s.state.Cities = domain.Reconcile(cities, s.state.Cities, fb.Cities)
}

// applies reports whether a cascade result should land. Caller holds the lock.
func (s *Session) applies(generation, current uint64) bool {
	return s.ordering == OrderingLastCompletion || generation == current
}

// rootAgeItems is the age-range list shown with no species selected. Caller holds the lock.
func (s *Session) rootAgeItems(fb domain.Fallback) []domain.Item[domain.AgeRangeBucket] {
	if s.screen.AgeRangeFallback == AgeRangesNone {
		return []domain.Item[domain.AgeRangeBucket]{}
	}
	return validateHydratedAges(domain.Reconcile(s.rootAgeRanges, nil, fb))
}

func (s *Session) loadPersisted(ctx context.Context) domain.FilterQuery {
	if s.store == nil {
		return domain.FilterQuery{}
	}
	stored, err := s.store.LoadQuery(ctx, s.screen.Key)
	if err != nil {
		if !errors.Is(err, ports.ErrQueryNotFound) {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to load persisted filter query",
				slog.String("key", s.screen.Key), slog.String("error", err.Error()))
		}
		return domain.FilterQuery{}
	}
	if stored == nil {
		return domain.FilterQuery{}
	}
	return stored.Entity
}

func (s *Session) loadFavorites(ctx context.Context) {
	ids, err := s.favorites.Load(ctx)
	if err != nil {
		s.reportFailure(ctx, "favorites", 0, err)
		return
	}
	s.mu.Lock()
	s.state.FavoritePetIDs = ids
	s.mu.Unlock()
}

func (s *Session) reportFailure(ctx context.Context, source string, parentID int64, err error) {
	logFailure(s.logger)(ctx, source, parentID, err)
	message := fmt.Sprintf("could not load %s", source)
	if parentID != 0 {
		message = fmt.Sprintf("could not load %s for %d", source, parentID)
	}
	s.mu.Lock()
	s.alerts = append(s.alerts, types.Alert{Source: source, Message: message})
	s.mu.Unlock()
	if s.notifier != nil {
		s.notifier.Alert(ctx, ports.Alert{Source: source, Message: message, Err: err})
	}
}

// touch records activity. Caller holds the lock.
func (s *Session) touch() {
	s.lastUsed = s.now()
}

// validateHydratedAges fills the error of items whose specific age came from a fallback.
func validateHydratedAges(items []domain.Item[domain.AgeRangeBucket]) []domain.Item[domain.AgeRangeBucket] {
	for i := range items {
		if items[i].SpecificAge != "" && items[i].AgeError == "" {
			items[i].AgeError = domain.ValidateAge(items[i].SpecificAge, items[i].Value)
		}
	}
	return items
}

func emptyState() domain.SelectionState {
	return domain.SelectionState{
		Species:   []domain.Item[domain.Species]{},
		Breeds:    []domain.Item[domain.Breed]{},
		AgeRanges: []domain.Item[domain.AgeRangeBucket]{},
		States:    []domain.Item[domain.State]{},
		Cities:    []domain.Item[domain.City]{},
	}
}
