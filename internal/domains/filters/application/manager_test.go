package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	filtermemory "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/memory"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

func newTestManager(opts ...Option) (*Manager, *filtermemory.PreferenceStore) {
	store := filtermemory.NewPreferenceStore()
	catalog := filtermemory.NewCatalog(filtermemory.SeedData())
	return NewManager(catalog, store, append([]Option{WithUserResolver(store)}, opts...)...), store
}

func TestManager_OpenAndToggle(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager()

	opened, err := mgr.Open(ctx, types.OpenSessionInput{Screen: "pet-listing"})
	require.NoError(t, err)
	require.NotEmpty(t, opened.ID)
	require.Equal(t, PetListingScreen.Name, opened.Screen)
	require.Len(t, opened.State.Species, 2)

	ref := types.SessionRef{SessionID: opened.ID}
	snapshot, err := mgr.Toggle(ctx, types.ToggleInput{SessionRef: ref, Domain: types.DomainSpecies, ID: 2})
	require.NoError(t, err)
	require.Len(t, snapshot.State.Breeds, 2)

	_, err = mgr.Toggle(ctx, types.ToggleInput{SessionRef: ref, Domain: types.DomainBreed, ID: 4})
	require.NoError(t, err)

	result, err := mgr.Commit(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, ports.KeyPetFilters, result.Key)
	require.Equal(t, []int64{4}, result.Query.BreedIDs)

	stored, err := store.LoadQuery(ctx, ports.KeyPetFilters)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, stored.Entity.SpeciesIDs)
	require.False(t, stored.Metadata.CreatedAt.IsZero())
}

func TestManager_InvalidInput(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager()

	_, err := mgr.Open(ctx, types.OpenSessionInput{Screen: "adoption-center"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ErrUnknownScreen)

	opened, err := mgr.Open(ctx, types.OpenSessionInput{Screen: ports.KeyMyPetsFilters})
	require.NoError(t, err)
	ref := types.SessionRef{SessionID: opened.ID}

	_, err = mgr.Toggle(ctx, types.ToggleInput{SessionRef: ref, Domain: "color", ID: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = mgr.Toggle(ctx, types.ToggleInput{SessionRef: ref, Domain: types.DomainCity, ID: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ErrUnknownItem)

	_, err = mgr.SetSpecificAge(ctx, types.SpecificAgeInput{SessionRef: ref, AgeRangeID: 2, Text: "3"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestManager_UserOverrideResolvesFavorites(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager()
	user := filtermemory.DemoUserID

	opened, err := mgr.Open(ctx, types.OpenSessionInput{Screen: "pet-listing", UserID: &user})
	require.NoError(t, err)

	snapshot, err := mgr.ToggleOnlyFavorites(ctx, types.SessionRef{SessionID: opened.ID})
	require.NoError(t, err)
	require.True(t, snapshot.State.OnlyFavorites)
	require.Equal(t, 2, snapshot.FavoritesCount)
	require.Empty(t, snapshot.Alerts)
}

func TestManager_SearchClearAndClose(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager()

	opened, err := mgr.Open(ctx, types.OpenSessionInput{Screen: "pet-listing"})
	require.NoError(t, err)
	ref := types.SessionRef{SessionID: opened.ID}

	snapshot, err := mgr.Search(ctx, types.SearchInput{SessionRef: ref, Text: "mi"})
	require.NoError(t, err)
	require.Equal(t, []int64{102}, domain.PetIDs(snapshot.State.SearchResults))

	_, err = mgr.Commit(ctx, ref)
	require.NoError(t, err)
	_, ok := store.Raw(ports.KeyPetFilters)
	require.True(t, ok)

	snapshot, err = mgr.Clear(ctx, ref)
	require.NoError(t, err)
	require.Empty(t, snapshot.State.SearchText)
	_, ok = store.Raw(ports.KeyPetFilters)
	require.False(t, ok)

	require.NoError(t, mgr.Close(ctx, ref))
	_, err = mgr.Get(ctx, ref)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, mgr.Close(ctx, ref), ErrSessionNotFound)
}

func TestManager_SweepIdle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	mgr, _ := newTestManager(WithClock(clock), WithIdleTimeout(10*time.Minute))

	stale, err := mgr.Open(ctx, types.OpenSessionInput{Screen: "pet-listing"})
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	fresh, err := mgr.Open(ctx, types.OpenSessionInput{Screen: "my-pets"})
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	require.Equal(t, 1, mgr.SweepIdle())
	require.Equal(t, 1, mgr.Len())

	_, err = mgr.Get(ctx, types.SessionRef{SessionID: stale.ID})
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = mgr.Get(ctx, types.SessionRef{SessionID: fresh.ID})
	require.NoError(t, err)
}

func TestManager_RunSweeperStopsWithContext(t *testing.T) {
	mgr, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestParseToggle(t *testing.T) {
	cases := map[string]Toggle{
		types.DomainSpecies:  ToggleSpecies{ID: 7},
		types.DomainBreed:    ToggleBreed{ID: 7},
		types.DomainAgeRange: ToggleAgeRange{ID: 7},
		types.DomainState:    ToggleState{ID: 7},
		types.DomainCity:     ToggleCity{ID: 7},
	}
	for name, want := range cases {
		got, err := ParseToggle(name, 7)
		require.NoError(t, err, name)
		require.Equal(t, want, got)
	}
	_, err := ParseToggle("Species", 7)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseOrdering(t *testing.T) {
	o, err := ParseOrdering("")
	require.NoError(t, err)
	require.Equal(t, OrderingLatestTrigger, o)

	o, err = ParseOrdering(" Last-Completion ")
	require.NoError(t, err)
	require.Equal(t, OrderingLastCompletion, o)
	require.Equal(t, "last-completion", o.String())

	_, err = ParseOrdering("fifo")
	require.ErrorIs(t, err, ErrInvalidInput)
}
