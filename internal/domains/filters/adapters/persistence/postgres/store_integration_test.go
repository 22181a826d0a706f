//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	"github.com/Apurer/go-adoption-filters/internal/platform/migrations"
)

func setupFiltersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("filters_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestPreferenceStore_SaveLoadDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupFiltersPostgresContainer(t)
	defer cleanup()

	store := NewPreferenceStore(db)
	ctx := context.Background()

	query := domain.FilterQuery{
		SpeciesIDs:    []int64{1},
		BreedIDs:      []int64{1, 2},
		AgeRangeIDs:   []int64{2},
		AgeRangeAges:  map[int64]int{2: 3},
		OnlyFavorites: true,
		SearchText:    "rex",
		SearchResults: []domain.Pet{{ID: 101, Name: "Rex", Attributes: map[string]any{"id": 101, "name": "Rex"}}},
	}
	saved, err := store.SaveQuery(ctx, ports.KeyPetFilters, query)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, saved.Entity.BreedIDs)
	assert.Equal(t, map[int64]int{2: 3}, saved.Entity.AgeRangeAges)
	assert.Equal(t, []int64{}, saved.Entity.FavoritePetIDs)
	require.Len(t, saved.Entity.SearchResults, 1)
	assert.Equal(t, int64(101), saved.Entity.SearchResults[0].ID)
	assert.Nil(t, saved.Entity.StateIDs)

	updated, err := store.SaveQuery(ctx, ports.KeyPetFilters, domain.FilterQuery{StateIDs: []int64{35}})
	require.NoError(t, err)
	assert.Equal(t, []int64{35}, updated.Entity.StateIDs)
	assert.Nil(t, updated.Entity.SpeciesIDs)
	assert.Equal(t, saved.Metadata.CreatedAt, updated.Metadata.CreatedAt)

	require.NoError(t, store.DeleteQuery(ctx, ports.KeyPetFilters))
	_, err = store.LoadQuery(ctx, ports.KeyPetFilters)
	require.ErrorIs(t, err, ports.ErrQueryNotFound)
	require.ErrorIs(t, store.DeleteQuery(ctx, ports.KeyPetFilters), ports.ErrQueryNotFound)

	_, err = store.SaveQuery(ctx, ports.KeyPetFilters, domain.FilterQuery{CityIDs: []int64{3550308}})
	require.NoError(t, err)
	loaded, err := store.LoadQuery(ctx, ports.KeyPetFilters)
	require.NoError(t, err)
	assert.Equal(t, []int64{3550308}, loaded.Entity.CityIDs)
}

func TestPreferenceStore_PurgeOlderThan(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupFiltersPostgresContainer(t)
	defer cleanup()

	store := NewPreferenceStore(db)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)
	store.WithClock(func() time.Time { return old })
	_, err := store.SaveQuery(ctx, ports.KeyMyPetsFilters, domain.FilterQuery{SpeciesIDs: []int64{2}})
	require.NoError(t, err)

	store.WithClock(time.Now)
	_, err = store.SaveQuery(ctx, ports.KeyPetFilters, domain.FilterQuery{SpeciesIDs: []int64{1}})
	require.NoError(t, err)

	purged, err := store.PurgeOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.LoadQuery(ctx, ports.KeyMyPetsFilters)
	require.ErrorIs(t, err, ports.ErrQueryNotFound)
	_, err = store.LoadQuery(ctx, ports.KeyPetFilters)
	require.NoError(t, err)
}

func TestPreferenceStore_UserID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupFiltersPostgresContainer(t)
	defer cleanup()

	store := NewPreferenceStore(db)
	ctx := context.Background()

	_, err := store.CurrentUserID(ctx)
	require.ErrorIs(t, err, ports.ErrNoUser)

	require.NoError(t, store.SetUserID(ctx, 42))
	require.NoError(t, store.SetUserID(ctx, 43))
	id, err := store.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(43), id)
}
