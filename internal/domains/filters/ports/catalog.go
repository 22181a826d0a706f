package ports

import (
	"context"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
)

// CatalogClient is the read-only remote catalog consumed by filter screens (outbound port).
type CatalogClient interface {
	ListSpecies(ctx context.Context) ([]domain.Species, error)
	ListBreedsBySpecies(ctx context.Context, speciesID int64) ([]domain.Breed, error)
	ListAgeRangesBySpecies(ctx context.Context, speciesID int64) ([]domain.AgeRangeBucket, error)
	// ListAgeRanges returns the age-range catalog across every species.
	ListAgeRanges(ctx context.Context) ([]domain.AgeRangeBucket, error)
	ListStates(ctx context.Context) ([]domain.State, error)
	ListCitiesByState(ctx context.Context, stateID int64) ([]domain.City, error)
	// ListFavoritesByUser returns the favorite pet ids of a user.
	ListFavoritesByUser(ctx context.Context, userID int64) ([]int64, error)
	// SearchPets returns the decoded response body as-is; callers normalize its shape.
	SearchPets(ctx context.Context, name string, statusID int64) (any, error)
}
