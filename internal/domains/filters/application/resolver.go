package application

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

// FailureReporter receives catalog fetch failures that were absorbed by the resolver.
type FailureReporter func(ctx context.Context, source string, parentID int64, err error)

// Resolver fetches child catalogs scoped to a set of selected parents. Each parent is fetched
// concurrently; a failing parent is reported and dropped so the merged list degrades instead
// of failing.
type Resolver struct {
	catalog ports.CatalogClient
	report  FailureReporter
}

// NewResolver wires the resolver with its catalog. A nil reporter discards failures.
func NewResolver(catalog ports.CatalogClient, report FailureReporter) *Resolver {
	if report == nil {
		report = func(context.Context, string, int64, error) {}
	}
	return &Resolver{catalog: catalog, report: report}
}

// Breeds returns the deduplicated breeds of the given species.
func (r *Resolver) Breeds(ctx context.Context, speciesIDs []int64) []domain.Breed {
	parents := domain.NewIDSet(speciesIDs...)
	return fanOut(ctx, r, "breeds", speciesIDs, r.catalog.ListBreedsBySpecies, func(b domain.Breed) bool {
		return parents.Has(b.SpeciesID)
	})
}

// AgeRanges returns the deduplicated age-range buckets of the given species.
func (r *Resolver) AgeRanges(ctx context.Context, speciesIDs []int64) []domain.AgeRangeBucket {
	parents := domain.NewIDSet(speciesIDs...)
	return fanOut(ctx, r, "ageRanges", speciesIDs, r.catalog.ListAgeRangesBySpecies, func(a domain.AgeRangeBucket) bool {
		return parents.Has(a.SpeciesID)
	})
}

// Cities returns the deduplicated cities of the given states.
func (r *Resolver) Cities(ctx context.Context, stateIDs []int64) []domain.City {
	parents := domain.NewIDSet(stateIDs...)
	return fanOut(ctx, r, "cities", stateIDs, r.catalog.ListCitiesByState, func(c domain.City) bool {
		return parents.Has(c.StateID)
	})
}

// fanOut issues one fetch per parent, joins them and concatenates in parent order.
func fanOut[T domain.Entity](
	ctx context.Context,
	r *Resolver,
	source string,
	parents []int64,
	fetch func(context.Context, int64) ([]T, error),
	keep func(T) bool,
) []T {
	if len(parents) == 0 {
		return []T{}
	}
	results := make([][]T, len(parents))
	var g errgroup.Group
	for i, parentID := range parents {
		g.Go(func() error {
			items, err := fetch(ctx, parentID)
			if err != nil {
				r.report(ctx, source, parentID, err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var merged []T
	for _, part := range results {
		for _, item := range part {
			if keep(item) {
				merged = append(merged, item)
			}
		}
	}
	return domain.Dedupe(merged)
}

func logFailure(logger *slog.Logger) FailureReporter {
	return func(ctx context.Context, source string, parentID int64, err error) {
		if logger == nil {
			return
		}
		attrs := []slog.Attr{slog.String("source", source)}
		if parentID != 0 {
			attrs = append(attrs, slog.Int64("parent.id", parentID))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		logger.LogAttrs(ctx, slog.LevelWarn, "catalog fetch failed, list degraded", attrs...)
	}
}
