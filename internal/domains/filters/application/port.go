package application

import (
	"context"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/application/types"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

// Port defines the filter session use cases exposed to adapters.
type Port interface {
	Open(ctx context.Context, input types.OpenSessionInput) (*types.SessionSnapshot, error)
	Get(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error)
	Toggle(ctx context.Context, input types.ToggleInput) (*types.SessionSnapshot, error)
	SetSpecificAge(ctx context.Context, input types.SpecificAgeInput) (*types.SessionSnapshot, error)
	ToggleOnlyFavorites(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error)
	Search(ctx context.Context, input types.SearchInput) (*types.SessionSnapshot, error)
	Clear(ctx context.Context, ref types.SessionRef) (*types.SessionSnapshot, error)
	Commit(ctx context.Context, ref types.SessionRef) (*types.CommitResult, error)
	Close(ctx context.Context, ref types.SessionRef) error
}

// storePublisher writes the query synchronously through the preference store.
type storePublisher struct {
	store ports.PreferenceStore
}

func (p storePublisher) Publish(ctx context.Context, key string, query domain.FilterQuery) error {
	_, err := p.store.SaveQuery(ctx, key, query)
	return err
}
