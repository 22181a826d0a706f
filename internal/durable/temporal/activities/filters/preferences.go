package filters

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

// PersistQueryActivityName writes a committed filter query to the preference store.
const PersistQueryActivityName = "filters.activities.PersistQuery"

// PersistQueryInput is a committed query and the screen key it is stored under.
type PersistQueryInput struct {
	Key   string
	Query domain.FilterQuery
}

// Activities groups activities that operate on filter preferences.
type Activities struct {
	store ports.PreferenceStore
}

// NewActivities wires the preference store into the Temporal activities bundle.
func NewActivities(store ports.PreferenceStore) *Activities {
	return &Activities{store: store}
}

// PersistQuery upserts the query under its screen key.
func (a *Activities) PersistQuery(ctx context.Context, input PersistQueryInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.store == nil {
		logger.Error("persist query activity not initialized", "key", input.Key)
		return errors.New("persist query activity not initialized")
	}
	logger.Info("PersistQuery activity started", "key", input.Key)
	saved, err := a.store.SaveQuery(ctx, input.Key, input.Query)
	if err != nil {
		logger.Error("PersistQuery activity failed", "key", input.Key, "error", err)
		return err
	}
	logger.Info("PersistQuery activity completed", "key", input.Key, "updatedAt", saved.Metadata.UpdatedAt)
	return nil
}
