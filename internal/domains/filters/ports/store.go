package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/shared/projection"
)

// Screen context keys under which committed queries are persisted.
const (
	KeyPetFilters    = "petFilters"
	KeyMyPetsFilters = "myPetsFilters"
	KeyUserID        = "userId"
)

var (
	// ErrQueryNotFound is returned when nothing is persisted under a key.
	ErrQueryNotFound = errors.New("filter query not found")
	// ErrNoUser is returned when no user id is known for the current device/session.
	ErrNoUser = errors.New("user id not available")
)

// QueryProjection is a persisted query plus storage timestamps.
type QueryProjection = projection.Projection[domain.FilterQuery]

// PreferenceStore persists committed filter queries keyed by screen context.
type PreferenceStore interface {
	SaveQuery(ctx context.Context, key string, query domain.FilterQuery) (*QueryProjection, error)
	LoadQuery(ctx context.Context, key string) (*QueryProjection, error)
	DeleteQuery(ctx context.Context, key string) error
}

// PreferencePurger removes persisted queries that were not written since cutoff.
type PreferencePurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserResolver reads the current user id used to resolve favorites.
type UserResolver interface {
	CurrentUserID(ctx context.Context) (int64, error)
}

// Notifier surfaces one-shot user facing alerts (failed catalog or favorites loads).
type Notifier interface {
	Alert(ctx context.Context, alert Alert)
}

// Alert is a user facing, non fatal condition.
type Alert struct {
	Source  string
	Message string
	Err     error
}

// QueryPublisher hands a committed query to the persistence port.
type QueryPublisher interface {
	Publish(ctx context.Context, key string, query domain.FilterQuery) error
}
