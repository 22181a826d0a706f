package projection

import "time"

// Metadata captures persistence timestamps shared by projections.
type Metadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Projection is a stored value plus its persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New wraps entity with its storage timestamps.
func New[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt},
	}
}

// UpdatedBefore reports whether the value was last written before cutoff.
func (m Metadata) UpdatedBefore(cutoff time.Time) bool {
	return m.UpdatedAt.Before(cutoff)
}
