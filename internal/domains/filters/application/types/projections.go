package types

import (
	"time"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
)

// Alert is a one-shot message surfaced to the user.
type Alert struct {
	Source  string
	Message string
}

// SessionSnapshot is a read-only view of a filter session.
type SessionSnapshot struct {
	ID             string
	Screen         string
	State          domain.SelectionState
	FavoritesCount int
	AgeErrors      map[int64]string
	Alerts         []Alert
	OpenedAt       time.Time
	LastUsedAt     time.Time
}

// CommitResult is the query handed to the listing screen.
type CommitResult struct {
	SessionID string
	Key       string
	Query     domain.FilterQuery
}
