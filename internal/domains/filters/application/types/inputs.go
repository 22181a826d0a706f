package types

// Domain names accepted by ToggleInput.Domain.
const (
	DomainSpecies  = "species"
	DomainBreed    = "breed"
	DomainAgeRange = "ageRange"
	DomainState    = "state"
	DomainCity     = "city"
)

// SessionRef identifies an open filter session.
type SessionRef struct {
	SessionID string
}

// OpenSessionInput mounts a filter screen. UserID overrides the device user when set.
type OpenSessionInput struct {
	Screen string
	UserID *int64
}

// ToggleInput flips one item of a filter domain.
type ToggleInput struct {
	SessionRef
	Domain string
	ID     int64
}

// SpecificAgeInput carries the raw text typed in an age-range bucket.
type SpecificAgeInput struct {
	SessionRef
	AgeRangeID int64
	Text       string
}

// SearchInput runs a free-text pet search. Blank text clears the search.
type SearchInput struct {
	SessionRef
	Text string
}
