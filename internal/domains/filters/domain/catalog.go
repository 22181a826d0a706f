package domain

// Entity is implemented by every catalog record that can be selected in a filter screen.
type Entity interface {
	EntityID() int64
}

// Species is a top level catalog entry (dog, cat, ...).
type Species struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Breed belongs to exactly one species.
type Breed struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SpeciesID int64  `json:"speciesId"`
}

// AgeRangeBucket is a named age bracket scoped to a species. A nil MaxAge means "or more".
type AgeRangeBucket struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	MinAge    int    `json:"minAge"`
	MaxAge    *int   `json:"maxAge"`
	Unit      string `json:"unit,omitempty"`
	SpeciesID int64  `json:"speciesId"`
}

// State is a federative unit used to scope cities.
type State struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// City belongs to exactly one state.
type City struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	StateID int64  `json:"stateId"`
}

func (s Species) EntityID() int64        { return s.ID }
func (b Breed) EntityID() int64          { return b.ID }
func (a AgeRangeBucket) EntityID() int64 { return a.ID }
func (s State) EntityID() int64          { return s.ID }
func (c City) EntityID() int64           { return c.ID }

// Bounded reports whether the bucket has an upper limit.
func (a AgeRangeBucket) Bounded() bool {
	return a.MaxAge != nil
}

// IntPtr is a small helper for building bounded buckets.
func IntPtr(v int) *int {
	return &v
}
