package domain

import (
	"encoding/json"
	"strconv"
)

// SelectionState is the full filter screen aggregate: one list per domain plus the favorites and
// search toggles.
type SelectionState struct {
	Species        []Item[Species]        `json:"species"`
	Breeds         []Item[Breed]          `json:"breeds"`
	AgeRanges      []Item[AgeRangeBucket] `json:"ageRanges"`
	States         []Item[State]          `json:"states"`
	Cities         []Item[City]           `json:"cities"`
	OnlyFavorites  bool                   `json:"onlyFavorites"`
	FavoritePetIDs []int64                `json:"favoritePetIds,omitempty"`
	SearchText     string                 `json:"searchText,omitempty"`
	SearchResults  []Pet                  `json:"searchResults,omitempty"`
}

// Clone returns a deep enough copy for read-only consumers.
func (s SelectionState) Clone() SelectionState {
	out := s
	out.Species = CloneItems(s.Species)
	out.Breeds = CloneItems(s.Breeds)
	out.AgeRanges = CloneItems(s.AgeRanges)
	out.States = CloneItems(s.States)
	out.Cities = CloneItems(s.Cities)
	if s.FavoritePetIDs != nil {
		out.FavoritePetIDs = append([]int64{}, s.FavoritePetIDs...)
	}
	if s.SearchResults != nil {
		out.SearchResults = append([]Pet{}, s.SearchResults...)
	}
	return out
}

// AgeErrors lists the validation messages of selected buckets keyed by bucket id.
func (s SelectionState) AgeErrors() map[int64]string {
	var errs map[int64]string
	for _, item := range s.AgeRanges {
		if !item.Selected || item.AgeError == "" {
			continue
		}
		if errs == nil {
			errs = map[int64]string{}
		}
		errs[item.ID()] = item.AgeError
	}
	return errs
}

// FilterQuery is the minimal persisted representation of the active filters.
// A category is absent when nothing in it is selected.
type FilterQuery struct {
	SpeciesIDs     []int64       `json:"speciesIds,omitempty"`
	BreedIDs       []int64       `json:"breedIds,omitempty"`
	AgeRangeIDs    []int64       `json:"ageRangeIds,omitempty"`
	StateIDs       []int64       `json:"stateIds,omitempty"`
	CityIDs        []int64       `json:"cityIds,omitempty"`
	AgeRangeAges   map[int64]int `json:"ageRangeAges,omitempty"`
	OnlyFavorites  bool          `json:"onlyFavorites,omitempty"`
	FavoritePetIDs []int64       `json:"favoritePetIds,omitempty"`
	SearchText     string        `json:"searchText,omitempty"`
	SearchResults  []Pet         `json:"searchResults,omitempty"`
}

// MarshalJSON keeps favoritePetIds present, even when empty, while onlyFavorites is on.
func (q FilterQuery) MarshalJSON() ([]byte, error) {
	type plain FilterQuery
	if !q.OnlyFavorites {
		return json.Marshal(plain(q))
	}
	ids := q.FavoritePetIDs
	if ids == nil {
		ids = []int64{}
	}
	return json.Marshal(struct {
		plain
		FavoritePetIDs []int64 `json:"favoritePetIds"`
	}{plain: plain(q), FavoritePetIDs: ids})
}

// IsEmpty reports whether no filter is active.
func (q FilterQuery) IsEmpty() bool {
	return len(q.SpeciesIDs) == 0 && len(q.BreedIDs) == 0 && len(q.AgeRangeIDs) == 0 &&
		len(q.StateIDs) == 0 && len(q.CityIDs) == 0 && len(q.AgeRangeAges) == 0 &&
		!q.OnlyFavorites && q.SearchText == ""
}

// BuildQuery reduces the selection state to its persisted form.
func BuildQuery(state SelectionState) FilterQuery {
	q := FilterQuery{
		SpeciesIDs:  SelectedIDs(state.Species),
		BreedIDs:    SelectedIDs(state.Breeds),
		AgeRangeIDs: SelectedIDs(state.AgeRanges),
		StateIDs:    SelectedIDs(state.States),
		CityIDs:     SelectedIDs(state.Cities),
	}
	for _, item := range state.AgeRanges {
		if !item.Selected {
			continue
		}
		age, ok := parseAge(item.SpecificAge)
		if !ok {
			continue
		}
		if q.AgeRangeAges == nil {
			q.AgeRangeAges = map[int64]int{}
		}
		q.AgeRangeAges[item.ID()] = age
	}
	if state.OnlyFavorites {
		q.OnlyFavorites = true
		q.FavoritePetIDs = append([]int64{}, state.FavoritePetIDs...)
	}
	if state.SearchText != "" {
		q.SearchText = state.SearchText
		q.SearchResults = append([]Pet{}, state.SearchResults...)
	}
	return q
}

// Fallbacks extracts the hydration fallbacks for every domain from a persisted query.
func (q FilterQuery) Fallbacks() QueryFallbacks {
	ages := make(map[int64]string, len(q.AgeRangeAges))
	for id, age := range q.AgeRangeAges {
		ages[id] = strconv.Itoa(age)
	}
	return QueryFallbacks{
		Species:   Fallback{Selected: NewIDSet(q.SpeciesIDs...)},
		Breeds:    Fallback{Selected: NewIDSet(q.BreedIDs...)},
		AgeRanges: Fallback{Selected: NewIDSet(q.AgeRangeIDs...), Ages: ages},
		States:    Fallback{Selected: NewIDSet(q.StateIDs...)},
		Cities:    Fallback{Selected: NewIDSet(q.CityIDs...)},
	}
}

// QueryFallbacks groups per-domain hydration fallbacks.
type QueryFallbacks struct {
	Species   Fallback
	Breeds    Fallback
	AgeRanges Fallback
	States    Fallback
	Cities    Fallback
}
