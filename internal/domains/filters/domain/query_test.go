package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQuery_OmitsEmptyCategories(t *testing.T) {
	state := SelectionState{
		Species: []Item[Species]{{Value: Species{ID: 1}}, {Value: Species{ID: 2}}},
		Breeds:  []Item[Breed]{{Value: Breed{ID: 9, SpeciesID: 1}}},
		States:  []Item[State]{{Value: State{ID: 11}, Selected: true}, {Value: State{ID: 12}}, {Value: State{ID: 13}, Selected: true}},
		Cities:  []Item[City]{{Value: City{ID: 100, StateID: 11}}},
	}

	q := BuildQuery(state)

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(raw, &keys))
	require.Len(t, keys, 1)
	require.Equal(t, []any{float64(11), float64(13)}, keys["stateIds"])
}

func TestBuildQuery_SparseAgeMap(t *testing.T) {
	state := SelectionState{
		AgeRanges: []Item[AgeRangeBucket]{
			{Value: AgeRangeBucket{ID: 1}, Selected: true, SpecificAge: "3"},
			{Value: AgeRangeBucket{ID: 2}, Selected: true},
			{Value: AgeRangeBucket{ID: 3}, Selected: false, SpecificAge: "5"},
		},
	}

	q := BuildQuery(state)

	require.Equal(t, []int64{1, 2}, q.AgeRangeIDs)
	require.Equal(t, map[int64]int{1: 3}, q.AgeRangeAges)
}

func TestBuildQuery_FavoritesOnWithEmptySet(t *testing.T) {
	q := BuildQuery(SelectionState{OnlyFavorites: true})

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	require.JSONEq(t, `{"onlyFavorites":true,"favoritePetIds":[]}`, string(raw))
}

func TestBuildQuery_SearchEmbedsResults(t *testing.T) {
	results := []Pet{{ID: 4, Name: "Rex"}}
	q := BuildQuery(SelectionState{SearchText: "rex", SearchResults: results})

	require.Equal(t, "rex", q.SearchText)
	require.Equal(t, results, q.SearchResults)
	require.False(t, q.OnlyFavorites)
	require.Nil(t, q.FavoritePetIDs)
}

func TestFilterQuery_RoundTripsThroughJSON(t *testing.T) {
	q := FilterQuery{
		SpeciesIDs:     []int64{1},
		BreedIDs:       []int64{4},
		AgeRangeIDs:    []int64{7},
		AgeRangeAges:   map[int64]int{7: 3},
		OnlyFavorites:  true,
		FavoritePetIDs: []int64{20, 21},
	}

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	var decoded FilterQuery
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, q, decoded)
}

func TestFilterQuery_Fallbacks(t *testing.T) {
	q := FilterQuery{SpeciesIDs: []int64{1}, AgeRangeIDs: []int64{7}, AgeRangeAges: map[int64]int{7: 3}}

	fb := q.Fallbacks()

	require.True(t, fb.Species.Selected.Has(1))
	require.False(t, fb.Breeds.Selected.Has(1))
	require.Equal(t, "3", fb.AgeRanges.Ages[7])
}

func TestSelectionState_AgeErrorsOnlySelected(t *testing.T) {
	state := SelectionState{AgeRanges: []Item[AgeRangeBucket]{
		{Value: AgeRangeBucket{ID: 1}, Selected: true, AgeError: "bad"},
		{Value: AgeRangeBucket{ID: 2}, Selected: false, AgeError: "ignored"},
	}}
	require.Equal(t, map[int64]string{1: "bad"}, state.AgeErrors())
	require.Nil(t, SelectionState{}.AgeErrors())
}
