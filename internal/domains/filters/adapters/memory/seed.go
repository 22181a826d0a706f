package memory

import "github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"

// DemoUserID owns the seeded favorites.
const DemoUserID int64 = 1

// SeedData returns a small adoption catalog for local runs.
func SeedData() CatalogData {
	return CatalogData{
		Species: []domain.Species{
			{ID: 1, Name: "Dog"},
			{ID: 2, Name: "Cat"},
		},
		Breeds: []domain.Breed{
			{ID: 1, Name: "Poodle", SpeciesID: 1},
			{ID: 2, Name: "Beagle", SpeciesID: 1},
			{ID: 3, Name: "Mixed breed", SpeciesID: 1},
			{ID: 4, Name: "Siamese", SpeciesID: 2},
			{ID: 5, Name: "Persian", SpeciesID: 2},
		},
		AgeRanges: []domain.AgeRangeBucket{
			{ID: 1, Name: "Puppy", MinAge: 0, MaxAge: domain.IntPtr(1), Unit: "years", SpeciesID: 1},
			{ID: 2, Name: "Adult", MinAge: 1, MaxAge: domain.IntPtr(7), Unit: "years", SpeciesID: 1},
			{ID: 3, Name: "Senior", MinAge: 8, Unit: "years", SpeciesID: 1},
			{ID: 4, Name: "Kitten", MinAge: 0, MaxAge: domain.IntPtr(1), Unit: "years", SpeciesID: 2},
			{ID: 5, Name: "Adult", MinAge: 1, MaxAge: domain.IntPtr(10), Unit: "years", SpeciesID: 2},
			{ID: 6, Name: "Senior", MinAge: 11, Unit: "years", SpeciesID: 2},
		},
		States: []domain.State{
			{ID: 35, Name: "São Paulo"},
			{ID: 33, Name: "Rio de Janeiro"},
		},
		Cities: []domain.City{
			{ID: 3550308, Name: "São Paulo", StateID: 35},
			{ID: 3509502, Name: "Campinas", StateID: 35},
			{ID: 3304557, Name: "Rio de Janeiro", StateID: 33},
			{ID: 3303302, Name: "Niterói", StateID: 33},
		},
		Favorites: map[int64][]int64{DemoUserID: {101, 103}},
		Pets: []map[string]any{
			{"id": 101, "name": "Rex", "speciesId": 1, "statusId": 1},
			{"id": 102, "name": "Mia", "speciesId": 2, "statusId": 1},
			{"id": 103, "name": "Rocky", "speciesId": 1, "statusId": 1},
			{"id": 104, "name": "Luna", "speciesId": 2, "statusId": 2},
		},
	}
}
