//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "adoption-catalog-api"
	ConsumerName = "adoption-filters"

	StateCatalogBaseline = "catalog baseline with dogs and cats"
	StateUserFavorites   = "user 7 has favorite pets"
	StatePetsSearchable  = "available pets named rex exist"
	StateStateMissing    = "no state with id 99"
)

const (
	DogSpeciesID   int64 = 1
	PoodleBreedID  int64 = 10
	AdultAgeID     int64 = 2
	FavoritesUser  int64 = 7
	FavoritePetID  int64 = 101
	SearchPetID    int64 = 202
	MissingStateID int64 = 99
	AvailableID    int64 = 1
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the filters consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleSpecies provides stable species data for pact interactions.
func ExampleSpecies() map[string]any {
	return map[string]any{"id": DogSpeciesID, "name": "Dog"}
}

// ExampleBreed provides a breed of the example species.
func ExampleBreed() map[string]any {
	return map[string]any{"id": PoodleBreedID, "name": "Poodle", "speciesId": DogSpeciesID}
}

// ExampleAgeRange provides a closed age-range bucket of the example species.
func ExampleAgeRange() map[string]any {
	return map[string]any{
		"id":        AdultAgeID,
		"name":      "Adult",
		"minAge":    1,
		"maxAge":    7,
		"unit":      "years",
		"speciesId": DogSpeciesID,
	}
}

// ExampleSearchHit provides a pet returned by name search.
func ExampleSearchHit() map[string]any {
	return map[string]any{"id": SearchPetID, "name": "Rex", "statusId": AvailableID}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
