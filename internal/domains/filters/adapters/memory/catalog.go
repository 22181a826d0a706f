package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

var _ ports.CatalogClient = (*Catalog)(nil)

// Catalog operation names used by FailOn, Calls and the call hook.
const (
	OpListSpecies            = "ListSpecies"
	OpListBreedsBySpecies    = "ListBreedsBySpecies"
	OpListAgeRangesBySpecies = "ListAgeRangesBySpecies"
	OpListAgeRanges          = "ListAgeRanges"
	OpListStates             = "ListStates"
	OpListCitiesByState      = "ListCitiesByState"
	OpListFavoritesByUser    = "ListFavoritesByUser"
	OpSearchPets             = "SearchPets"
)

// CatalogData is the content served by an in-memory catalog.
type CatalogData struct {
	Species   []domain.Species
	Breeds    []domain.Breed
	AgeRanges []domain.AgeRangeBucket
	States    []domain.State
	Cities    []domain.City
	Favorites map[int64][]int64
	// Pets are matched by case-insensitive name prefix and returned under a "data" envelope.
	Pets []map[string]any
}

// CallHook runs before every catalog call; tests use it to block or reorder calls.
type CallHook func(ctx context.Context, op string, parentID int64)

// Catalog is an in-memory catalog used for local development and tests.
type Catalog struct {
	mu       sync.RWMutex
	data     CatalogData
	failures map[string]error
	calls    map[string]int
	hook     CallHook
}

// NewCatalog serves the provided data.
func NewCatalog(data CatalogData) *Catalog {
	return &Catalog{data: data, failures: map[string]error{}, calls: map[string]int{}}
}

// FailOn makes op fail for parentID (0 for calls without a parent).
func (c *Catalog) FailOn(op string, parentID int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[failureKey(op, parentID)] = err
}

// ClearFailures removes every injected failure.
func (c *Catalog) ClearFailures() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = map[string]error{}
}

// WithHook installs a call hook.
func (c *Catalog) WithHook(hook CallHook) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = hook
	return c
}

// Calls returns how many times op was invoked.
func (c *Catalog) Calls(op string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls[op]
}

func (c *Catalog) ListSpecies(ctx context.Context) ([]domain.Species, error) {
	if err := c.enter(ctx, OpListSpecies, 0); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Species{}, c.data.Species...), nil
}

func (c *Catalog) ListBreedsBySpecies(ctx context.Context, speciesID int64) ([]domain.Breed, error) {
	if err := c.enter(ctx, OpListBreedsBySpecies, speciesID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.Breed
	for _, b := range c.data.Breeds {
		if b.SpeciesID == speciesID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (c *Catalog) ListAgeRangesBySpecies(ctx context.Context, speciesID int64) ([]domain.AgeRangeBucket, error) {
	if err := c.enter(ctx, OpListAgeRangesBySpecies, speciesID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.AgeRangeBucket
	for _, a := range c.data.AgeRanges {
		if a.SpeciesID == speciesID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *Catalog) ListAgeRanges(ctx context.Context) ([]domain.AgeRangeBucket, error) {
	if err := c.enter(ctx, OpListAgeRanges, 0); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.AgeRangeBucket{}, c.data.AgeRanges...), nil
}

func (c *Catalog) ListStates(ctx context.Context) ([]domain.State, error) {
	if err := c.enter(ctx, OpListStates, 0); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.State{}, c.data.States...), nil
}

func (c *Catalog) ListCitiesByState(ctx context.Context, stateID int64) ([]domain.City, error) {
	if err := c.enter(ctx, OpListCitiesByState, stateID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.City
	for _, city := range c.data.Cities {
		if city.StateID == stateID {
			out = append(out, city)
		}
	}
	return out, nil
}

func (c *Catalog) ListFavoritesByUser(ctx context.Context, userID int64) ([]int64, error) {
	if err := c.enter(ctx, OpListFavoritesByUser, userID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int64{}, c.data.Favorites[userID]...), nil
}

func (c *Catalog) SearchPets(ctx context.Context, name string, statusID int64) (any, error) {
	if err := c.enter(ctx, OpSearchPets, 0); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	prefix := strings.ToLower(strings.TrimSpace(name))
	matches := []any{}
	for _, pet := range c.data.Pets {
		petName, _ := pet["name"].(string)
		if !strings.HasPrefix(strings.ToLower(petName), prefix) {
			continue
		}
		if status, ok := pet["statusId"]; ok && fmt.Sprint(status) != fmt.Sprint(statusID) {
			continue
		}
		matches = append(matches, pet)
	}
	return map[string]any{"data": matches}, nil
}

func (c *Catalog) enter(ctx context.Context, op string, parentID int64) error {
	c.mu.Lock()
	c.calls[op]++
	hook := c.hook
	err := c.failures[failureKey(op, parentID)]
	c.mu.Unlock()
	if hook != nil {
		hook(ctx, op, parentID)
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func failureKey(op string, parentID int64) string {
	return fmt.Sprintf("%s/%d", op, parentID)
}
