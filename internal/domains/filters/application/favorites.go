package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

// FavoritesSource lists the favorite pet ids of a user.
type FavoritesSource interface {
	ListFavoritesByUser(ctx context.Context, userID int64) ([]int64, error)
}

// FavoritesGate lazily resolves the current user's favorite pets once and caches them for the
// lifetime of the session. Concurrent loads share one fetch.
type FavoritesGate struct {
	source FavoritesSource
	users  ports.UserResolver

	group singleflight.Group

	mu     sync.RWMutex
	ids    []int64
	index  map[int64]struct{}
	loaded bool
}

// NewFavoritesGate wires the gate with its collaborators.
func NewFavoritesGate(source FavoritesSource, users ports.UserResolver) *FavoritesGate {
	return &FavoritesGate{source: source, users: users}
}

// Load returns the cached favorites, fetching them on first use. A failed load leaves the cache
// empty so a later call fetches again.
func (g *FavoritesGate) Load(ctx context.Context) ([]int64, error) {
	if ids, ok := g.cached(); ok {
		return ids, nil
	}
	v, err, _ := g.group.Do("favorites", func() (any, error) {
		if ids, ok := g.cached(); ok {
			return ids, nil
		}
		if g.source == nil || g.users == nil {
			return nil, errors.New("favorites gate not configured")
		}
		userID, err := g.users.CurrentUserID(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve user: %w", err)
		}
		ids, err := g.source.ListFavoritesByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list favorites: %w", err)
		}
		g.store(ids)
		return g.IDs(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]int64), nil
}

// Loaded reports whether the favorites were resolved.
func (g *FavoritesGate) Loaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// IDs returns a copy of the cached favorites, empty when not loaded.
func (g *FavoritesGate) IDs() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]int64{}, g.ids...)
}

// Count is the number of cached favorites.
func (g *FavoritesGate) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.ids)
}

// Contains reports whether a pet is a cached favorite.
func (g *FavoritesGate) Contains(petID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[petID]
	return ok
}

func (g *FavoritesGate) cached() ([]int64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.loaded {
		return nil, false
	}
	return append([]int64{}, g.ids...), true
}

func (g *FavoritesGate) store(ids []int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids = make([]int64, 0, len(ids))
	g.index = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := g.index[id]; dup {
			continue
		}
		g.index[id] = struct{}{}
		g.ids = append(g.ids, id)
	}
	g.loaded = true
}

// staticUser resolves a fixed user id supplied by the caller.
type staticUser int64

func (u staticUser) CurrentUserID(context.Context) (int64, error) {
	return int64(u), nil
}
