package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
)

type requestLog struct {
	mu   sync.Mutex
	urls []*url.URL
}

func (l *requestLog) add(u *url.URL) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, u)
}

func (l *requestLog) all() []*url.URL {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*url.URL{}, l.urls...)
}

func newTestServer(t *testing.T, routes map[string]string) (*Client, *requestLog) {
	t.Helper()
	seen := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r.URL)
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/api", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client, seen
}

func TestClient_ListsDecodeArraysAndEnvelopes(t *testing.T) {
	client, _ := newTestServer(t, map[string]string{
		"/api/species":              `[{"id":1,"name":"Dog"},{"id":2,"name":"Cat"}]`,
		"/api/species/1/breeds":     `{"data":[{"id":10,"name":"Poodle","speciesId":1}]}`,
		"/api/species/1/age-ranges": `[{"id":2,"name":"Adult","minAge":1,"maxAge":7,"unit":"years","speciesId":1},{"id":3,"name":"Senior","minAge":8,"maxAge":null,"unit":"years","speciesId":1}]`,
		"/api/states/35/cities":     `{"data":null}`,
	})
	ctx := context.Background()

	species, err := client.ListSpecies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Species{{ID: 1, Name: "Dog"}, {ID: 2, Name: "Cat"}}, species)

	breeds, err := client.ListBreedsBySpecies(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.Breed{{ID: 10, Name: "Poodle", SpeciesID: 1}}, breeds)

	ages, err := client.ListAgeRangesBySpecies(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ages, 2)
	assert.True(t, ages[0].Bounded())
	assert.Equal(t, 7, *ages[0].MaxAge)
	assert.Nil(t, ages[1].MaxAge)

	cities, err := client.ListCitiesByState(ctx, 35)
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestClient_FavoritesAcceptIDsAndObjects(t *testing.T) {
	client, _ := newTestServer(t, map[string]string{
		"/api/users/7/favorites": `[101, {"petId":102}, {"id":103}, {"name":"no id"}]`,
	})

	ids, err := client.ListFavoritesByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102, 103}, ids)
}

func TestClient_SearchPetsPassesQueryAndRawBody(t *testing.T) {
	client, seen := newTestServer(t, map[string]string{
		"/api/pets/search": `{"results":{"pets":[{"id":"5","name":"Rex"}]}}`,
	})

	raw, err := client.SearchPets(context.Background(), "rex jr", 1)
	require.NoError(t, err)
	urls := seen.all()
	require.Len(t, urls, 1)
	assert.Equal(t, "rex jr", urls[0].Query().Get("name"))
	assert.Equal(t, "1", urls[0].Query().Get("statusId"))

	pets := domain.NormalizeSearchResponse(raw)
	require.Len(t, pets, 1)
	assert.Equal(t, int64(5), pets[0].ID)
	assert.Equal(t, "Rex", pets[0].Name)
}

func TestClient_StatusError(t *testing.T) {
	client, _ := newTestServer(t, map[string]string{})

	_, err := client.ListStates(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, statusErr.Body, "not found")
}

func TestClient_RequestEditorAndAcceptHeader(t *testing.T) {
	headers := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		_ = json.NewEncoder(w).Encode([]domain.State{{ID: 35, Name: "São Paulo"}})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithRequestEditorFn(func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer token")
		return nil
	}))
	require.NoError(t, err)

	states, err := client.ListStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.State{{ID: 35, Name: "São Paulo"}}, states)
	header := <-headers
	assert.Equal(t, "Bearer token", header.Get("Authorization"))
	assert.Equal(t, "application/json", header.Get("Accept"))
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
}
