//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-adoption-filters/test/pact"

	"github.com/Apurer/go-adoption-filters/internal/clients/http/catalog"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

func TestAdoptionCatalogContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	species := pacttest.ExampleSpecies()
	breed := pacttest.ExampleBreed()
	age := pacttest.ExampleAgeRange()
	hit := pacttest.ExampleSearchHit()

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request to list species").
		WithRequest("GET", "/species").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":   matchers.Like(species["id"]),
				"name": matchers.Like(species["name"]),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request to list the breeds of a species").
		WithRequest("GET", fmt.Sprintf("/species/%d/breeds", pacttest.DogSpeciesID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":        matchers.Like(breed["id"]),
				"name":      matchers.Like(breed["name"]),
				"speciesId": matchers.Like(breed["speciesId"]),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateCatalogBaseline).
		UponReceiving("a request to list the age ranges of a species").
		WithRequest("GET", fmt.Sprintf("/species/%d/age-ranges", pacttest.DogSpeciesID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":        matchers.Like(age["id"]),
				"name":      matchers.Like(age["name"]),
				"minAge":    matchers.Like(age["minAge"]),
				"maxAge":    matchers.Like(age["maxAge"]),
				"unit":      matchers.Like(age["unit"]),
				"speciesId": matchers.Like(age["speciesId"]),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateUserFavorites).
		UponReceiving("a request to list the favorites of a user").
		WithRequest("GET", fmt.Sprintf("/users/%d/favorites", pacttest.FavoritesUser)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Like(pacttest.FavoritePetID), 1))
		})

	pact.AddInteraction().
		Given(pacttest.StatePetsSearchable).
		UponReceiving("a pet search by name").
		WithRequest("GET", "/pets/search", func(b *pactconsumer.V2RequestBuilder) {
			b.Query("name", matchers.S("rex"))
			b.Query("statusId", matchers.S(fmt.Sprint(pacttest.AvailableID)))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"data": matchers.EachLike(matchers.Map{
					"id":   matchers.Like(hit["id"]),
					"name": matchers.Like(hit["name"]),
				}, 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateStateMissing).
		UponReceiving("a request for the cities of a missing state").
		WithRequest("GET", fmt.Sprintf("/states/%d/cities", pacttest.MissingStateID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client, err := newCatalogClient(config)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		list, err := client.ListSpecies(ctx)
		if err != nil {
			return fmt.Errorf("list species: %w", err)
		}
		if len(list) == 0 || list[0].ID != pacttest.DogSpeciesID {
			return fmt.Errorf("unexpected species %+v", list)
		}

		breeds, err := client.ListBreedsBySpecies(ctx, pacttest.DogSpeciesID)
		if err != nil {
			return fmt.Errorf("list breeds: %w", err)
		}
		if len(breeds) == 0 || breeds[0].SpeciesID != pacttest.DogSpeciesID {
			return fmt.Errorf("unexpected breeds %+v", breeds)
		}

		ages, err := client.ListAgeRangesBySpecies(ctx, pacttest.DogSpeciesID)
		if err != nil {
			return fmt.Errorf("list age ranges: %w", err)
		}
		if len(ages) == 0 || !ages[0].Bounded() {
			return fmt.Errorf("unexpected age ranges %+v", ages)
		}

		favorites, err := client.ListFavoritesByUser(ctx, pacttest.FavoritesUser)
		if err != nil {
			return fmt.Errorf("list favorites: %w", err)
		}
		if len(favorites) == 0 || favorites[0] != pacttest.FavoritePetID {
			return fmt.Errorf("unexpected favorites %v", favorites)
		}

		raw, err := client.SearchPets(ctx, "rex", pacttest.AvailableID)
		if err != nil {
			return fmt.Errorf("search pets: %w", err)
		}
		if pets := domain.NormalizeSearchResponse(raw); len(pets) == 0 || pets[0].ID != pacttest.SearchPetID {
			return fmt.Errorf("unexpected search hits %+v", pets)
		}

		_, err = client.ListCitiesByState(ctx, pacttest.MissingStateID)
		var statusErr *catalog.StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
			return fmt.Errorf("expected 404 for state %d, got %v", pacttest.MissingStateID, err)
		}
		return nil
	})
	require.NoError(t, err)
}

func newCatalogClient(config pactconsumer.MockServerConfig) (*catalog.Client, error) {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	httpClient := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return catalog.NewClient(fmt.Sprintf("http://%s:%d", host, config.Port), catalog.WithHTTPClient(httpClient))
}
