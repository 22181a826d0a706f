package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

var _ ports.CatalogClient = (*Client)(nil)

// DefaultTimeout bounds every catalog call when no HTTP client is supplied.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 512

// HttpRequestDoer performs HTTP requests.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn can mutate an outgoing request, e.g. to add auth headers.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// ClientOption configures the catalog client.
type ClientOption func(*Client) error

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.doer = doer
		return nil
	}
}

// WithRequestEditorFn appends a request editor applied to every request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.editors = append(c.editors, fn)
		return nil
	}
}

// StatusError is returned for non-2xx catalog responses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog API error: %s", e.Status)
	}
	return fmt.Sprintf("catalog API error: %s: %s", e.Status, e.Body)
}

// Client reads the adoption catalog over REST.
type Client struct {
	server  *url.URL
	doer    HttpRequestDoer
	editors []RequestEditorFn
}

// NewClient builds a catalog client for baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	server, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base URL: %w", err)
	}
	c := &Client{server: server}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: DefaultTimeout}
	}
	return c, nil
}

func (c *Client) ListSpecies(ctx context.Context) ([]domain.Species, error) {
	var out []domain.Species
	if err := c.getList(ctx, "species", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListBreedsBySpecies(ctx context.Context, speciesID int64) ([]domain.Breed, error) {
	path, err := childPath("species", speciesID, "breeds")
	if err != nil {
		return nil, err
	}
	var out []domain.Breed
	if err := c.getList(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAgeRangesBySpecies(ctx context.Context, speciesID int64) ([]domain.AgeRangeBucket, error) {
	path, err := childPath("species", speciesID, "age-ranges")
	if err != nil {
		return nil, err
	}
	var out []domain.AgeRangeBucket
	if err := c.getList(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAgeRanges(ctx context.Context) ([]domain.AgeRangeBucket, error) {
	var out []domain.AgeRangeBucket
	if err := c.getList(ctx, "age-ranges", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListStates(ctx context.Context) ([]domain.State, error) {
	var out []domain.State
	if err := c.getList(ctx, "states", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCitiesByState(ctx context.Context, stateID int64) ([]domain.City, error) {
	path, err := childPath("states", stateID, "cities")
	if err != nil {
		return nil, err
	}
	var out []domain.City
	if err := c.getList(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFavoritesByUser accepts a list of ids or a list of favorite objects carrying petId or id.
func (c *Client) ListFavoritesByUser(ctx context.Context, userID int64) ([]int64, error) {
	path, err := childPath("users", userID, "favorites")
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := c.getList(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, elem := range raw {
		if id, ok := favoriteID(elem); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SearchPets returns the decoded body untouched; its shape varies and is normalized by the caller.
func (c *Client) SearchPets(ctx context.Context, name string, statusID int64) (any, error) {
	query := url.Values{}
	for param, value := range map[string]any{"name": name, "statusId": statusID} {
		styled, err := runtime.StyleParamWithLocation("form", true, param, runtime.ParamLocationQuery, value)
		if err != nil {
			return nil, err
		}
		parsed, err := url.ParseQuery(styled)
		if err != nil {
			return nil, err
		}
		for k, v := range parsed {
			query[k] = append(query[k], v...)
		}
	}
	body, err := c.get(ctx, "pets/search", query)
	if err != nil {
		return nil, err
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode pet search response: %w", err)
	}
	return raw, nil
}

// getList decodes a JSON array, also accepting the array wrapped in a {"data": [...]} envelope.
func (c *Client) getList(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		trimmed = envelope.Data
	}
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c == nil || c.server == nil {
		return nil, errors.New("catalog client not configured")
	}
	target, err := c.server.Parse(path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for _, edit := range c.editors {
		if err := edit(ctx, req); err != nil {
			return nil, err
		}
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call catalog API: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: msg}
	}
	return body, nil
}

func childPath(collection string, id int64, child string) (string, error) {
	styled, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", collection, styled, child), nil
}

func favoriteID(elem json.RawMessage) (int64, bool) {
	var id int64
	if err := json.Unmarshal(elem, &id); err == nil {
		return id, true
	}
	var obj struct {
		PetID *int64 `json:"petId"`
		ID    *int64 `json:"id"`
	}
	if err := json.Unmarshal(elem, &obj); err != nil {
		return 0, false
	}
	switch {
	case obj.PetID != nil:
		return *obj.PetID, true
	case obj.ID != nil:
		return *obj.ID, true
	default:
		return 0, false
	}
}
