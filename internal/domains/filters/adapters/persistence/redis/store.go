package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	"github.com/Apurer/go-adoption-filters/internal/shared/projection"
)

var (
	_ ports.PreferenceStore = (*PreferenceStore)(nil)
	_ ports.UserResolver    = (*PreferenceStore)(nil)
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "adoption:filters:"

// PreferenceStore keeps committed queries in Redis as JSON documents.
type PreferenceStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*PreferenceStore)

// WithPrefix overrides the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *PreferenceStore) {
		s.prefix = prefix
	}
}

// WithTTL expires stored queries after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *PreferenceStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *PreferenceStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPreferenceStore wires a Redis-backed preference store. Caller owns the client lifecycle.
func NewPreferenceStore(client goredis.UniversalClient, opts ...Option) *PreferenceStore {
	s := &PreferenceStore{client: client, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type document struct {
	Query     domain.FilterQuery `json:"query"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// SaveQuery stores the query under key, keeping the original creation time.
func (s *PreferenceStore) SaveQuery(ctx context.Context, key string, query domain.FilterQuery) (*ports.QueryProjection, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	doc := document{Query: query, CreatedAt: now, UpdatedAt: now}
	if existing, err := s.read(ctx, key); err == nil {
		doc.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, ports.ErrQueryNotFound) {
		return nil, err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode filter query: %w", err)
	}
	if err := s.client.Set(ctx, s.fullKey(key), payload, s.ttl).Err(); err != nil {
		return nil, err
	}
	return s.LoadQuery(ctx, key)
}

// LoadQuery returns the query stored under key.
func (s *PreferenceStore) LoadQuery(ctx context.Context, key string) (*ports.QueryProjection, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	doc, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}
	return projection.New(doc.Query, doc.CreatedAt, doc.UpdatedAt), nil
}

// DeleteQuery removes the query stored under key.
func (s *PreferenceStore) DeleteQuery(ctx context.Context, key string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.fullKey(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrQueryNotFound
	}
	return nil
}

// SetUserID records the device user id.
func (s *PreferenceStore) SetUserID(ctx context.Context, id int64) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	return s.client.Set(ctx, s.fullKey(ports.KeyUserID), strconv.FormatInt(id, 10), 0).Err()
}

// CurrentUserID reads the device user id.
func (s *PreferenceStore) CurrentUserID(ctx context.Context) (int64, error) {
	if err := s.ensureClient(); err != nil {
		return 0, err
	}
	raw, err := s.client.Get(ctx, s.fullKey(ports.KeyUserID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, ports.ErrNoUser
		}
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: stored value %q", ports.ErrNoUser, raw)
	}
	return id, nil
}

func (s *PreferenceStore) read(ctx context.Context, key string) (*document, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ports.ErrQueryNotFound
		}
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode filter query %q: %w", key, err)
	}
	return &doc, nil
}

func (s *PreferenceStore) fullKey(key string) string {
	return s.prefix + key
}

func (s *PreferenceStore) ensureClient() error {
	if s == nil || s.client == nil {
		return errors.New("redis preference store not configured")
	}
	return nil
}
