package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	"github.com/Apurer/go-adoption-filters/internal/shared/projection"
)

var (
	_ ports.PreferenceStore  = (*PreferenceStore)(nil)
	_ ports.PreferencePurger = (*PreferenceStore)(nil)
	_ ports.UserResolver     = (*PreferenceStore)(nil)
)

// PreferenceStore keeps JSON-serialized queries in memory, mirroring a device key-value store.
type PreferenceStore struct {
	mu      sync.RWMutex
	entries map[string]storedQuery
	userID  *int64
	now     func() time.Time
}

type storedQuery struct {
	payload  []byte
	metadata projection.Metadata
}

// NewPreferenceStore constructs an empty in-memory store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{entries: map[string]storedQuery{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *PreferenceStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SetUserID stores the device user id.
func (s *PreferenceStore) SetUserID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = &id
}

// CurrentUserID returns the stored user id.
func (s *PreferenceStore) CurrentUserID(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == nil {
		return 0, ports.ErrNoUser
	}
	return *s.userID, nil
}

// SaveQuery serializes and stores the query under key.
func (s *PreferenceStore) SaveQuery(_ context.Context, key string, query domain.FilterQuery) (*ports.QueryProjection, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	meta := projection.Metadata{CreatedAt: now, UpdatedAt: now}
	if existing, ok := s.entries[key]; ok {
		meta.CreatedAt = existing.metadata.CreatedAt
	}
	s.entries[key] = storedQuery{payload: payload, metadata: meta}
	return decodeStored(s.entries[key])
}

// LoadQuery returns the query stored under key.
func (s *PreferenceStore) LoadQuery(_ context.Context, key string) (*ports.QueryProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, ports.ErrQueryNotFound
	}
	return decodeStored(entry)
}

// DeleteQuery removes the query stored under key.
func (s *PreferenceStore) DeleteQuery(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return ports.ErrQueryNotFound
	}
	delete(s.entries, key)
	return nil
}

// PurgeOlderThan drops queries last saved before cutoff.
func (s *PreferenceStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, entry := range s.entries {
		if entry.metadata.UpdatedBefore(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Raw returns the serialized value stored under key, as the listing screen would read it.
func (s *PreferenceStore) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte{}, entry.payload...), true
}

func decodeStored(entry storedQuery) (*ports.QueryProjection, error) {
	var query domain.FilterQuery
	if err := json.Unmarshal(entry.payload, &query); err != nil {
		return nil, err
	}
	return projection.New(query, entry.metadata.CreatedAt, entry.metadata.UpdatedAt), nil
}
