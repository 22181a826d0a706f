package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/domain"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	"github.com/Apurer/go-adoption-filters/internal/shared/projection"
)

var (
	_ ports.PreferenceStore  = (*PreferenceStore)(nil)
	_ ports.PreferencePurger = (*PreferenceStore)(nil)
	_ ports.UserResolver     = (*PreferenceStore)(nil)
)

// PreferenceStore persists committed filter queries and device settings in PostgreSQL.
type PreferenceStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPreferenceStore wires a PostgreSQL-backed preference store. Caller owns DB lifecycle.
func NewPreferenceStore(db *gorm.DB) *PreferenceStore {
	return &PreferenceStore{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *PreferenceStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type preferenceRecord struct {
	Key            string         `gorm:"primaryKey;column:key;size:64"`
	SpeciesIDs     pq.Int64Array  `gorm:"column:species_ids;type:bigint[]"`
	BreedIDs       pq.Int64Array  `gorm:"column:breed_ids;type:bigint[]"`
	AgeRangeIDs    pq.Int64Array  `gorm:"column:age_range_ids;type:bigint[]"`
	StateIDs       pq.Int64Array  `gorm:"column:state_ids;type:bigint[]"`
	CityIDs        pq.Int64Array  `gorm:"column:city_ids;type:bigint[]"`
	AgeRangeAges   map[int64]int  `gorm:"column:age_range_ages;serializer:json"`
	OnlyFavorites  bool           `gorm:"column:only_favorites"`
	FavoritePetIDs pq.Int64Array  `gorm:"column:favorite_pet_ids;type:bigint[]"`
	SearchText     string         `gorm:"column:search_text"`
	SearchResults  []domain.Pet   `gorm:"column:search_results;serializer:json"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;index"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (preferenceRecord) TableName() string { return "filter_preferences" }

type settingRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:64"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (settingRecord) TableName() string { return "device_settings" }

// SaveQuery upserts the query stored under key.
func (s *PreferenceStore) SaveQuery(ctx context.Context, key string, query domain.FilterQuery) (*ports.QueryProjection, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("preference key is required")
	}
	now := s.now().UTC()
	rec := toRecord(key, query)
	rec.CreatedAt = now
	rec.UpdatedAt = now
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"species_ids", "breed_ids", "age_range_ids", "state_ids", "city_ids", "age_range_ages",
				"only_favorites", "favorite_pet_ids", "search_text", "search_results", "updated_at", "deleted_at",
			}),
		}).
		Create(&rec).Error
	if err != nil {
		return nil, err
	}
	return s.LoadQuery(ctx, key)
}

// LoadQuery returns the query stored under key.
func (s *PreferenceStore) LoadQuery(ctx context.Context, key string) (*ports.QueryProjection, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec preferenceRecord
	if err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrQueryNotFound
		}
		return nil, err
	}
	return toProjection(&rec), nil
}

// DeleteQuery soft deletes the query stored under key.
func (s *PreferenceStore) DeleteQuery(ctx context.Context, key string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&preferenceRecord{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrQueryNotFound
	}
	return nil
}

// PurgeOlderThan hard deletes queries untouched since cutoff, soft deleted rows included.
func (s *PreferenceStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Unscoped().
		Where("updated_at < ? OR deleted_at IS NOT NULL", cutoff).
		Delete(&preferenceRecord{})
	return res.RowsAffected, res.Error
}

// SetUserID records the device user id.
func (s *PreferenceStore) SetUserID(ctx context.Context, id int64) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	rec := settingRecord{Key: ports.KeyUserID, Value: strconv.FormatInt(id, 10), UpdatedAt: s.now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

// CurrentUserID reads the device user id.
func (s *PreferenceStore) CurrentUserID(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	var rec settingRecord
	if err := s.db.WithContext(ctx).First(&rec, "key = ?", ports.KeyUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ports.ErrNoUser
		}
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rec.Value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: stored value %q", ports.ErrNoUser, rec.Value)
	}
	return id, nil
}

func (s *PreferenceStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres preference store not configured")
	}
	return nil
}

func toRecord(key string, q domain.FilterQuery) preferenceRecord {
	return preferenceRecord{
		Key:            key,
		SpeciesIDs:     pq.Int64Array(q.SpeciesIDs),
		BreedIDs:       pq.Int64Array(q.BreedIDs),
		AgeRangeIDs:    pq.Int64Array(q.AgeRangeIDs),
		StateIDs:       pq.Int64Array(q.StateIDs),
		CityIDs:        pq.Int64Array(q.CityIDs),
		AgeRangeAges:   q.AgeRangeAges,
		OnlyFavorites:  q.OnlyFavorites,
		FavoritePetIDs: pq.Int64Array(q.FavoritePetIDs),
		SearchText:     q.SearchText,
		SearchResults:  q.SearchResults,
	}
}

func toProjection(rec *preferenceRecord) *ports.QueryProjection {
	q := domain.FilterQuery{
		SpeciesIDs:    nonEmpty(rec.SpeciesIDs),
		BreedIDs:      nonEmpty(rec.BreedIDs),
		AgeRangeIDs:   nonEmpty(rec.AgeRangeIDs),
		StateIDs:      nonEmpty(rec.StateIDs),
		CityIDs:       nonEmpty(rec.CityIDs),
		OnlyFavorites: rec.OnlyFavorites,
		SearchText:    rec.SearchText,
	}
	if len(rec.AgeRangeAges) > 0 {
		q.AgeRangeAges = rec.AgeRangeAges
	}
	if rec.OnlyFavorites {
		q.FavoritePetIDs = append([]int64{}, rec.FavoritePetIDs...)
	}
	if len(rec.SearchResults) > 0 {
		q.SearchResults = rec.SearchResults
	}
	return projection.New(q, rec.CreatedAt, rec.UpdatedAt)
}

func nonEmpty(ids pq.Int64Array) []int64 {
	if len(ids) == 0 {
		return nil
	}
	return []int64(ids)
}
