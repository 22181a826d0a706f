package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema of the filters context. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&filterPreferenceRecord{},
		&deviceSettingRecord{},
	)
}

// Filter preference schema mirrors the filters Postgres adapter. One row per screen key.
type filterPreferenceRecord struct {
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
	SearchResults  []any          `gorm:"column:search_results;serializer:json"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;index"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (filterPreferenceRecord) TableName() string { return "filter_preferences" }

// Device settings hold single values such as the current user id.
type deviceSettingRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:64"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (deviceSettingRecord) TableName() string { return "device_settings" }
