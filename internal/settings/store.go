package settings

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cacheTTL bounds how stale a settings snapshot may get before a reload.
const cacheTTL = 30 * time.Second

var (
	mu       sync.RWMutex
	boundDB  *gorm.DB
	cache    map[string]json.RawMessage
	cachedAt time.Time
)

// Bind registers the database connection used to resolve settings.
func Bind(conn *gorm.DB) {
	mu.Lock()
	defer mu.Unlock()
	boundDB = conn
	cache = nil
	cachedAt = time.Time{}
}

// DBConfigValue returns the raw JSON value for a settings key, loading and
// caching the settings table on demand.
func DBConfigValue(key string) (json.RawMessage, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}

	mu.RLock()
	fresh := cache != nil && time.Since(cachedAt) < cacheTTL
	if fresh {
		value, ok := cache[key]
		mu.RUnlock()
		return value, ok
	}
	conn := boundDB
	mu.RUnlock()

	if conn == nil {
		return nil, false
	}

	var rows []models.Setting
	if errFind := conn.Find(&rows).Error; errFind != nil {
		return nil, false
	}

	next := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		next[row.Key] = json.RawMessage(row.Value)
	}

	mu.Lock()
	cache = next
	cachedAt = time.Now()
	mu.Unlock()

	value, ok := next[key]
	return value, ok
}

// Invalidate drops the cached snapshot so the next read hits the database.
func Invalidate() {
	mu.Lock()
	defer mu.Unlock()
	cache = nil
	cachedAt = time.Time{}
}

// Set upserts a settings value and invalidates the cache.
func Set(conn *gorm.DB, key string, value any) error {
	raw, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return errMarshal
	}
	now := time.Now().UTC()
	record := models.Setting{
		Key:       strings.TrimSpace(key),
		Value:     datatypes.JSON(raw),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errUpsert := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error; errUpsert != nil {
		return errUpsert
	}
	Invalidate()
	return nil
}
