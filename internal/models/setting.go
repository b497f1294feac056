package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores a runtime configuration value as JSON keyed by name.
type Setting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Key   string         `gorm:"type:varchar(255);not null;uniqueIndex"` // Unique config key.
	Value datatypes.JSON `gorm:"type:jsonb"`                             // JSON-encoded value.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
