package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationLog records one expiry notification attempt for a subscription.
//
// Channels holds the per-channel outcome, e.g. {"email": true, "webhook":
// false}. Succeeded is true when at least one channel delivered.
type NotificationLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SubscriptionID uint64 `gorm:"not null;index"` // Notified subscription ID.
	CompanyID      uint64 `gorm:"not null;index"` // Owning company ID.

	SentAt    time.Time      `gorm:"not null"`              // When the attempt was made.
	Channels  datatypes.JSON `gorm:"type:jsonb"`            // Per-channel delivery outcome.
	Succeeded bool           `gorm:"not null;default:false"` // Whether any channel delivered.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
