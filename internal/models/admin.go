package models

import "time"

// Admin represents an operator account for the management API.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:varchar(255);not null;uniqueIndex"` // Unique login name.
	Password string `gorm:"type:text;not null"`                     // Hashed password.

	Active     bool   `gorm:"not null"` // Whether the admin can sign in; always set explicitly so false survives inserts.
	TOTPSecret string `gorm:"type:text"`             // TOTP secret for MFA, empty when disabled.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
