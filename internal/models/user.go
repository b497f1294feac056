package models

import "time"

// User represents a tenant account that belongs to exactly one company.
//
// IsActive is forced to false whenever the owning company is suspended or its
// subscription lapses; IsStaff marks the admins who receive expiry
// notifications.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning company ID.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning company record.

	Username  string `gorm:"type:varchar(255);not null;uniqueIndex"` // Unique login name.
	Email     string `gorm:"type:text"`                              // Email address.
	Password  string `gorm:"type:text;not null"`                     // Hashed password.
	FirstName string `gorm:"type:varchar(255)"`                      // Given name.
	LastName  string `gorm:"type:varchar(255)"`                      // Family name.

	IsActive bool `gorm:"not null"`               // Whether the account occupies a seat; always set explicitly so false survives inserts.
	IsStaff  bool `gorm:"not null;default:false"` // Whether the account receives expiry notices.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
