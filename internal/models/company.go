package models

import "time"

// CompanyStatus represents the lifecycle state of a company account.
type CompanyStatus string

// CompanyStatus constants define company lifecycle states.
const (
	// CompanyStatusActive marks a company in good standing.
	CompanyStatusActive CompanyStatus = "active"
	// CompanyStatusSuspended marks a company whose access is cut off.
	CompanyStatusSuspended CompanyStatus = "suspended"
)

// Company represents a tenant account that owns users and subscriptions.
type Company struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name   string        `gorm:"type:varchar(255);not null;uniqueIndex"` // Unique company name.
	Status CompanyStatus `gorm:"type:varchar(20);not null;default:'active'"` // Current lifecycle state.

	NotificationEmail      string `gorm:"type:text"`              // Billing contact email.
	NotifyWebhook          bool   `gorm:"not null;default:false"` // Whether chat webhook notifications are enabled.
	WebhookURL             string `gorm:"type:text"`              // Chat webhook endpoint.
	NotificationDaysBefore int    `gorm:"not null;default:7"`     // Days before expiry to start notifying.

	Users         []User         `gorm:"foreignKey:CompanyID"` // Accounts under this company.
	Subscriptions []Subscription `gorm:"foreignKey:CompanyID"` // Subscription history.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
