package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus represents the lifecycle state of a subscription.
type SubscriptionStatus string

// SubscriptionStatus constants define subscription lifecycle states.
const (
	// SubscriptionStatusActive marks a subscription currently in force.
	SubscriptionStatusActive SubscriptionStatus = "active"
	// SubscriptionStatusExpired marks a subscription past its end date.
	SubscriptionStatusExpired SubscriptionStatus = "expired"
	// SubscriptionStatusSuspended marks a subscription paused by an operator.
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
)

// Subscription records a time-bounded purchase of a plan by a company.
//
// MaxUsers and CostAtSignup are snapshotted from the plan at creation time so
// later plan edits never retroactively alter billing history. At most one
// subscription per company may hold status=active; the partial unique index
// one_active_subscription_per_company enforces this at the store level.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyID uint64  `gorm:"not null;index"`       // Owning company ID.
	Company   Company `gorm:"foreignKey:CompanyID"` // Owning company record.

	PlanID uint64           `gorm:"not null;index"`    // Referenced plan ID.
	Plan   SubscriptionPlan `gorm:"foreignKey:PlanID"` // Referenced plan record.

	Status SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active'"` // Current lifecycle state.

	StartDate time.Time `gorm:"not null"` // Period start time.
	EndDate   time.Time `gorm:"not null"` // Period end time, derived from the billing cycle.

	MaxUsers     *uint           ``                            // Seat limit snapshot taken at creation.
	CostAtSignup decimal.Decimal `gorm:"type:decimal(10,2)"`   // Cost snapshot taken at creation.

	Payments []Payment `gorm:"foreignKey:SubscriptionID"` // Payments recorded against this subscription.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
