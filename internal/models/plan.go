package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle represents the billing period unit of a plan.
type BillingCycle string

// BillingCycle constants define supported billing periods.
const (
	// BillingCycleMonthly charges every calendar month.
	BillingCycleMonthly BillingCycle = "monthly"
	// BillingCycleQuarterly charges every three calendar months.
	BillingCycleQuarterly BillingCycle = "quarterly"
	// BillingCycleYearly charges every calendar year.
	BillingCycleYearly BillingCycle = "yearly"
)

// PricingModel represents how a plan's cost is applied.
type PricingModel string

// PricingModel constants define supported pricing models.
const (
	// PricingModelFlatFee charges a fixed amount regardless of seats.
	PricingModelFlatFee PricingModel = "flat_fee"
	// PricingModelPerUser charges per active user seat up to a limit.
	PricingModelPerUser PricingModel = "per_user"
)

// SubscriptionPlan represents a purchasable plan definition.
//
// Plans are referenced, never owned, by subscriptions: they are deactivated
// rather than deleted so historical subscriptions keep a valid reference.
type SubscriptionPlan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name         string          `gorm:"type:varchar(255);not null;uniqueIndex"` // Unique plan name.
	BillingCycle BillingCycle    `gorm:"type:varchar(20);not null"`              // Billing period unit.
	PricingModel PricingModel    `gorm:"type:varchar(20);not null"`              // Pricing model.
	Cost         decimal.Decimal `gorm:"type:decimal(10,2);not null"`            // Cost per billing cycle.
	UserLimit    *uint           ``                                              // Max active users, required for per_user plans.
	IsActive     bool            `gorm:"not null"`                               // Whether the plan can be subscribed to; always set explicitly so false survives inserts.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
