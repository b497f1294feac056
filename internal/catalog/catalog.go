// Package catalog manages the subscription plan catalog.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/JiBrAN123456/Company-subscription-service/internal/apperrors"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Definition captures the inputs for creating a plan.
type Definition struct {
	Name         string
	BillingCycle models.BillingCycle
	PricingModel models.PricingModel
	Cost         decimal.Decimal
	UserLimit    *uint
}

// validate checks a plan definition and returns field-level detail on failure.
func (d Definition) validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(d.Name) == "" {
		fields["name"] = "name is required"
	}
	switch d.BillingCycle {
	case models.BillingCycleMonthly, models.BillingCycleQuarterly, models.BillingCycleYearly:
	default:
		fields["billing_cycle"] = "billing_cycle must be monthly, quarterly, or yearly"
	}
	switch d.PricingModel {
	case models.PricingModelFlatFee, models.PricingModelPerUser:
	default:
		fields["pricing_model"] = "pricing_model must be flat_fee or per_user"
	}
	if !d.Cost.IsPositive() {
		fields["cost"] = "cost must be greater than zero"
	}
	if d.PricingModel == models.PricingModelPerUser {
		if d.UserLimit == nil || *d.UserLimit == 0 {
			fields["user_limit"] = "per-user plans must have a user limit greater than zero"
		}
	}

	if len(fields) > 0 {
		return apperrors.ValidationError(fields)
	}
	return nil
}

// Create validates and inserts a new plan.
func Create(ctx context.Context, conn *gorm.DB, def Definition) (*models.SubscriptionPlan, error) {
	if errValidate := def.validate(); errValidate != nil {
		return nil, errValidate
	}

	plan := models.SubscriptionPlan{
		Name:         strings.TrimSpace(def.Name),
		BillingCycle: def.BillingCycle,
		PricingModel: def.PricingModel,
		Cost:         def.Cost,
		UserLimit:    def.UserLimit,
		IsActive:     true,
	}
	if errCreate := conn.WithContext(ctx).Create(&plan).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			return nil, apperrors.StateConflict("plan name already exists")
		}
		return nil, apperrors.Internal(errCreate)
	}
	return &plan, nil
}

// Get fetches a plan by ID.
func Get(ctx context.Context, conn *gorm.DB, id uint64) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if errFind := conn.WithContext(ctx).First(&plan, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan")
		}
		return nil, apperrors.Internal(errFind)
	}
	return &plan, nil
}

// List returns plans, optionally restricted to active ones.
func List(ctx context.Context, conn *gorm.DB, activeOnly bool) ([]models.SubscriptionPlan, error) {
	q := conn.WithContext(ctx).Model(&models.SubscriptionPlan{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.SubscriptionPlan
	if errFind := q.Order("name ASC").Find(&rows).Error; errFind != nil {
		return nil, apperrors.Internal(errFind)
	}
	return rows, nil
}

// Deactivate marks a plan as no longer subscribable. Plans are never deleted
// because historical subscriptions reference them.
func Deactivate(ctx context.Context, conn *gorm.DB, id uint64) error {
	res := conn.WithContext(ctx).Model(&models.SubscriptionPlan{}).
		Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return apperrors.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("plan")
	}
	return nil
}
