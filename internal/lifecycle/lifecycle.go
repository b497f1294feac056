// Package lifecycle implements the subscription state machine: activation,
// expiry, suspension, and the two renewal paths, plus the access cascade that
// propagates status changes to company users.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/apperrors"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/gorm"
)

// DefaultExpiryWindowDays is the fallback pre-expiry notification window.
const DefaultExpiryWindowDays = 7

// AddCycle advances a time by one billing-cycle length, calendar aware.
func AddCycle(t time.Time, cycle models.BillingCycle) time.Time {
	switch cycle {
	case models.BillingCycleMonthly:
		return t.AddDate(0, 1, 0)
	case models.BillingCycleQuarterly:
		return t.AddDate(0, 3, 0)
	case models.BillingCycleYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t
	}
}

// snapshotSeatLimit copies the plan's seat limit into a new subscription.
// Flat-fee plans are never seat-capped, even when a limit is configured.
func snapshotSeatLimit(plan *models.SubscriptionPlan) *uint {
	if plan.PricingModel != models.PricingModelPerUser {
		return nil
	}
	return plan.UserLimit
}

// Create activates a new subscription for the company on the given plan.
//
// The end date is derived from the plan's billing cycle, and MaxUsers and
// CostAtSignup are snapshotted from the plan at this instant. A company with
// an existing active subscription is rejected; the partial unique index backs
// the same invariant against concurrent creates.
func Create(ctx context.Context, conn *gorm.DB, companyID, planID uint64, now time.Time) (*models.Subscription, error) {
	var created *models.Subscription
	errTx := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if errFind := tx.First(&company, companyID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("company")
			}
			return apperrors.Internal(errFind)
		}

		var plan models.SubscriptionPlan
		if errFind := tx.First(&plan, planID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("plan")
			}
			return apperrors.Internal(errFind)
		}
		if !plan.IsActive {
			return apperrors.StateConflict("plan is no longer available")
		}

		var existing int64
		if errCount := tx.Model(&models.Subscription{}).
			Where("company_id = ? AND status = ?", companyID, models.SubscriptionStatusActive).
			Count(&existing).Error; errCount != nil {
			return apperrors.Internal(errCount)
		}
		if existing > 0 {
			return apperrors.ErrDuplicateActiveSubscription
		}

		sub := models.Subscription{
			CompanyID:    companyID,
			PlanID:       planID,
			Status:       models.SubscriptionStatusActive,
			StartDate:    now,
			EndDate:      AddCycle(now, plan.BillingCycle),
			MaxUsers:     snapshotSeatLimit(&plan),
			CostAtSignup: plan.Cost,
		}
		if errCreate := tx.Create(&sub).Error; errCreate != nil {
			if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateActiveSubscription
			}
			return apperrors.Internal(errCreate)
		}
		created = &sub
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return created, nil
}

// Suspend pauses a subscription and deactivates the company's users.
func Suspend(ctx context.Context, conn *gorm.DB, subID uint64) error {
	return transition(ctx, conn, subID, models.SubscriptionStatusSuspended)
}

// Expire marks a subscription expired and deactivates the company's users.
func Expire(ctx context.Context, conn *gorm.DB, subID uint64) error {
	return transition(ctx, conn, subID, models.SubscriptionStatusExpired)
}

// transition applies a terminal-for-access status and runs the user cascade.
func transition(ctx context.Context, conn *gorm.DB, subID uint64, status models.SubscriptionStatus) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if errFind := tx.First(&sub, subID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("subscription")
			}
			return apperrors.Internal(errFind)
		}

		if errUpdate := tx.Model(&models.Subscription{}).Where("id = ?", subID).
			Update("status", status).Error; errUpdate != nil {
			return apperrors.Internal(errUpdate)
		}
		return DeactivateCompanyUsers(ctx, tx, sub.CompanyID)
	})
}

// Renew performs a full renewal: any active subscription of the company is
// marked expired, and a brand-new active subscription is created with a fresh
// end date computed from now. A suspended company is reactivated, but its
// users are not; only the payment-extension path resurrects users.
//
// Snapshots are taken from the plan as it stands today: a renewal is a new
// purchase at current plan terms.
func Renew(ctx context.Context, conn *gorm.DB, subID uint64, now time.Time) (*models.Subscription, error) {
	var renewed *models.Subscription
	errTx := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if errFind := tx.Preload("Plan").First(&sub, subID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("subscription")
			}
			return apperrors.Internal(errFind)
		}

		// Expire without the user cascade: the replacement subscription is
		// activated in the same transaction.
		if errExpire := tx.Model(&models.Subscription{}).
			Where("company_id = ? AND status = ?", sub.CompanyID, models.SubscriptionStatusActive).
			Update("status", models.SubscriptionStatusExpired).Error; errExpire != nil {
			return apperrors.Internal(errExpire)
		}

		next := models.Subscription{
			CompanyID:    sub.CompanyID,
			PlanID:       sub.PlanID,
			Status:       models.SubscriptionStatusActive,
			StartDate:    now,
			EndDate:      AddCycle(now, sub.Plan.BillingCycle),
			MaxUsers:     snapshotSeatLimit(&sub.Plan),
			CostAtSignup: sub.Plan.Cost,
		}
		if errCreate := tx.Create(&next).Error; errCreate != nil {
			if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateActiveSubscription
			}
			return apperrors.Internal(errCreate)
		}

		if errActivate := tx.Model(&models.Company{}).
			Where("id = ? AND status = ?", sub.CompanyID, models.CompanyStatusSuspended).
			Update("status", models.CompanyStatusActive).Error; errActivate != nil {
			return apperrors.Internal(errActivate)
		}

		renewed = &next
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return renewed, nil
}

// ExtendForPayment extends a subscription in place after a completed payment:
// one billing-cycle length is added to the existing end date (not recomputed
// from now), the subscription returns to active, and the company's users are
// reactivated provided the company itself is active.
func ExtendForPayment(ctx context.Context, conn *gorm.DB, payment *models.Payment, now time.Time) (*models.Subscription, error) {
	if payment == nil {
		return nil, apperrors.ErrInvalidPaymentState
	}
	if payment.Status != models.PaymentStatusCompleted {
		return nil, apperrors.ErrInvalidPaymentState
	}

	var extended *models.Subscription
	errTx := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if errFind := tx.Preload("Plan").Preload("Company").
			First(&sub, payment.SubscriptionID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("subscription")
			}
			return apperrors.Internal(errFind)
		}

		sub.EndDate = AddCycle(sub.EndDate, sub.Plan.BillingCycle)
		sub.Status = models.SubscriptionStatusActive
		if errSave := tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).
			Updates(map[string]any{
				"end_date": sub.EndDate,
				"status":   sub.Status,
			}).Error; errSave != nil {
			if errors.Is(errSave, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateActiveSubscription
			}
			return apperrors.Internal(errSave)
		}

		if sub.Company.Status == models.CompanyStatusActive {
			if errReactivate := ReactivateCompanyUsers(ctx, tx, sub.CompanyID); errReactivate != nil {
				return errReactivate
			}
		}
		extended = &sub
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return extended, nil
}

// IsActive reports whether the subscription is currently usable: stored
// status active and end date strictly in the future. A subscription can carry
// status=active yet be logically lapsed once its end date passes; callers
// needing the authoritative answer use this, not the stored field.
func IsActive(sub *models.Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	return sub.Status == models.SubscriptionStatusActive &&
		!sub.EndDate.IsZero() &&
		sub.EndDate.After(now)
}

// IsExpiringSoon reports whether an active subscription ends within the
// given window. A non-positive window falls back to the 7-day default.
func IsExpiringSoon(sub *models.Subscription, now time.Time, windowDays int) bool {
	if sub == nil || sub.Status != models.SubscriptionStatusActive || sub.EndDate.IsZero() {
		return false
	}
	if windowDays <= 0 {
		windowDays = DefaultExpiryWindowDays
	}
	remaining := sub.EndDate.Sub(now)
	return remaining >= 0 && remaining <= time.Duration(windowDays)*24*time.Hour
}

// SuspendCompany suspends a company and deactivates all of its users.
func SuspendCompany(ctx context.Context, conn *gorm.DB, companyID uint64) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Company{}).Where("id = ?", companyID).
			Update("status", models.CompanyStatusSuspended)
		if res.Error != nil {
			return apperrors.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("company")
		}
		return DeactivateCompanyUsers(ctx, tx, companyID)
	})
}

// ActivateCompany activates a company without touching its users: previously
// deactivated accounts come back only through explicit per-user activation or
// a successful payment extension.
func ActivateCompany(ctx context.Context, conn *gorm.DB, companyID uint64) error {
	res := conn.WithContext(ctx).Model(&models.Company{}).Where("id = ?", companyID).
		Update("status", models.CompanyStatusActive)
	if res.Error != nil {
		return apperrors.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("company")
	}
	return nil
}
