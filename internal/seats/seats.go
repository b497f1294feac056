// Package seats enforces per-user seat limits against the active subscription.
package seats

import (
	"context"
	"errors"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/apperrors"
	"github.com/JiBrAN123456/Company-subscription-service/internal/lifecycle"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/gorm"
)

// Check reports whether the company may admit another active user.
//
// It returns ErrNoActiveSubscription when the company has no active
// subscription or the active-status one has lapsed past its end date,
// SeatLimitExceeded when a per-user plan's snapshotted seat limit is full,
// and nil otherwise (flat-fee plans carry no seat cap). Run it inside the
// same transaction as the user insert so concurrent admissions serialize on
// the row count.
func Check(ctx context.Context, conn *gorm.DB, companyID uint64) error {
	var sub models.Subscription
	errFind := conn.WithContext(ctx).Preload("Plan").
		Where("company_id = ? AND status = ?", companyID, models.SubscriptionStatusActive).
		First(&sub).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return apperrors.ErrNoActiveSubscription
		}
		return apperrors.Internal(errFind)
	}
	if !lifecycle.IsActive(&sub, time.Now().UTC()) {
		return apperrors.ErrNoActiveSubscription
	}

	// Only per-user plans are seat-capped; a configured limit on a flat-fee
	// plan is ignored.
	if sub.Plan.PricingModel != models.PricingModelPerUser || sub.MaxUsers == nil {
		return nil
	}

	var activeUsers int64
	if errCount := conn.WithContext(ctx).Model(&models.User{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Count(&activeUsers).Error; errCount != nil {
		return apperrors.Internal(errCount)
	}

	if activeUsers >= int64(*sub.MaxUsers) {
		return apperrors.SeatLimitExceeded(*sub.MaxUsers)
	}
	return nil
}

// CanAddUser reports the seat decision as a boolean, swallowing the typed
// rejection reasons. Storage errors are still returned.
func CanAddUser(ctx context.Context, conn *gorm.DB, companyID uint64) (bool, error) {
	errCheck := Check(ctx, conn, companyID)
	if errCheck == nil {
		return true, nil
	}
	var appErr *apperrors.AppError
	if errors.As(errCheck, &appErr) && appErr.Code != apperrors.CodeInternal {
		return false, nil
	}
	return false, errCheck
}
