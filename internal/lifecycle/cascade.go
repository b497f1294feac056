package lifecycle

import (
	"context"

	"github.com/JiBrAN123456/Company-subscription-service/internal/apperrors"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/gorm"
)

// DeactivateCompanyUsers forces every active user of the company inactive.
// Invoked by suspend/expire transitions and by company suspension.
func DeactivateCompanyUsers(ctx context.Context, conn *gorm.DB, companyID uint64) error {
	if errUpdate := conn.WithContext(ctx).Model(&models.User{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Update("is_active", false).Error; errUpdate != nil {
		return apperrors.Internal(errUpdate)
	}
	return nil
}

// ReactivateCompanyUsers reactivates every user of the company. Only the
// payment-extension path calls this; company activation alone never does.
func ReactivateCompanyUsers(ctx context.Context, conn *gorm.DB, companyID uint64) error {
	if errUpdate := conn.WithContext(ctx).Model(&models.User{}).
		Where("company_id = ? AND is_active = ?", companyID, false).
		Update("is_active", true).Error; errUpdate != nil {
		return apperrors.Internal(errUpdate)
	}
	return nil
}
