package db

import (
	"fmt"

	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"gorm.io/gorm"
)

// Migrate applies the schema and the invariant indexes for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.Company{},
		&models.SubscriptionPlan{},
		&models.Subscription{},
		&models.Payment{},
		&models.User{},
		&models.NotificationLog{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errIndex := ensureActiveSubscriptionIndex(conn); errIndex != nil {
		return errIndex
	}
	return nil
}

// ensureActiveSubscriptionIndex creates the partial unique index that allows
// at most one active subscription per company. Both supported dialects accept
// the same partial-index syntax.
func ensureActiveSubscriptionIndex(conn *gorm.DB) error {
	stmt := `CREATE UNIQUE INDEX IF NOT EXISTS one_active_subscription_per_company
		ON subscriptions (company_id) WHERE status = 'active'`
	if errExec := conn.Exec(stmt).Error; errExec != nil {
		return fmt.Errorf("db: create active subscription index: %w", errExec)
	}
	return nil
}
