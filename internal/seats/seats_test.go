package seats

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/apperrors"
	"github.com/JiBrAN123456/Company-subscription-service/internal/db"
	"github.com/JiBrAN123456/Company-subscription-service/internal/lifecycle"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "billing-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func subscribe(t *testing.T, conn *gorm.DB, userLimit *uint) *models.Company {
	t.Helper()
	company := models.Company{Name: "acme", Status: models.CompanyStatusActive, NotificationDaysBefore: 7}
	if errCreate := conn.Create(&company).Error; errCreate != nil {
		t.Fatalf("create company: %v", errCreate)
	}
	plan := models.SubscriptionPlan{
		Name:         "team",
		BillingCycle: models.BillingCycleMonthly,
		PricingModel: models.PricingModelPerUser,
		Cost:         decimal.RequireFromString("49.99"),
		UserLimit:    userLimit,
		IsActive:     true,
	}
	if userLimit == nil {
		plan.PricingModel = models.PricingModelFlatFee
	}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}
	if _, errSub := lifecycle.Create(context.Background(), conn, company.ID, plan.ID, time.Now().UTC()); errSub != nil {
		t.Fatalf("create subscription: %v", errSub)
	}
	return &company
}

func addUsers(t *testing.T, conn *gorm.DB, companyID uint64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		user := models.User{
			CompanyID: companyID,
			Username:  fmt.Sprintf("user-%d", i),
			Password:  "x",
			IsActive:  true,
		}
		if errCreate := conn.Create(&user).Error; errCreate != nil {
			t.Fatalf("create user: %v", errCreate)
		}
	}
}

func TestCheck_RejectsAtSeatLimit(t *testing.T) {
	conn := openTestDB(t)
	limit := uint(5)
	company := subscribe(t, conn, &limit)
	addUsers(t, conn, company.ID, 5)

	errCheck := Check(context.Background(), conn, company.ID)
	var appErr *apperrors.AppError
	if !errors.As(errCheck, &appErr) || appErr.Code != apperrors.CodeSeatLimitExceeded {
		t.Fatalf("expected seat limit exceeded, got %v", errCheck)
	}
}

func TestCheck_AllowsBelowLimit(t *testing.T) {
	conn := openTestDB(t)
	limit := uint(5)
	company := subscribe(t, conn, &limit)
	addUsers(t, conn, company.ID, 4)

	if errCheck := Check(context.Background(), conn, company.ID); errCheck != nil {
		t.Fatalf("expected admission below limit, got %v", errCheck)
	}
}

func TestCheck_IgnoresInactiveUsers(t *testing.T) {
	conn := openTestDB(t)
	limit := uint(2)
	company := subscribe(t, conn, &limit)
	addUsers(t, conn, company.ID, 1)

	dormant := models.User{CompanyID: company.ID, Username: "dormant", Password: "x", IsActive: false}
	if errCreate := conn.Create(&dormant).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	var reloaded models.User
	if errFind := conn.First(&reloaded, dormant.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if reloaded.IsActive {
		t.Fatalf("expected the inactive flag to survive the insert")
	}

	if errCheck := Check(context.Background(), conn, company.ID); errCheck != nil {
		t.Fatalf("expected inactive users to free seats, got %v", errCheck)
	}
}

func TestCheck_FlatFeeHasNoLimit(t *testing.T) {
	conn := openTestDB(t)
	company := subscribe(t, conn, nil)
	addUsers(t, conn, company.ID, 50)

	if errCheck := Check(context.Background(), conn, company.ID); errCheck != nil {
		t.Fatalf("expected no limit on flat fee plan, got %v", errCheck)
	}
}

func TestCheck_FlatFeeIgnoresConfiguredLimit(t *testing.T) {
	conn := openTestDB(t)
	company := models.Company{Name: "acme", Status: models.CompanyStatusActive}
	if errCreate := conn.Create(&company).Error; errCreate != nil {
		t.Fatalf("create company: %v", errCreate)
	}
	limit := uint(1)
	plan := models.SubscriptionPlan{
		Name:         "unlimited",
		BillingCycle: models.BillingCycleMonthly,
		PricingModel: models.PricingModelFlatFee,
		Cost:         decimal.RequireFromString("10.00"),
		UserLimit:    &limit,
		IsActive:     true,
	}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}
	now := time.Now().UTC()
	sub := models.Subscription{
		CompanyID:    company.ID,
		PlanID:       plan.ID,
		Status:       models.SubscriptionStatusActive,
		StartDate:    now,
		EndDate:      now.AddDate(0, 1, 0),
		MaxUsers:     &limit,
		CostAtSignup: plan.Cost,
	}
	if errCreate := conn.Create(&sub).Error; errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}
	addUsers(t, conn, company.ID, 1)

	if errCheck := Check(context.Background(), conn, company.ID); errCheck != nil {
		t.Fatalf("expected no seat cap on a flat fee plan, got %v", errCheck)
	}
}

func TestCheck_LapsedSubscriptionRejects(t *testing.T) {
	conn := openTestDB(t)
	limit := uint(5)
	company := subscribe(t, conn, &limit)
	if errUpdate := conn.Model(&models.Subscription{}).
		Where("company_id = ?", company.ID).
		Update("end_date", time.Now().UTC().AddDate(0, -1, 0)).Error; errUpdate != nil {
		t.Fatalf("backdate subscription: %v", errUpdate)
	}

	errCheck := Check(context.Background(), conn, company.ID)
	if !errors.Is(errCheck, apperrors.ErrNoActiveSubscription) {
		t.Fatalf("expected lapsed subscription to reject admissions, got %v", errCheck)
	}
}

func TestCheck_NoActiveSubscription(t *testing.T) {
	conn := openTestDB(t)
	company := models.Company{Name: "acme", Status: models.CompanyStatusActive}
	if errCreate := conn.Create(&company).Error; errCreate != nil {
		t.Fatalf("create company: %v", errCreate)
	}

	errCheck := Check(context.Background(), conn, company.ID)
	if !errors.Is(errCheck, apperrors.ErrNoActiveSubscription) {
		t.Fatalf("expected no active subscription error, got %v", errCheck)
	}
}

func TestCanAddUser(t *testing.T) {
	conn := openTestDB(t)
	limit := uint(1)
	company := subscribe(t, conn, &limit)

	ok, errCan := CanAddUser(context.Background(), conn, company.ID)
	if errCan != nil || !ok {
		t.Fatalf("expected admission, got ok=%v err=%v", ok, errCan)
	}

	addUsers(t, conn, company.ID, 1)
	ok, errCan = CanAddUser(context.Background(), conn, company.ID)
	if errCan != nil {
		t.Fatalf("expected typed rejection to be swallowed, got %v", errCan)
	}
	if ok {
		t.Fatalf("expected rejection at limit")
	}
}
