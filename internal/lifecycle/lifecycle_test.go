package lifecycle

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/apperrors"
	"github.com/JiBrAN123456/Company-subscription-service/internal/db"
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

func seedCompany(t *testing.T, conn *gorm.DB, name string) *models.Company {
	t.Helper()
	company := models.Company{Name: name, Status: models.CompanyStatusActive, NotificationDaysBefore: 7}
	if errCreate := conn.Create(&company).Error; errCreate != nil {
		t.Fatalf("create company: %v", errCreate)
	}
	return &company
}

func seedPlan(t *testing.T, conn *gorm.DB, name string, cycle models.BillingCycle, cost string, userLimit *uint) *models.SubscriptionPlan {
	t.Helper()
	plan := models.SubscriptionPlan{
		Name:         name,
		BillingCycle: cycle,
		PricingModel: models.PricingModelPerUser,
		Cost:         decimal.RequireFromString(cost),
		UserLimit:    userLimit,
		IsActive:     true,
	}
	if plan.UserLimit == nil {
		plan.PricingModel = models.PricingModelFlatFee
	}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}
	return &plan
}

func seedUser(t *testing.T, conn *gorm.DB, companyID uint64, username string, active bool) *models.User {
	t.Helper()
	user := models.User{
		CompanyID: companyID,
		Username:  username,
		Password:  "x",
		IsActive:  active,
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return &user
}

func uintPtr(v uint) *uint { return &v }

func TestAddCycle(t *testing.T) {
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	if got := AddCycle(start, models.BillingCycleMonthly); !got.Equal(time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("monthly: got %v", got)
	}
	if got := AddCycle(start, models.BillingCycleQuarterly); !got.Equal(time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("quarterly: got %v", got)
	}
	if got := AddCycle(start, models.BillingCycleYearly); !got.Equal(time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("yearly: got %v", got)
	}
}

func TestAddCycle_MonthEndNormalization(t *testing.T) {
	// Jan 31 + one month lands in early March after day normalization,
	// matching time.Time.AddDate semantics.
	start := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	got := AddCycle(start, models.BillingCycleMonthly)
	if got.Month() != time.March {
		t.Fatalf("expected normalization into March, got %v", got)
	}
}

func TestCreate_SnapshotsPlanTerms(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "49.99", uintPtr(5))

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	sub, errCreate := Create(context.Background(), conn, company.ID, plan.ID, now)
	if errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected active status, got %s", sub.Status)
	}
	if !sub.EndDate.Equal(now.AddDate(0, 1, 0)) {
		t.Fatalf("expected end date one month out, got %v", sub.EndDate)
	}
	if sub.MaxUsers == nil || *sub.MaxUsers != 5 {
		t.Fatalf("expected max users snapshot of 5, got %v", sub.MaxUsers)
	}
	if !sub.CostAtSignup.Equal(decimal.RequireFromString("49.99")) {
		t.Fatalf("expected cost snapshot 49.99, got %s", sub.CostAtSignup)
	}

	// A later plan edit must not alter the snapshot.
	if errUpdate := conn.Model(&models.SubscriptionPlan{}).Where("id = ?", plan.ID).
		Updates(map[string]any{"cost": "99.99", "user_limit": 50}).Error; errUpdate != nil {
		t.Fatalf("update plan: %v", errUpdate)
	}
	var reloaded models.Subscription
	if errFind := conn.First(&reloaded, sub.ID).Error; errFind != nil {
		t.Fatalf("reload subscription: %v", errFind)
	}
	if !reloaded.CostAtSignup.Equal(decimal.RequireFromString("49.99")) {
		t.Fatalf("snapshot changed after plan edit: %s", reloaded.CostAtSignup)
	}
	if reloaded.MaxUsers == nil || *reloaded.MaxUsers != 5 {
		t.Fatalf("max users snapshot changed after plan edit: %v", reloaded.MaxUsers)
	}
}

func TestCreate_RejectsSecondActiveSubscription(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "10.00", nil)

	now := time.Now().UTC()
	if _, errCreate := Create(context.Background(), conn, company.ID, plan.ID, now); errCreate != nil {
		t.Fatalf("first create: %v", errCreate)
	}
	_, errSecond := Create(context.Background(), conn, company.ID, plan.ID, now)
	if !errors.Is(errSecond, apperrors.ErrDuplicateActiveSubscription) {
		t.Fatalf("expected duplicate active subscription error, got %v", errSecond)
	}
}

func TestCreate_FlatFeeSkipsSeatLimitSnapshot(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := models.SubscriptionPlan{
		Name:         "unlimited",
		BillingCycle: models.BillingCycleMonthly,
		PricingModel: models.PricingModelFlatFee,
		Cost:         decimal.RequireFromString("10.00"),
		UserLimit:    uintPtr(1),
		IsActive:     true,
	}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	sub, errCreate := Create(context.Background(), conn, company.ID, plan.ID, now)
	if errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}
	if sub.MaxUsers != nil {
		t.Fatalf("expected no seat snapshot on a flat fee plan, got %d", *sub.MaxUsers)
	}

	renewed, errRenew := Renew(context.Background(), conn, sub.ID, now.AddDate(0, 1, 0))
	if errRenew != nil {
		t.Fatalf("renew subscription: %v", errRenew)
	}
	if renewed.MaxUsers != nil {
		t.Fatalf("expected renewal to skip the seat snapshot, got %d", *renewed.MaxUsers)
	}
}

func TestCreate_RejectsInactivePlan(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "legacy", models.BillingCycleMonthly, "10.00", nil)
	if errUpdate := conn.Model(&models.SubscriptionPlan{}).Where("id = ?", plan.ID).
		Update("is_active", false).Error; errUpdate != nil {
		t.Fatalf("deactivate plan: %v", errUpdate)
	}

	_, errCreate := Create(context.Background(), conn, company.ID, plan.ID, time.Now().UTC())
	var appErr *apperrors.AppError
	if !errors.As(errCreate, &appErr) || appErr.Code != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", errCreate)
	}
}

func TestCreate_UnknownCompany(t *testing.T) {
	conn := openTestDB(t)
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "10.00", nil)

	_, errCreate := Create(context.Background(), conn, 9999, plan.ID, time.Now().UTC())
	var appErr *apperrors.AppError
	if !errors.As(errCreate, &appErr) || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", errCreate)
	}
}

func TestSuspend_DeactivatesCompanyUsers(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "10.00", nil)
	seedUser(t, conn, company.ID, "alice", true)
	seedUser(t, conn, company.ID, "bob", true)

	sub, errCreate := Create(context.Background(), conn, company.ID, plan.ID, time.Now().UTC())
	if errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}
	if errSuspend := Suspend(context.Background(), conn, sub.ID); errSuspend != nil {
		t.Fatalf("suspend: %v", errSuspend)
	}

	var activeUsers int64
	if errCount := conn.Model(&models.User{}).
		Where("company_id = ? AND is_active = ?", company.ID, true).
		Count(&activeUsers).Error; errCount != nil {
		t.Fatalf("count users: %v", errCount)
	}
	if activeUsers != 0 {
		t.Fatalf("expected all users deactivated, %d still active", activeUsers)
	}

	var reloaded models.Subscription
	if errFind := conn.First(&reloaded, sub.ID).Error; errFind != nil {
		t.Fatalf("reload subscription: %v", errFind)
	}
	if reloaded.Status != models.SubscriptionStatusSuspended {
		t.Fatalf("expected suspended status, got %s", reloaded.Status)
	}
}

func TestRenew_CreatesReplacementSubscription(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "10.00", uintPtr(5))
	user := seedUser(t, conn, company.ID, "alice", false)

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	sub, errCreate := Create(context.Background(), conn, company.ID, plan.ID, start)
	if errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	// Suspend the company so renewal has something to restore.
	if errSuspend := SuspendCompany(context.Background(), conn, company.ID); errSuspend != nil {
		t.Fatalf("suspend company: %v", errSuspend)
	}

	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	renewed, errRenew := Renew(context.Background(), conn, sub.ID, now)
	if errRenew != nil {
		t.Fatalf("renew: %v", errRenew)
	}

	if renewed.ID == sub.ID {
		t.Fatalf("expected a new subscription record")
	}
	if !renewed.StartDate.Equal(now) || !renewed.EndDate.Equal(now.AddDate(0, 1, 0)) {
		t.Fatalf("expected period anchored at renewal time, got %v to %v", renewed.StartDate, renewed.EndDate)
	}

	var old models.Subscription
	if errFind := conn.First(&old, sub.ID).Error; errFind != nil {
		t.Fatalf("reload old subscription: %v", errFind)
	}
	if old.Status != models.SubscriptionStatusExpired {
		t.Fatalf("expected old subscription expired, got %s", old.Status)
	}

	var reloadedCompany models.Company
	if errFind := conn.First(&reloadedCompany, company.ID).Error; errFind != nil {
		t.Fatalf("reload company: %v", errFind)
	}
	if reloadedCompany.Status != models.CompanyStatusActive {
		t.Fatalf("expected company reactivated, got %s", reloadedCompany.Status)
	}

	// Renewal never resurrects users.
	var reloadedUser models.User
	if errFind := conn.First(&reloadedUser, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if reloadedUser.IsActive {
		t.Fatalf("expected user to stay inactive after renewal")
	}
}

func TestRenew_SnapshotsCurrentPlanTerms(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "10.00", uintPtr(5))

	sub, errCreate := Create(context.Background(), conn, company.ID, plan.ID, time.Now().UTC())
	if errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	if errUpdate := conn.Model(&models.SubscriptionPlan{}).Where("id = ?", plan.ID).
		Updates(map[string]any{"cost": "25.00", "user_limit": 10}).Error; errUpdate != nil {
		t.Fatalf("update plan: %v", errUpdate)
	}

	renewed, errRenew := Renew(context.Background(), conn, sub.ID, time.Now().UTC())
	if errRenew != nil {
		t.Fatalf("renew: %v", errRenew)
	}
	if !renewed.CostAtSignup.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected renewal at current cost, got %s", renewed.CostAtSignup)
	}
	if renewed.MaxUsers == nil || *renewed.MaxUsers != 10 {
		t.Fatalf("expected renewal at current user limit, got %v", renewed.MaxUsers)
	}
}

func TestExtendForPayment_ExtendsInPlace(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "10.00", nil)
	user := seedUser(t, conn, company.ID, "alice", false)

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	sub, errCreate := Create(context.Background(), conn, company.ID, plan.ID, start)
	if errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}

	payment := models.Payment{
		SubscriptionID: sub.ID,
		Amount:         decimal.RequireFromString("10.00"),
		Method:         models.PaymentMethodBankTransfer,
		Status:         models.PaymentStatusCompleted,
		PaymentDate:    start,
	}
	if errPayment := conn.Create(&payment).Error; errPayment != nil {
		t.Fatalf("create payment: %v", errPayment)
	}

	now := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	extended, errExtend := ExtendForPayment(context.Background(), conn, &payment, now)
	if errExtend != nil {
		t.Fatalf("extend: %v", errExtend)
	}

	// Extension stacks on the existing end date, it is not recomputed from now.
	want := start.AddDate(0, 2, 0)
	if !extended.EndDate.Equal(want) {
		t.Fatalf("expected end date %v, got %v", want, extended.EndDate)
	}

	var reloadedUser models.User
	if errFind := conn.First(&reloadedUser, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if !reloadedUser.IsActive {
		t.Fatalf("expected user reactivated after payment extension")
	}
}

func TestExtendForPayment_RequiresCompletedPayment(t *testing.T) {
	conn := openTestDB(t)
	payment := &models.Payment{Status: models.PaymentStatusPending}
	if _, errExtend := ExtendForPayment(context.Background(), conn, payment, time.Now().UTC()); !errors.Is(errExtend, apperrors.ErrInvalidPaymentState) {
		t.Fatalf("expected invalid payment state, got %v", errExtend)
	}
	if _, errExtend := ExtendForPayment(context.Background(), conn, nil, time.Now().UTC()); !errors.Is(errExtend, apperrors.ErrInvalidPaymentState) {
		t.Fatalf("expected invalid payment state for nil payment, got %v", errExtend)
	}
}

func TestExtendForPayment_SkipsUsersWhenCompanySuspended(t *testing.T) {
	conn := openTestDB(t)
	company := seedCompany(t, conn, "acme")
	plan := seedPlan(t, conn, "team", models.BillingCycleMonthly, "10.00", nil)
	user := seedUser(t, conn, company.ID, "alice", false)

	sub, errCreate := Create(context.Background(), conn, company.ID, plan.ID, time.Now().UTC())
	if errCreate != nil {
		t.Fatalf("create subscription: %v", errCreate)
	}
	if errSuspend := SuspendCompany(context.Background(), conn, company.ID); errSuspend != nil {
		t.Fatalf("suspend company: %v", errSuspend)
	}

	payment := models.Payment{
		SubscriptionID: sub.ID,
		Amount:         decimal.RequireFromString("10.00"),
		Method:         models.PaymentMethodCash,
		Status:         models.PaymentStatusCompleted,
		PaymentDate:    time.Now().UTC(),
	}
	if errPayment := conn.Create(&payment).Error; errPayment != nil {
		t.Fatalf("create payment: %v", errPayment)
	}

	if _, errExtend := ExtendForPayment(context.Background(), conn, &payment, time.Now().UTC()); errExtend != nil {
		t.Fatalf("extend: %v", errExtend)
	}

	var reloadedUser models.User
	if errFind := conn.First(&reloadedUser, user.ID).Error; errFind != nil {
		t.Fatalf("reload user: %v", errFind)
	}
	if reloadedUser.IsActive {
		t.Fatalf("expected user to stay inactive while company is suspended")
	}
}

func TestIsActive(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	active := &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: now.AddDate(0, 0, 1)}
	if !IsActive(active, now) {
		t.Fatalf("expected active")
	}

	lapsed := &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: now.AddDate(0, 0, -1)}
	if IsActive(lapsed, now) {
		t.Fatalf("expected lapsed subscription to be inactive despite stored status")
	}

	suspended := &models.Subscription{Status: models.SubscriptionStatusSuspended, EndDate: now.AddDate(0, 0, 1)}
	if IsActive(suspended, now) {
		t.Fatalf("expected suspended subscription to be inactive")
	}
	if IsActive(nil, now) {
		t.Fatalf("expected nil subscription to be inactive")
	}
}

func TestIsExpiringSoon(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	inWindow := &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: now.AddDate(0, 0, 3)}
	if !IsExpiringSoon(inWindow, now, 7) {
		t.Fatalf("expected subscription ending in 3 days to be expiring soon")
	}

	outOfWindow := &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: now.AddDate(0, 0, 10)}
	if IsExpiringSoon(outOfWindow, now, 7) {
		t.Fatalf("expected subscription ending in 10 days to be outside the window")
	}
	if !IsExpiringSoon(outOfWindow, now, 14) {
		t.Fatalf("expected wider window to include 10 days out")
	}

	past := &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: now.AddDate(0, 0, -1)}
	if IsExpiringSoon(past, now, 7) {
		t.Fatalf("expected already-ended subscription to be excluded")
	}

	suspended := &models.Subscription{Status: models.SubscriptionStatusSuspended, EndDate: now.AddDate(0, 0, 3)}
	if IsExpiringSoon(suspended, now, 7) {
		t.Fatalf("expected non-active subscription to be excluded")
	}

	// Non-positive windows fall back to the 7-day default.
	if !IsExpiringSoon(inWindow, now, 0) {
		t.Fatalf("expected default window to apply")
	}
}
