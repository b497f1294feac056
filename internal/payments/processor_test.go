package payments

import (
	"context"
	"errors"
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

// fakeGateway records charges and fails on demand.
type fakeGateway struct {
	charges []int64
	fail    *GatewayError
}

func (g *fakeGateway) Charge(_ context.Context, amountMinor int64, _, _ string) (string, error) {
	if g.fail != nil {
		return "", g.fail
	}
	g.charges = append(g.charges, amountMinor)
	return "txn_123", nil
}

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

func seedSubscription(t *testing.T, conn *gorm.DB, start time.Time) *models.Subscription {
	t.Helper()
	company := models.Company{Name: "acme", Status: models.CompanyStatusActive, NotificationDaysBefore: 7}
	if errCreate := conn.Create(&company).Error; errCreate != nil {
		t.Fatalf("create company: %v", errCreate)
	}
	plan := models.SubscriptionPlan{
		Name:         "team",
		BillingCycle: models.BillingCycleMonthly,
		PricingModel: models.PricingModelFlatFee,
		Cost:         decimal.RequireFromString("49.99"),
		IsActive:     true,
	}
	if errCreate := conn.Create(&plan).Error; errCreate != nil {
		t.Fatalf("create plan: %v", errCreate)
	}
	sub, errSub := lifecycle.Create(context.Background(), conn, company.ID, plan.ID, start)
	if errSub != nil {
		t.Fatalf("create subscription: %v", errSub)
	}
	return sub
}

func TestCreate_RejectsOverAmount(t *testing.T) {
	conn := openTestDB(t)
	sub := seedSubscription(t, conn, time.Now().UTC())

	_, errCreate := Create(context.Background(), conn, sub.ID,
		decimal.RequireFromString("100.00"), models.PaymentMethodCreditCard, time.Now().UTC())
	var appErr *apperrors.AppError
	if !errors.As(errCreate, &appErr) || appErr.Code != apperrors.CodeValidationFailed {
		t.Fatalf("expected validation failure for over-amount, got %v", errCreate)
	}
}

func TestCreate_RejectsNonPositiveAmount(t *testing.T) {
	conn := openTestDB(t)
	sub := seedSubscription(t, conn, time.Now().UTC())

	_, errCreate := Create(context.Background(), conn, sub.ID,
		decimal.Zero, models.PaymentMethodCash, time.Now().UTC())
	var appErr *apperrors.AppError
	if !errors.As(errCreate, &appErr) || appErr.Code != apperrors.CodeValidationFailed {
		t.Fatalf("expected validation failure for zero amount, got %v", errCreate)
	}
}

func TestProcess_CardSuccessExtendsSubscription(t *testing.T) {
	conn := openTestDB(t)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	sub := seedSubscription(t, conn, start)

	payment, errCreate := Create(context.Background(), conn, sub.ID,
		decimal.RequireFromString("49.99"), models.PaymentMethodCreditCard, start)
	if errCreate != nil {
		t.Fatalf("create payment: %v", errCreate)
	}

	gateway := &fakeGateway{}
	processor := NewProcessor(gateway, "usd")
	processed, errProcess := processor.Process(context.Background(), conn, payment.ID, start)
	if errProcess != nil {
		t.Fatalf("process: %v", errProcess)
	}

	if processed.Status != models.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", processed.Status)
	}
	if len(gateway.charges) != 1 || gateway.charges[0] != 4999 {
		t.Fatalf("expected one charge of 4999 minor units, got %v", gateway.charges)
	}

	var reloaded models.Subscription
	if errFind := conn.First(&reloaded, sub.ID).Error; errFind != nil {
		t.Fatalf("reload subscription: %v", errFind)
	}
	want := start.AddDate(0, 2, 0)
	if !reloaded.EndDate.Equal(want) {
		t.Fatalf("expected end date extended to %v, got %v", want, reloaded.EndDate)
	}
}

func TestProcess_DeclineMarksFailed(t *testing.T) {
	conn := openTestDB(t)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	sub := seedSubscription(t, conn, start)

	payment, errCreate := Create(context.Background(), conn, sub.ID,
		decimal.RequireFromString("49.99"), models.PaymentMethodCreditCard, start)
	if errCreate != nil {
		t.Fatalf("create payment: %v", errCreate)
	}

	gateway := &fakeGateway{fail: &GatewayError{Code: "card_declined", Message: "insufficient funds"}}
	processor := NewProcessor(gateway, "usd")
	_, errProcess := processor.Process(context.Background(), conn, payment.ID, start)
	var appErr *apperrors.AppError
	if !errors.As(errProcess, &appErr) || appErr.Code != apperrors.CodePaymentProcessing {
		t.Fatalf("expected payment processing error, got %v", errProcess)
	}

	var reloaded models.Payment
	if errFind := conn.First(&reloaded, payment.ID).Error; errFind != nil {
		t.Fatalf("reload payment: %v", errFind)
	}
	if reloaded.Status != models.PaymentStatusFailed {
		t.Fatalf("expected failed status, got %s", reloaded.Status)
	}
	if reloaded.Notes == "" {
		t.Fatalf("expected failure reason in notes")
	}

	// Subscription end date is untouched after a decline.
	var reloadedSub models.Subscription
	if errFind := conn.First(&reloadedSub, sub.ID).Error; errFind != nil {
		t.Fatalf("reload subscription: %v", errFind)
	}
	if !reloadedSub.EndDate.Equal(start.AddDate(0, 1, 0)) {
		t.Fatalf("expected end date unchanged, got %v", reloadedSub.EndDate)
	}
}

func TestProcess_FailedPaymentCannotBeReprocessed(t *testing.T) {
	conn := openTestDB(t)
	start := time.Now().UTC()
	sub := seedSubscription(t, conn, start)

	payment, errCreate := Create(context.Background(), conn, sub.ID,
		decimal.RequireFromString("10.00"), models.PaymentMethodCreditCard, start)
	if errCreate != nil {
		t.Fatalf("create payment: %v", errCreate)
	}

	processor := NewProcessor(&fakeGateway{fail: &GatewayError{Code: "card_declined", Message: "declined"}}, "usd")
	if _, errProcess := processor.Process(context.Background(), conn, payment.ID, start); errProcess == nil {
		t.Fatalf("expected decline")
	}

	// Second attempt with a working gateway still fails: the record is terminal.
	processor = NewProcessor(&fakeGateway{}, "usd")
	_, errRetry := processor.Process(context.Background(), conn, payment.ID, start)
	var appErr *apperrors.AppError
	if !errors.As(errRetry, &appErr) || appErr.Code != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict on reprocessing, got %v", errRetry)
	}
}

func TestProcess_OfflineMethodSkipsGateway(t *testing.T) {
	conn := openTestDB(t)
	start := time.Now().UTC()
	sub := seedSubscription(t, conn, start)

	payment, errCreate := Create(context.Background(), conn, sub.ID,
		decimal.RequireFromString("10.00"), models.PaymentMethodBankTransfer, start)
	if errCreate != nil {
		t.Fatalf("create payment: %v", errCreate)
	}

	gateway := &fakeGateway{}
	processor := NewProcessor(gateway, "usd")
	processed, errProcess := processor.Process(context.Background(), conn, payment.ID, start)
	if errProcess != nil {
		t.Fatalf("process: %v", errProcess)
	}
	if processed.Status != models.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", processed.Status)
	}
	if len(gateway.charges) != 0 {
		t.Fatalf("expected no gateway charge for offline method")
	}
}

func TestRefund(t *testing.T) {
	conn := openTestDB(t)
	start := time.Now().UTC()
	sub := seedSubscription(t, conn, start)

	payment, errCreate := Create(context.Background(), conn, sub.ID,
		decimal.RequireFromString("10.00"), models.PaymentMethodCash, start)
	if errCreate != nil {
		t.Fatalf("create payment: %v", errCreate)
	}

	// Pending payments cannot be refunded.
	if _, errRefund := Refund(context.Background(), conn, payment.ID); errRefund == nil {
		t.Fatalf("expected refund of pending payment to fail")
	}

	processor := NewProcessor(nil, "usd")
	if _, errProcess := processor.Process(context.Background(), conn, payment.ID, start); errProcess != nil {
		t.Fatalf("process: %v", errProcess)
	}

	refunded, errRefund := Refund(context.Background(), conn, payment.ID)
	if errRefund != nil {
		t.Fatalf("refund: %v", errRefund)
	}
	if refunded.Status != models.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", refunded.Status)
	}
}
