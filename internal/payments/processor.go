package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JiBrAN123456/Company-subscription-service/internal/apperrors"
	"github.com/JiBrAN123456/Company-subscription-service/internal/lifecycle"
	"github.com/JiBrAN123456/Company-subscription-service/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Processor executes payments through the configured gateway.
type Processor struct {
	gateway  Gateway
	currency string
}

// NewProcessor constructs a Processor.
func NewProcessor(gateway Gateway, currency string) *Processor {
	if currency == "" {
		currency = "usd"
	}
	return &Processor{gateway: gateway, currency: currency}
}

// Validate checks a payment amount against its subscription: positive and no
// greater than the snapshotted cost. Runs before any gateway call.
func Validate(amount decimal.Decimal, sub *models.Subscription) error {
	fields := map[string]string{}
	if !amount.IsPositive() {
		fields["amount"] = "amount must be greater than zero"
	} else if sub != nil && amount.GreaterThan(sub.CostAtSignup) {
		fields["amount"] = fmt.Sprintf("amount exceeds subscription cost of %s", sub.CostAtSignup.StringFixed(2))
	}
	if len(fields) > 0 {
		return apperrors.ValidationError(fields)
	}
	return nil
}

// Create records a pending payment against a subscription.
func Create(ctx context.Context, conn *gorm.DB, subscriptionID uint64, amount decimal.Decimal, method models.PaymentMethod, now time.Time) (*models.Payment, error) {
	switch method {
	case models.PaymentMethodCreditCard, models.PaymentMethodBankTransfer,
		models.PaymentMethodCheck, models.PaymentMethodCash, models.PaymentMethodOther:
	default:
		return nil, apperrors.ValidationError(map[string]string{"method": "unknown payment method"})
	}

	var sub models.Subscription
	if errFind := conn.WithContext(ctx).First(&sub, subscriptionID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("subscription")
		}
		return nil, apperrors.Internal(errFind)
	}

	if errValidate := Validate(amount, &sub); errValidate != nil {
		return nil, errValidate
	}

	payment := models.Payment{
		SubscriptionID: subscriptionID,
		Amount:         amount,
		Method:         method,
		Status:         models.PaymentStatusPending,
		PaymentDate:    now,
	}
	if errCreate := conn.WithContext(ctx).Create(&payment).Error; errCreate != nil {
		return nil, apperrors.Internal(errCreate)
	}
	return &payment, nil
}

// Process executes a pending payment.
//
// Credit card payments go through the gateway; a processor rejection marks
// the payment failed with the reason in Notes and re-raises the error. Other
// methods are recorded as completed without verification. A completed payment
// extends its subscription by one billing cycle in place. Processing is
// single-attempt; retry policy belongs to the caller, with a fresh payment
// record, since failed payments never return to pending.
func (p *Processor) Process(ctx context.Context, conn *gorm.DB, paymentID uint64, now time.Time) (*models.Payment, error) {
	var payment models.Payment
	if errFind := conn.WithContext(ctx).Preload("Subscription").
		First(&payment, paymentID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("payment")
		}
		return nil, apperrors.Internal(errFind)
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, apperrors.StateConflict(
			fmt.Sprintf("payment is %s, only pending payments can be processed", payment.Status))
	}

	if errValidate := Validate(payment.Amount, &payment.Subscription); errValidate != nil {
		return nil, errValidate
	}

	if payment.Method == models.PaymentMethodCreditCard {
		if p.gateway == nil {
			return nil, apperrors.Internal(errors.New("payments: no gateway configured"))
		}

		amountMinor := payment.Amount.Mul(decimal.NewFromInt(100)).IntPart()
		description := fmt.Sprintf("subscription %d payment %d", payment.SubscriptionID, payment.ID)

		txnID, errCharge := p.gateway.Charge(ctx, amountMinor, p.currency, description)
		if errCharge != nil {
			note := "processing error"
			var gwErr *GatewayError
			if errors.As(errCharge, &gwErr) {
				note = "declined: " + gwErr.Error()
			}
			if errFail := p.markFailed(ctx, conn, &payment, note); errFail != nil {
				return nil, errFail
			}
			return &payment, apperrors.PaymentProcessing(errCharge)
		}
		payment.Notes = "gateway transaction " + txnID
	} else {
		// Recorded, not verified: no processing side effect for offline methods.
		payment.Notes = fmt.Sprintf("%s payment recorded without gateway verification", payment.Method)
	}

	payment.Status = models.PaymentStatusCompleted
	payment.PaymentDate = now
	if errSave := conn.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", payment.ID).
		Updates(map[string]any{
			"status":       payment.Status,
			"notes":        payment.Notes,
			"payment_date": payment.PaymentDate,
		}).Error; errSave != nil {
		return nil, apperrors.Internal(errSave)
	}

	if _, errExtend := lifecycle.ExtendForPayment(ctx, conn, &payment, now); errExtend != nil {
		return &payment, errExtend
	}

	log.WithFields(log.Fields{
		"payment":      payment.ID,
		"subscription": payment.SubscriptionID,
		"method":       payment.Method,
	}).Info("payment completed")
	return &payment, nil
}

// markFailed records a failure note; failed payments stay failed.
func (p *Processor) markFailed(ctx context.Context, conn *gorm.DB, payment *models.Payment, note string) error {
	payment.Status = models.PaymentStatusFailed
	payment.Notes = note
	if errSave := conn.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", payment.ID).
		Updates(map[string]any{"status": payment.Status, "notes": payment.Notes}).Error; errSave != nil {
		return apperrors.Internal(errSave)
	}
	return nil
}

// Refund transitions a completed payment to refunded. The inverse accounting
// effect on the subscription is not implemented.
func Refund(ctx context.Context, conn *gorm.DB, paymentID uint64) (*models.Payment, error) {
	var payment models.Payment
	if errFind := conn.WithContext(ctx).First(&payment, paymentID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("payment")
		}
		return nil, apperrors.Internal(errFind)
	}

	if payment.Status != models.PaymentStatusCompleted {
		return nil, apperrors.StateConflict(
			fmt.Sprintf("payment is %s, only completed payments can be refunded", payment.Status))
	}

	payment.Status = models.PaymentStatusRefunded
	if errSave := conn.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", payment.ID).
		Update("status", payment.Status).Error; errSave != nil {
		return nil, apperrors.Internal(errSave)
	}
	return &payment, nil
}
