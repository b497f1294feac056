package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment.
type PaymentStatus string

// PaymentStatus constants define payment lifecycle states.
const (
	// PaymentStatusPending marks a payment awaiting processing.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted marks a successfully settled payment.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed marks a payment rejected by processing.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded marks a completed payment that was reversed.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod represents how a payment was tendered.
type PaymentMethod string

// PaymentMethod constants define accepted payment methods.
const (
	// PaymentMethodCreditCard is processed through the card gateway.
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	// PaymentMethodBankTransfer is recorded without gateway verification.
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	// PaymentMethodCheck is recorded without gateway verification.
	PaymentMethodCheck PaymentMethod = "check"
	// PaymentMethodCash is recorded without gateway verification.
	PaymentMethodCash PaymentMethod = "cash"
	// PaymentMethodOther is recorded without gateway verification.
	PaymentMethodOther PaymentMethod = "other"
)

// Payment records a payment attempt against a subscription.
//
// Notes carries free-text processor detail: a gateway transaction reference
// on success, or the failure reason. Failed payments are never mutated back
// to pending; callers retry with a new payment record.
type Payment struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SubscriptionID uint64       `gorm:"not null;index"`              // Owning subscription ID.
	Subscription   Subscription `gorm:"foreignKey:SubscriptionID"`   // Owning subscription record.

	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null"`             // Payment amount.
	Method PaymentMethod   `gorm:"type:varchar(20);not null"`               // Payment method.
	Status PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"` // Current lifecycle state.

	PaymentDate time.Time `gorm:"not null"` // When the payment was tendered.
	Notes       string    `gorm:"type:text"` // Processor references or failure reasons.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
