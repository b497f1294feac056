package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure class across the API surface.
type ErrorCode string

// AppError is the application error carried from services to handlers.
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Details  any       `json:"details,omitempty"`
	Err      error     `json:"-"`
	HTTPCode int       `json:"-"`
}

// Error renders the code, message, and any wrapped error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches errors sharing the same code, so sentinel values built by New
// compare equal to wrapped or detailed copies.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Code == appErr.Code && e.Message == appErr.Message
}

// MarshalJSON emits the caller-facing fields only.
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
		Details any       `json:"details,omitempty"`
	}
	return json.Marshal(&alias{Code: e.Code, Message: e.Message, Details: e.Details})
}

// New constructs an AppError.
func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

// Wrap constructs an AppError around an underlying error.
func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPCode: httpCode}
}

// WithDetails returns a copy carrying field-level detail.
func (e *AppError) WithDetails(details any) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithError returns a copy wrapping an underlying error.
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// Predefined errors shared across components.
var (
	// ErrValidationFailed is the base validation error; attach details per field.
	ErrValidationFailed = New(CodeValidationFailed, "validation failed", http.StatusBadRequest)

	// ErrDuplicateActiveSubscription rejects a second active subscription for a company.
	ErrDuplicateActiveSubscription = New(CodeStateConflict, "company already has an active subscription", http.StatusConflict)
	// ErrInvalidPaymentState rejects extension by a payment that is not completed.
	ErrInvalidPaymentState = New(CodeStateConflict, "payment is not in a completed state", http.StatusConflict)
	// ErrNoActiveSubscription rejects seat admission without an active subscription.
	ErrNoActiveSubscription = New(CodeStateConflict, "company has no active subscription", http.StatusConflict)

	// ErrUnauthorized rejects requests without valid credentials.
	ErrUnauthorized = New(CodeUnauthorized, "authentication required", http.StatusUnauthorized)
)

// ValidationError builds a validation failure with field-level detail.
func ValidationError(details any) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

// NotFound builds a not-found error naming the missing resource.
func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// StateConflict builds a conflict error with a descriptive message.
func StateConflict(message string) *AppError {
	return New(CodeStateConflict, message, http.StatusConflict)
}

// SeatLimitExceeded builds a seat admission failure naming the limit.
func SeatLimitExceeded(limit uint) *AppError {
	return New(CodeSeatLimitExceeded,
		fmt.Sprintf("company has reached the maximum limit of %d active users", limit),
		http.StatusForbidden).WithDetails(map[string]uint{"limit": limit})
}

// PaymentProcessing wraps a gateway failure.
func PaymentProcessing(err error) *AppError {
	return Wrap(err, CodePaymentProcessing, "payment processing failed", http.StatusBadGateway)
}

// Internal wraps an unexpected failure.
func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal server error", http.StatusInternalServerError)
}
