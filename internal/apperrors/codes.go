package apperrors

// Error codes grouped by concern.
const (
	// CodeValidationFailed marks malformed or out-of-range input.
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// CodeNotFound marks an unknown entity reference.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeStateConflict marks an invalid lifecycle transition or duplicate.
	CodeStateConflict ErrorCode = "STATE_CONFLICT"
	// CodeSeatLimitExceeded marks a rejected user admission.
	CodeSeatLimitExceeded ErrorCode = "SEAT_LIMIT_EXCEEDED"
	// CodePaymentProcessing wraps gateway failures.
	CodePaymentProcessing ErrorCode = "PAYMENT_PROCESSING"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// CodeInternal marks unexpected server-side failures.
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)
