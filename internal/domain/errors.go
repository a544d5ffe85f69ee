package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Session errors (SESSION_*)
	ErrorCodeInvalidClientToken         ErrorCode = "SESSION_INVALID_CLIENT_TOKEN"
	ErrorCodeMisconfiguredPaymentMethod ErrorCode = "SESSION_MISCONFIGURED_PAYMENT_METHODS"
	ErrorCodeUnsupportedPaymentMethod   ErrorCode = "SESSION_UNSUPPORTED_PAYMENT_METHOD"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Payment errors (PAYMENT_*)
	ErrorCodeMerchantAborted    ErrorCode = "PAYMENT_MERCHANT_ABORTED"
	ErrorCodePaymentFailed      ErrorCode = "PAYMENT_FAILED"
	ErrorCodeInvalidResumeToken ErrorCode = "PAYMENT_INVALID_RESUME_TOKEN"
	ErrorCodeSubmitInProgress   ErrorCode = "PAYMENT_SUBMIT_IN_PROGRESS"

	// Authentication errors (AUTH_*)
	ErrorCodeFailed3DS ErrorCode = "AUTH_3DS_FAILED"

	// Flow control errors (FLOW_*)
	ErrorCodeCancelled ErrorCode = "FLOW_CANCELLED"

	// Transport errors (TRANSPORT_*)
	ErrorCodeTransportError ErrorCode = "TRANSPORT_ERROR"

	// Internal errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// PaymentFailureReason is the backend's failure classification echoed on a
// failed payment response.
type PaymentFailureReason string

const (
	FailureReasonFailed              PaymentFailureReason = "payment-failed"
	FailureReasonCancelledByCustomer PaymentFailureReason = "cancelled-by-customer"
)

// KnownFailureReason reports whether the backend reason maps to a known code.
func KnownFailureReason(reason string) (PaymentFailureReason, bool) {
	switch PaymentFailureReason(reason) {
	case FailureReasonFailed, FailureReasonCancelledByCustomer:
		return PaymentFailureReason(reason), true
	}
	return "", false
}

// CheckoutError is a structured error with a machine-readable code, a
// diagnostics ID for support correlation, and optional context.
type CheckoutError struct {
	Err           error
	Details       map[string]any
	Code          ErrorCode
	Message       string
	DiagnosticsID string
}

// Error implements the error interface
func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy of the error with the detail field added. The
// receiver is never mutated, so the shared sentinel instances stay clean.
func (e *CheckoutError) WithDetail(key string, value any) *CheckoutError {
	clone := *e
	clone.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// NewCheckoutError creates a new error with a fresh diagnostics ID.
func NewCheckoutError(code ErrorCode, message string) *CheckoutError {
	return &CheckoutError{
		Code:          code,
		Message:       message,
		DiagnosticsID: uuid.NewString(),
		Details:       make(map[string]any),
	}
}

// WrapError wraps an existing error with a checkout error code
func WrapError(code ErrorCode, message string, err error) *CheckoutError {
	return &CheckoutError{
		Code:          code,
		Message:       message,
		DiagnosticsID: uuid.NewString(),
		Details:       make(map[string]any),
		Err:           err,
	}
}

// IsCheckoutError checks if an error is a CheckoutError with the given code
func IsCheckoutError(err error, code ErrorCode) bool {
	var checkoutErr *CheckoutError
	if errors.As(err, &checkoutErr) {
		return checkoutErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, or "" for foreign errors.
func GetErrorCode(err error) ErrorCode {
	var checkoutErr *CheckoutError
	if errors.As(err, &checkoutErr) {
		return checkoutErr.Code
	}
	return ""
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates field-level errors from one validation pass.
// All fields are checked before the aggregate is surfaced; nothing
// short-circuits on the first failure.
type ValidationError struct {
	FieldErrors []FieldError
}

func (e *ValidationError) Error() string {
	agg := &multierror.Error{}
	for _, fe := range e.FieldErrors {
		agg = multierror.Append(agg, fe)
	}
	return fmt.Sprintf("%s: %v", ErrorCodeValidationFailed, agg.ErrorOrNil())
}

// HasField reports whether the aggregate contains an error for the named field.
func (e *ValidationError) HasField(field string) bool {
	for _, fe := range e.FieldErrors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// AsCheckoutError converts the aggregate into the shared error shape.
func (e *ValidationError) AsCheckoutError() *CheckoutError {
	ce := WrapError(ErrorCodeValidationFailed, "input validation failed", e)
	fields := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		fields = append(fields, fe.Field)
	}
	return ce.WithDetail("fields", fields)
}

// Sentinel instances for the most common failures. Shared across the
// process; WithDetail copies, so attaching context never mutates them.
var (
	ErrInvalidClientToken = NewCheckoutError(ErrorCodeInvalidClientToken, "client token is missing, undecodable, or expired")
	ErrInvalidResumeToken = NewCheckoutError(ErrorCodeInvalidResumeToken, "required action intent is not recognized")
	ErrCancelled          = NewCheckoutError(ErrorCodeCancelled, "flow cancelled by the user")
	ErrSubmitInProgress   = NewCheckoutError(ErrorCodeSubmitInProgress, "a submit cycle is already in flight")
	ErrMissing3DSProvider = NewCheckoutError(ErrorCodeFailed3DS, "3DS required but no challenge provider is configured")
)
