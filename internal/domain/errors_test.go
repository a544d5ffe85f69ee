package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewCheckoutError tests code, message, and diagnostics ID assignment
func TestNewCheckoutError(t *testing.T) {
	err := NewCheckoutError(ErrorCodePaymentFailed, "payment failed")

	assert.Equal(t, ErrorCodePaymentFailed, err.Code)
	assert.NotEmpty(t, err.DiagnosticsID)
	assert.Contains(t, err.Error(), "PAYMENT_FAILED")
	assert.Contains(t, err.Error(), "payment failed")
}

// TestWrapError tests unwrapping down to the cause
func TestWrapError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(ErrorCodeTransportError, "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

// TestIsCheckoutError tests code matching through wrapping
func TestIsCheckoutError(t *testing.T) {
	err := NewCheckoutError(ErrorCodeCancelled, "cancelled")

	assert.True(t, IsCheckoutError(err, ErrorCodeCancelled))
	assert.False(t, IsCheckoutError(err, ErrorCodePaymentFailed))
	assert.False(t, IsCheckoutError(errors.New("plain"), ErrorCodeCancelled))
}

// TestGetErrorCode tests code extraction from foreign and typed errors
func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCodeCancelled, GetErrorCode(ErrCancelled))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
}

// TestWithDetail tests detail accumulation
func TestWithDetail(t *testing.T) {
	err := NewCheckoutError(ErrorCodeValidationFailed, "bad input").
		WithDetail("field", "cvv").
		WithDetail("length", 2)

	assert.Equal(t, "cvv", err.Details["field"])
	assert.Equal(t, 2, err.Details["length"])
}

// TestWithDetail_DoesNotMutateReceiver tests that attaching context to a
// shared sentinel leaves the sentinel untouched
func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	detailed := ErrCancelled.WithDetail("paymentId", "pay_9")

	assert.Equal(t, "pay_9", detailed.Details["paymentId"])
	assert.NotContains(t, ErrCancelled.Details, "paymentId")
	assert.NotSame(t, ErrCancelled, detailed)

	// The copy stays the same logical error.
	assert.Equal(t, ErrCancelled.Code, detailed.Code)
	assert.Equal(t, ErrCancelled.DiagnosticsID, detailed.DiagnosticsID)
}

// TestValidationError_Aggregation tests multi-field aggregation
func TestValidationError_Aggregation(t *testing.T) {
	verr := &ValidationError{FieldErrors: []FieldError{
		{Field: "cardNumber", Message: "card number is not valid"},
		{Field: "cvv", Message: "cvv cannot be blank"},
	}}

	assert.True(t, verr.HasField("cardNumber"))
	assert.True(t, verr.HasField("cvv"))
	assert.False(t, verr.HasField("expiryDate"))
	assert.Contains(t, verr.Error(), "cardNumber")
	assert.Contains(t, verr.Error(), "cvv")

	ce := verr.AsCheckoutError()
	require.NotNil(t, ce)
	assert.Equal(t, ErrorCodeValidationFailed, ce.Code)
	assert.ElementsMatch(t, []string{"cardNumber", "cvv"}, ce.Details["fields"])
}

// TestKnownFailureReason tests backend reason mapping
func TestKnownFailureReason(t *testing.T) {
	reason, ok := KnownFailureReason("payment-failed")
	require.True(t, ok)
	assert.Equal(t, FailureReasonFailed, reason)

	reason, ok = KnownFailureReason("cancelled-by-customer")
	require.True(t, ok)
	assert.Equal(t, FailureReasonCancelledByCustomer, reason)

	_, ok = KnownFailureReason("something-else")
	assert.False(t, ok)
}
