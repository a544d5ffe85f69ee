// Package validation implements per-field input rules for checkout forms:
// character filtering, display formatting, de-formatting, and card network
// detection.
package validation

import (
	"strings"

	"github.com/meridianpay/checkout-sdk/internal/domain"
)

const (
	digits         = "0123456789"
	cardNumberMax  = 19
	expiryDateMax  = 4 // MMYY without the slash
	cvvMax         = 5
	postalCodeMax  = 10
	phoneNumberMax = 15
	otpLength      = 6
)

// Validate runs the field-specific predicate for an element type against a
// de-formatted value. For CVV the detected card network tightens the length
// rule; an unknown network falls back to the generic 3-5 digit rule.
func Validate(t domain.InputElementType, value string, network domain.CardNetwork) bool {
	switch t {
	case domain.InputElementCardNumber:
		return domain.IsValidCardNumber(value)
	case domain.InputElementExpiryDate:
		return domain.ValidateExpiryDate(Format(t, value)) == nil
	case domain.InputElementCVV:
		return domain.IsValidCVV(value, network)
	case domain.InputElementCardholderName:
		return domain.IsValidCardholderName(value)
	case domain.InputElementOTP:
		return domain.IsValidOTP(value)
	case domain.InputElementPostalCode:
		return domain.IsValidPostalCode(value)
	case domain.InputElementPhoneNumber:
		return domain.IsValidPhoneNumber(value)
	case domain.InputElementRetailer:
		return strings.TrimSpace(value) != ""
	default:
		return false
	}
}

// Format applies the element's lossy display transform: card numbers are
// grouped in fours with spaces, expiry dates split MM/YY with a slash.
// Other element types pass through unchanged. Card numbers with a detected
// network format at the network's own boundaries via FormatCardNumber.
func Format(t domain.InputElementType, value string) string {
	switch t {
	case domain.InputElementCardNumber:
		return groupEvery(value, 4, " ")
	case domain.InputElementExpiryDate:
		return groupEvery(value, 2, "/")
	default:
		return value
	}
}

// FormatCardNumber groups a de-formatted card number at the network's digit
// boundaries (AMEX 4-6-5, Diners 4-6-4...). Networks without metadata fall
// back to grouping in fours.
func FormatCardNumber(value string, network domain.CardNetwork) string {
	v, ok := network.Validation()
	if !ok || len(v.Gaps) == 0 {
		return groupEvery(value, 4, " ")
	}
	return groupAt(value, v.Gaps, " ")
}

// ClearFormatting strips the delimiters Format inserts, restoring the raw
// value used for validation and submission.
func ClearFormatting(t domain.InputElementType, value string) string {
	switch t {
	case domain.InputElementCardNumber:
		return strings.ReplaceAll(value, " ", "")
	case domain.InputElementExpiryDate:
		return strings.ReplaceAll(value, "/", "")
	default:
		return value
	}
}

// DetectNetwork resolves the card network for a card-number element. Only
// meaningful for InputElementCardNumber; every other type detects nothing.
func DetectNetwork(t domain.InputElementType, value string) domain.CardNetwork {
	if t != domain.InputElementCardNumber {
		return domain.CardNetworkUnknown
	}
	return domain.DetectCardNetwork(ClearFormatting(t, value))
}

// MaxAllowedLength returns the de-formatted length cap for an element type,
// or ok=false for unbounded types.
func MaxAllowedLength(t domain.InputElementType) (int, bool) {
	switch t {
	case domain.InputElementCardNumber:
		return cardNumberMax, true
	case domain.InputElementExpiryDate:
		return expiryDateMax, true
	case domain.InputElementCVV:
		return cvvMax, true
	case domain.InputElementOTP:
		return otpLength, true
	case domain.InputElementPostalCode:
		return postalCodeMax, true
	case domain.InputElementPhoneNumber:
		return phoneNumberMax, true
	default:
		return 0, false
	}
}

// AllowedCharacters returns the set of characters an element accepts, or
// ok=false when the type imposes no character restriction.
func AllowedCharacters(t domain.InputElementType) (string, bool) {
	switch t {
	case domain.InputElementCardNumber, domain.InputElementExpiryDate,
		domain.InputElementCVV, domain.InputElementOTP:
		return digits, true
	case domain.InputElementPhoneNumber:
		return digits + "+", true
	default:
		return "", false
	}
}

func groupAt(value string, gaps []int, delimiter string) string {
	var b strings.Builder
	next := 0
	for i, r := range value {
		if next < len(gaps) && i == gaps[next] {
			b.WriteString(delimiter)
			next++
		}
		b.WriteRune(r)
	}
	return b.String()
}

func groupEvery(value string, n int, delimiter string) string {
	if len(value) <= n {
		return value
	}
	var b strings.Builder
	for i, r := range value {
		if i > 0 && i%n == 0 {
			b.WriteString(delimiter)
		}
		b.WriteRune(r)
	}
	return b.String()
}
