package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridianpay/checkout-sdk/internal/domain"
)

// TestFormat_CardNumber tests grouping in fours
func TestFormat_CardNumber(t *testing.T) {
	assert.Equal(t, "4242 4242 4242 4242", Format(domain.InputElementCardNumber, "4242424242424242"))
	assert.Equal(t, "4242", Format(domain.InputElementCardNumber, "4242"))
	assert.Equal(t, "4242 4", Format(domain.InputElementCardNumber, "42424"))
	assert.Equal(t, "", Format(domain.InputElementCardNumber, ""))
}

// TestFormatCardNumber_NetworkGaps tests grouping at network boundaries
func TestFormatCardNumber_NetworkGaps(t *testing.T) {
	assert.Equal(t, "3782 822463 10005", FormatCardNumber("378282246310005", domain.CardNetworkAmex))
	assert.Equal(t, "3622 720627 1667", FormatCardNumber("36227206271667", domain.CardNetworkDiners))
	assert.Equal(t, "4242 4242 4242 4242", FormatCardNumber("4242424242424242", domain.CardNetworkVisa))
	assert.Equal(t, "5555 555555 554444", FormatCardNumber("5555555555554444", domain.CardNetworkMastercard))

	// Partial entry only groups up to the typed length
	assert.Equal(t, "3782 8224", FormatCardNumber("37828224", domain.CardNetworkAmex))
	assert.Equal(t, "3782", FormatCardNumber("3782", domain.CardNetworkAmex))

	// Unknown network falls back to fours
	assert.Equal(t, "9999 9999 9999", FormatCardNumber("999999999999", domain.CardNetworkUnknown))
}

// TestFormat_ExpiryDate tests the MM/YY slash
func TestFormat_ExpiryDate(t *testing.T) {
	assert.Equal(t, "12/30", Format(domain.InputElementExpiryDate, "1230"))
	assert.Equal(t, "12", Format(domain.InputElementExpiryDate, "12"))
	assert.Equal(t, "12/3", Format(domain.InputElementExpiryDate, "123"))
}

// TestFormat_PassThrough tests that unformatted types are untouched
func TestFormat_PassThrough(t *testing.T) {
	assert.Equal(t, "123", Format(domain.InputElementCVV, "123"))
	assert.Equal(t, "+628123456789", Format(domain.InputElementPhoneNumber, "+628123456789"))
}

// TestClearFormatting_RoundTrip tests clear(format(x)) == x for raw values
func TestClearFormatting_RoundTrip(t *testing.T) {
	cardValues := []string{"", "4", "4242", "42424242", "4242424242424242", "4242424242424242424"}
	for _, v := range cardValues {
		formatted := Format(domain.InputElementCardNumber, v)
		assert.Equal(t, v, ClearFormatting(domain.InputElementCardNumber, formatted))
	}

	expiryValues := []string{"", "1", "12", "123", "1230"}
	for _, v := range expiryValues {
		formatted := Format(domain.InputElementExpiryDate, v)
		assert.Equal(t, v, ClearFormatting(domain.InputElementExpiryDate, formatted))
	}
}

// TestValidate tests the per-element predicates through the dispatcher
func TestValidate(t *testing.T) {
	assert.True(t, Validate(domain.InputElementCardNumber, "4242424242424242", domain.CardNetworkUnknown))
	assert.False(t, Validate(domain.InputElementCardNumber, "4242", domain.CardNetworkUnknown))

	assert.True(t, Validate(domain.InputElementExpiryDate, "1299", domain.CardNetworkUnknown))
	assert.False(t, Validate(domain.InputElementExpiryDate, "1320", domain.CardNetworkUnknown))

	assert.True(t, Validate(domain.InputElementCVV, "123", domain.CardNetworkUnknown))
	assert.False(t, Validate(domain.InputElementCVV, "123", domain.CardNetworkAmex))
	assert.True(t, Validate(domain.InputElementCVV, "1234", domain.CardNetworkAmex))

	assert.True(t, Validate(domain.InputElementCardholderName, "Ada Lovelace", domain.CardNetworkUnknown))
	assert.True(t, Validate(domain.InputElementOTP, "123456", domain.CardNetworkUnknown))
	assert.True(t, Validate(domain.InputElementPhoneNumber, "+628123456789", domain.CardNetworkUnknown))
	assert.True(t, Validate(domain.InputElementRetailer, "indomaret", domain.CardNetworkUnknown))
	assert.False(t, Validate(domain.InputElementRetailer, "  ", domain.CardNetworkUnknown))

	assert.False(t, Validate(domain.InputElementType("BOGUS"), "x", domain.CardNetworkUnknown))
}

// TestDetectNetwork tests detection is scoped to the card-number element
func TestDetectNetwork(t *testing.T) {
	assert.Equal(t, domain.CardNetworkVisa, DetectNetwork(domain.InputElementCardNumber, "4242 4242"))
	assert.Equal(t, domain.CardNetworkUnknown, DetectNetwork(domain.InputElementCVV, "4242"))
}

// TestMaxAllowedLength tests the per-element caps
func TestMaxAllowedLength(t *testing.T) {
	n, ok := MaxAllowedLength(domain.InputElementCardNumber)
	assert.True(t, ok)
	assert.Equal(t, 19, n)

	n, ok = MaxAllowedLength(domain.InputElementExpiryDate)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	n, ok = MaxAllowedLength(domain.InputElementCVV)
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	_, ok = MaxAllowedLength(domain.InputElementCardholderName)
	assert.False(t, ok)
}

// TestAllowedCharacters tests the character sets
func TestAllowedCharacters(t *testing.T) {
	set, ok := AllowedCharacters(domain.InputElementCardNumber)
	assert.True(t, ok)
	assert.Equal(t, "0123456789", set)

	set, ok = AllowedCharacters(domain.InputElementPhoneNumber)
	assert.True(t, ok)
	assert.Contains(t, set, "+")

	_, ok = AllowedCharacters(domain.InputElementCardholderName)
	assert.False(t, ok)
}
