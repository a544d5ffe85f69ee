package domain

import "strings"

// PaymentMethodFamily groups payment methods by the raw data they collect.
type PaymentMethodFamily string

const (
	FamilyCard     PaymentMethodFamily = "CARD"
	FamilyPhone    PaymentMethodFamily = "PHONE"
	FamilyRetailer PaymentMethodFamily = "RETAILER"
)

// RawPaymentData is user-entered payment data prior to tokenization. Values
// are mutable while the user is typing; the orchestrator snapshots them at
// submit time.
type RawPaymentData interface {
	Family() PaymentMethodFamily
	IsValid() bool
}

// CardData holds raw card-entry fields. CardNumber and ExpiryDate may carry
// display formatting (spaces, slash); builders strip it before submission.
type CardData struct {
	CardNumber     string
	ExpiryDate     string // MM/YY or MM/YYYY
	CVV            string
	CardholderName string // optional unless the session config requires it
}

func (d CardData) Family() PaymentMethodFamily { return FamilyCard }

// IsValid reports whether every populated field passes local validation.
func (d CardData) IsValid() bool {
	network := DetectCardNetwork(stripNonDigits(d.CardNumber))
	if !IsValidCardNumber(d.CardNumber) {
		return false
	}
	if err := ValidateExpiryDate(d.ExpiryDate); err != nil {
		return false
	}
	if !IsValidCVV(d.CVV, network) {
		return false
	}
	if d.CardholderName != "" && !IsValidCardholderName(d.CardholderName) {
		return false
	}
	return true
}

// DetectedNetwork returns the card network for the current number entry.
func (d CardData) DetectedNetwork() CardNetwork {
	return DetectCardNetwork(stripNonDigits(d.CardNumber))
}

// PhoneNumberData holds the raw data for phone-based payment methods.
type PhoneNumberData struct {
	PhoneNumber string // E.164, leading +
}

func (d PhoneNumberData) Family() PaymentMethodFamily { return FamilyPhone }

func (d PhoneNumberData) IsValid() bool {
	return IsValidPhoneNumber(d.PhoneNumber)
}

// RetailerData holds the selected retail outlet for voucher payment methods.
type RetailerData struct {
	ID string
}

func (d RetailerData) Family() PaymentMethodFamily { return FamilyRetailer }

func (d RetailerData) IsValid() bool {
	return strings.TrimSpace(d.ID) != ""
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
