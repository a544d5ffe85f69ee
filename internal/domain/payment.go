package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InputElementType names a checkout form field.
type InputElementType string

const (
	InputElementCardNumber     InputElementType = "CARD_NUMBER"
	InputElementExpiryDate     InputElementType = "EXPIRY_DATE"
	InputElementCVV            InputElementType = "CVV"
	InputElementCardholderName InputElementType = "CARDHOLDER_NAME"
	InputElementOTP            InputElementType = "OTP"
	InputElementPostalCode     InputElementType = "POSTAL_CODE"
	InputElementPhoneNumber    InputElementType = "PHONE_NUMBER"
	InputElementRetailer       InputElementType = "RETAILER"
)

// PaymentMethodConfig is a single payment method's session configuration,
// loaded from the backend once per session. Read-only to the core.
type PaymentMethodConfig struct {
	Type                  string
	ConfigID              string
	Family                PaymentMethodFamily
	RequiredInputElements []InputElementType
}

// Requires reports whether the config demands the given input element.
func (c PaymentMethodConfig) Requires(t InputElementType) bool {
	for _, el := range c.RequiredInputElements {
		if el == t {
			return true
		}
	}
	return false
}

// PaymentInstrument is the provider-specific instrument block of a
// tokenization request. Exactly one group of fields is populated.
type PaymentInstrument struct {
	// Card family
	Number          string `json:"number,omitempty" validate:"omitempty,numeric"`
	CVV             string `json:"cvv,omitempty" validate:"omitempty,numeric"`
	ExpirationMonth string `json:"expirationMonth,omitempty"`
	ExpirationYear  string `json:"expirationYear,omitempty"`
	CardholderName  string `json:"cardholderName,omitempty"`

	// Phone family
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,e164"`

	// Retailer family
	RetailerOutlet string `json:"retailOutlet,omitempty"`

	// Common
	PaymentMethodConfigID string            `json:"paymentMethodConfigId,omitempty"`
	PaymentMethodType     string            `json:"paymentMethodType,omitempty"`
	SessionInfo           map[string]string `json:"sessionInfo,omitempty"`
}

// TokenizationRequest is a backend-ready tokenization payload. Built fresh
// per submit attempt and consumed exactly once.
type TokenizationRequest struct {
	PaymentInstrument PaymentInstrument `json:"paymentInstrument" validate:"required"`
}

// PaymentMethodToken is the opaque backend-issued token plus echoed
// instrument metadata.
type PaymentMethodToken struct {
	Token             string      `json:"token"`
	AnalyticsID       string      `json:"analyticsId,omitempty"`
	TokenType         string      `json:"tokenType,omitempty"`
	PaymentMethodType string      `json:"paymentInstrumentType,omitempty"`
	Network           CardNetwork `json:"network,omitempty"`
	Last4             string      `json:"last4Digits,omitempty"`
	ExpirationMonth   string      `json:"expirationMonth,omitempty"`
	ExpirationYear    string      `json:"expirationYear,omitempty"`
}

// PaymentStatus is the backend's payment state.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// RequiredAction instructs the client to perform an additional step before
// the payment can proceed. The embedded client token replaces the session's
// active token.
type RequiredAction struct {
	Name        string `json:"name"`
	ClientToken string `json:"clientToken"`
	Description string `json:"description,omitempty"`
}

// PaymentResponse is the create/resume payment backend response.
type PaymentResponse struct {
	ID                   string          `json:"id"`
	OrderID              string          `json:"orderId,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode,omitempty"`
	Status               PaymentStatus   `json:"status"`
	RequiredAction       *RequiredAction `json:"requiredAction,omitempty"`
	PaymentFailureReason string          `json:"paymentFailureReason,omitempty"`
	Date                 time.Time       `json:"date,omitempty"`
}

// CheckoutData is the terminal payment result delivered to the merchant
// completion callback. Immutable once constructed.
type CheckoutData struct {
	PaymentID     string
	OrderID       string
	Amount        decimal.Decimal
	CurrencyCode  string
	Status        PaymentStatus
	FailureReason PaymentFailureReason
}

// NewCheckoutData snapshots a payment response into merchant-facing data.
func NewCheckoutData(resp PaymentResponse) CheckoutData {
	reason, _ := KnownFailureReason(resp.PaymentFailureReason)
	return CheckoutData{
		PaymentID:     resp.ID,
		OrderID:       resp.OrderID,
		Amount:        resp.Amount,
		CurrencyCode:  resp.CurrencyCode,
		Status:        resp.Status,
		FailureReason: reason,
	}
}
