// Package tokenization builds backend-ready tokenization requests from raw
// payment data. One builder per payment method family; each accepts only its
// own raw data subtype and accumulates field errors instead of
// short-circuiting.
package tokenization

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/meridianpay/checkout-sdk/internal/domain"
	"github.com/meridianpay/checkout-sdk/internal/validation"
)

// structValidator checks the assembled request payload (tag-level rules such
// as numeric-only PANs and E.164 phone numbers) as a final guard after the
// field predicates have run.
var structValidator = validator.New()

// Builder maps validated raw data plus a resolved payment method
// configuration into a tokenization request.
type Builder interface {
	Family() domain.PaymentMethodFamily
	Build(raw domain.RawPaymentData, config domain.PaymentMethodConfig) (*domain.TokenizationRequest, error)
}

// ForFamily returns the builder for a payment method family.
func ForFamily(family domain.PaymentMethodFamily) (Builder, error) {
	switch family {
	case domain.FamilyCard:
		return CardBuilder{}, nil
	case domain.FamilyPhone:
		return PhoneBuilder{}, nil
	case domain.FamilyRetailer:
		return RetailerBuilder{}, nil
	default:
		return nil, domain.NewCheckoutError(domain.ErrorCodeUnsupportedPaymentMethod,
			fmt.Sprintf("no builder for payment method family %q", family))
	}
}

func typeMismatch(expected domain.PaymentMethodFamily, got domain.RawPaymentData) error {
	return domain.NewCheckoutError(domain.ErrorCodeInternalError,
		fmt.Sprintf("builder for family %q received %q raw data", expected, got.Family()))
}

func missingConfigID(config domain.PaymentMethodConfig) error {
	return domain.NewCheckoutError(domain.ErrorCodeMisconfiguredPaymentMethod,
		fmt.Sprintf("payment method %q has no configuration id", config.Type))
}

// CardBuilder builds card-family tokenization requests.
type CardBuilder struct{}

func (CardBuilder) Family() domain.PaymentMethodFamily { return domain.FamilyCard }

// Build validates every card field independently, accumulating errors, then
// emits a request carrying the de-formatted PAN and a month/year expiry
// split with a 4-digit year.
func (CardBuilder) Build(raw domain.RawPaymentData, config domain.PaymentMethodConfig) (*domain.TokenizationRequest, error) {
	card, ok := raw.(domain.CardData)
	if !ok {
		return nil, typeMismatch(domain.FamilyCard, raw)
	}
	if config.ConfigID == "" {
		return nil, missingConfigID(config)
	}

	number := validation.ClearFormatting(domain.InputElementCardNumber, card.CardNumber)
	network := domain.DetectCardNetwork(number)

	var verr domain.ValidationError
	if card.CardNumber == "" {
		verr.FieldErrors = append(verr.FieldErrors, domain.FieldError{Field: "cardNumber", Message: "card number cannot be blank"})
	} else if !domain.IsValidCardNumber(card.CardNumber) {
		verr.FieldErrors = append(verr.FieldErrors, domain.FieldError{Field: "cardNumber", Message: "card number is not valid"})
	}
	if err := domain.ValidateExpiryDate(card.ExpiryDate); err != nil {
		verr.FieldErrors = append(verr.FieldErrors, domain.FieldError{Field: "expiryDate", Message: err.Error()})
	}
	if card.CVV == "" {
		verr.FieldErrors = append(verr.FieldErrors, domain.FieldError{Field: "cvv", Message: "cvv cannot be blank"})
	} else if !domain.IsValidCVV(card.CVV, network) {
		verr.FieldErrors = append(verr.FieldErrors, domain.FieldError{Field: "cvv", Message: "cvv is not valid"})
	}
	holderRequired := config.Requires(domain.InputElementCardholderName)
	if holderRequired && strings.TrimSpace(card.CardholderName) == "" {
		verr.FieldErrors = append(verr.FieldErrors, domain.FieldError{Field: "cardholderName", Message: "cardholder name cannot be blank"})
	} else if card.CardholderName != "" && !domain.IsValidCardholderName(card.CardholderName) {
		verr.FieldErrors = append(verr.FieldErrors, domain.FieldError{Field: "cardholderName", Message: "cardholder name is not valid"})
	}
	if len(verr.FieldErrors) > 0 {
		return nil, &verr
	}

	month, year, err := splitExpiry(card.ExpiryDate)
	if err != nil {
		return nil, &domain.ValidationError{FieldErrors: []domain.FieldError{{Field: "expiryDate", Message: err.Error()}}}
	}

	req := &domain.TokenizationRequest{
		PaymentInstrument: domain.PaymentInstrument{
			Number:                number,
			CVV:                   card.CVV,
			ExpirationMonth:       month,
			ExpirationYear:        year,
			CardholderName:        strings.TrimSpace(card.CardholderName),
			PaymentMethodConfigID: config.ConfigID,
			PaymentMethodType:     config.Type,
		},
	}
	if err := structValidator.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "built request failed struct validation", err)
	}
	return req, nil
}

func splitExpiry(expiry string) (month, year string, err error) {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expiry %q is not MM/YY or MM/YYYY", expiry)
	}
	normalized, ok := domain.NormalizeExpiryYear(parts[1])
	if !ok {
		return "", "", fmt.Errorf("expiry year %q is not 2 or 4 digits", parts[1])
	}
	return parts[0], normalized, nil
}

// PhoneBuilder builds phone-family tokenization requests (off-session wallet
// charges keyed by the customer's phone number).
type PhoneBuilder struct{}

func (PhoneBuilder) Family() domain.PaymentMethodFamily { return domain.FamilyPhone }

func (PhoneBuilder) Build(raw domain.RawPaymentData, config domain.PaymentMethodConfig) (*domain.TokenizationRequest, error) {
	phone, ok := raw.(domain.PhoneNumberData)
	if !ok {
		return nil, typeMismatch(domain.FamilyPhone, raw)
	}
	if config.ConfigID == "" {
		return nil, missingConfigID(config)
	}
	if !domain.IsValidPhoneNumber(phone.PhoneNumber) {
		return nil, &domain.ValidationError{FieldErrors: []domain.FieldError{
			{Field: "phoneNumber", Message: "phone number is not a valid E.164 number"},
		}}
	}

	req := &domain.TokenizationRequest{
		PaymentInstrument: domain.PaymentInstrument{
			PhoneNumber:           phone.PhoneNumber,
			PaymentMethodConfigID: config.ConfigID,
			PaymentMethodType:     config.Type,
			SessionInfo:           map[string]string{"platform": "WEB"},
		},
	}
	if err := structValidator.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "built request failed struct validation", err)
	}
	return req, nil
}

// RetailerBuilder builds retailer-family (voucher / retail outlet)
// tokenization requests.
type RetailerBuilder struct{}

func (RetailerBuilder) Family() domain.PaymentMethodFamily { return domain.FamilyRetailer }

func (RetailerBuilder) Build(raw domain.RawPaymentData, config domain.PaymentMethodConfig) (*domain.TokenizationRequest, error) {
	retailer, ok := raw.(domain.RetailerData)
	if !ok {
		return nil, typeMismatch(domain.FamilyRetailer, raw)
	}
	if config.ConfigID == "" {
		return nil, missingConfigID(config)
	}
	if strings.TrimSpace(retailer.ID) == "" {
		return nil, &domain.ValidationError{FieldErrors: []domain.FieldError{
			{Field: "retailer", Message: "retailer selection cannot be blank"},
		}}
	}

	req := &domain.TokenizationRequest{
		PaymentInstrument: domain.PaymentInstrument{
			RetailerOutlet:        retailer.ID,
			PaymentMethodConfigID: config.ConfigID,
			PaymentMethodType:     config.Type,
		},
	}
	if err := structValidator.Struct(req); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "built request failed struct validation", err)
	}
	return req, nil
}
