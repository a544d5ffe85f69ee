package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	errExpiryBlank   = errors.New("expiry date cannot be blank")
	errExpiryFormat  = errors.New("valid expiry date formats are MM/YY or MM/YYYY")
	errExpiryInPast  = errors.New("expiry date is in the past")
	phoneNumberRegex = regexp.MustCompile(`^\+\d{9,14}$`)
	otpRegex         = regexp.MustCompile(`^\d{6}$`)
	postalCodeRegex  = regexp.MustCompile(`^[a-zA-Z0-9 '~.\-]+$`)
)

// IsNumeric reports whether s is non-empty and contains only ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsValidLuhn runs the Luhn checksum over a digit string.
func IsValidLuhn(number string) bool {
	sum := 0
	parity := len(number) % 2
	for i, r := range number {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		if i%2 == parity {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}
	return sum%10 == 0
}

// IsValidCardNumber validates a PAN: formatting stripped, Luhn-correct,
// 13-19 digits, and, when the number's detected network constrains lengths,
// one of the network's valid lengths.
func IsValidCardNumber(cardNumber string) bool {
	cleared := stripNonDigits(cardNumber)
	if len(cleared) < 13 || len(cleared) > 19 {
		return false
	}
	network := DetectCardNetwork(cleared)
	if v, ok := network.Validation(); ok {
		lengthOK := false
		for _, l := range v.Lengths {
			if len(cleared) == l {
				lengthOK = true
				break
			}
		}
		if !lengthOK {
			return false
		}
	}
	return IsValidLuhn(cleared)
}

// ValidateExpiryDate checks an MM/YY or MM/YYYY expiry string. A card is
// accepted through the last day of its expiry month.
func ValidateExpiryDate(expiry string) error {
	if expiry == "" {
		return errExpiryBlank
	}
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return errExpiryFormat
	}
	month, year := parts[0], parts[1]
	if len(month) != 2 || !IsNumeric(month) {
		return errExpiryFormat
	}
	m, _ := strconv.Atoi(month)
	if m < 1 || m > 12 {
		return errExpiryFormat
	}
	normalizedYear, ok := NormalizeExpiryYear(year)
	if !ok {
		return errExpiryFormat
	}
	y, _ := strconv.Atoi(normalizedYear)
	endOfMonth := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !time.Now().UTC().Before(endOfMonth) {
		return errExpiryInPast
	}
	return nil
}

// NormalizeExpiryYear converts a 2-digit year to 4 digits using the current
// century. 4-digit years pass through. Anything else is rejected.
func NormalizeExpiryYear(year string) (string, bool) {
	if !IsNumeric(year) {
		return "", false
	}
	switch len(year) {
	case 4:
		return year, true
	case 2:
		century := strconv.Itoa(time.Now().Year())[:2]
		return century + year, true
	default:
		return "", false
	}
}

// IsValidCVV validates a security code. Networks with a known code length
// require an exact match; otherwise any 3-5 digit value is accepted.
func IsValidCVV(cvv string, network CardNetwork) bool {
	if !IsNumeric(cvv) {
		return false
	}
	if length, ok := network.CVVLength(); ok {
		return len(cvv) == length
	}
	return len(cvv) >= 3 && len(cvv) <= 5
}

// IsValidCardholderName accepts non-empty values containing no digits.
func IsValidCardholderName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return !strings.ContainsAny(name, "0123456789")
}

// IsValidPhoneNumber validates an E.164 phone number with leading +.
func IsValidPhoneNumber(phone string) bool {
	return phoneNumberRegex.MatchString(phone)
}

// IsValidOTP validates a 6-digit one-time password.
func IsValidOTP(otp string) bool {
	return otpRegex.MatchString(otp)
}

// IsValidPostalCode accepts alphanumerics plus a small punctuation set.
func IsValidPostalCode(postalCode string) bool {
	return postalCode != "" && postalCodeRegex.MatchString(postalCode)
}
