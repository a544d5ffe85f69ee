package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridianpay/checkout-sdk/internal/domain"
)

// Intent values a decoded client token may carry. Session-level intents are
// issued at session creation; required-action intents arrive mid-flow on
// replacement tokens.
const (
	IntentCheckout          = "CHECKOUT"
	IntentVault             = "VAULT"
	Intent3DSAuthentication = "3DS_AUTHENTICATION"
	IntentProcessor3DS      = "PROCESSOR_3DS"
	redirectionIntentSuffix = "_REDIRECTION"
)

// claims is the unverified JWT payload of a client token. Signature
// verification happens server side; the client only reads routing data out
// of the body, so ParseUnverified is deliberate.
type claims struct {
	Intent                           string   `json:"intent"`
	Env                              string   `json:"env"`
	AccessToken                      string   `json:"accessToken"`
	CoreURL                          string   `json:"coreUrl"`
	PCIURL                           string   `json:"pciUrl"`
	RedirectURL                      string   `json:"redirectUrl"`
	StatusURL                        string   `json:"statusUrl"`
	SupportedThreeDsProtocolVersions []string `json:"supportedThreeDsProtocolVersions"`
	Exp                              int64    `json:"exp"`
	jwt.RegisteredClaims
}

// ClientToken is a decoded, session-scoped backend credential. Exactly one
// is current at a time; required actions replace it mid-flow.
type ClientToken struct {
	Raw                     string
	Intent                  string
	Env                     string
	AccessToken             string
	CoreURL                 string
	PCIURL                  string
	RedirectURL             string
	StatusURL               string
	ThreeDSProtocolVersions []string
	ExpiresAt               time.Time
}

// DecodeClientToken parses a raw client token JWT without signature
// verification and validates that it is non-expired and carries a usable
// intent. Fails closed with ErrInvalidClientToken on any defect.
func DecodeClientToken(raw string) (*ClientToken, error) {
	if raw == "" {
		return nil, domain.ErrInvalidClientToken
	}

	parser := jwt.NewParser()
	var c claims
	if _, _, err := parser.ParseUnverified(raw, &c); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInvalidClientToken, "client token is not a decodable JWT", err)
	}
	if c.Intent == "" {
		return nil, domain.NewCheckoutError(domain.ErrorCodeInvalidClientToken, "client token carries no intent")
	}

	token := &ClientToken{
		Raw:                     raw,
		Intent:                  c.Intent,
		Env:                     c.Env,
		AccessToken:             c.AccessToken,
		CoreURL:                 c.CoreURL,
		PCIURL:                  c.PCIURL,
		RedirectURL:             c.RedirectURL,
		StatusURL:               c.StatusURL,
		ThreeDSProtocolVersions: c.SupportedThreeDsProtocolVersions,
	}
	if c.Exp > 0 {
		token.ExpiresAt = time.Unix(c.Exp, 0)
	}
	if token.Expired() {
		return nil, domain.NewCheckoutError(domain.ErrorCodeInvalidClientToken, "client token has expired")
	}
	return token, nil
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without an exp claim never expire client side.
func (t *ClientToken) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// IsRedirectionIntent reports whether the intent requests a generic
// redirect-and-poll required action (e.g. "XENDIT_RETAIL_OUTLETS_REDIRECTION").
func (t *ClientToken) IsRedirectionIntent() bool {
	return len(t.Intent) > len(redirectionIntentSuffix) &&
		t.Intent[len(t.Intent)-len(redirectionIntentSuffix):] == redirectionIntentSuffix
}
