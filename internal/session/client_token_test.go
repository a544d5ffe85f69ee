package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/checkout-sdk/internal/domain"
)

// makeClientToken forges an unsigned client token JWT from raw claims.
// Signature verification is a server concern; the client only decodes.
func makeClientToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString([]byte("sig"))
}

// TestDecodeClientToken_Valid tests a full checkout token
func TestDecodeClientToken_Valid(t *testing.T) {
	raw := makeClientToken(t, map[string]any{
		"intent":      "CHECKOUT",
		"env":         "SANDBOX",
		"accessToken": "acc_123",
		"coreUrl":     "https://api.example.com",
		"pciUrl":      "https://pci.example.com",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	tok, err := DecodeClientToken(raw)
	require.NoError(t, err)
	assert.Equal(t, IntentCheckout, tok.Intent)
	assert.Equal(t, "SANDBOX", tok.Env)
	assert.Equal(t, "acc_123", tok.AccessToken)
	assert.Equal(t, "https://api.example.com", tok.CoreURL)
	assert.Equal(t, "https://pci.example.com", tok.PCIURL)
	assert.Equal(t, raw, tok.Raw)
	assert.False(t, tok.Expired())
}

// TestDecodeClientToken_RequiredActionClaims tests redirect/status routing
func TestDecodeClientToken_RequiredActionClaims(t *testing.T) {
	raw := makeClientToken(t, map[string]any{
		"intent":      "PROCESSOR_3DS",
		"redirectUrl": "https://acs.example.com/challenge",
		"statusUrl":   "https://api.example.com/status/abc",
	})

	tok, err := DecodeClientToken(raw)
	require.NoError(t, err)
	assert.Equal(t, IntentProcessor3DS, tok.Intent)
	assert.Equal(t, "https://acs.example.com/challenge", tok.RedirectURL)
	assert.Equal(t, "https://api.example.com/status/abc", tok.StatusURL)
}

// TestDecodeClientToken_ThreeDSVersions tests the protocol version claim
func TestDecodeClientToken_ThreeDSVersions(t *testing.T) {
	raw := makeClientToken(t, map[string]any{
		"intent":                           "3DS_AUTHENTICATION",
		"supportedThreeDsProtocolVersions": []string{"2.1.0", "2.2.0"},
	})

	tok, err := DecodeClientToken(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.1.0", "2.2.0"}, tok.ThreeDSProtocolVersions)
}

// TestDecodeClientToken_FailsClosed tests every rejection path
func TestDecodeClientToken_FailsClosed(t *testing.T) {
	// Empty.
	_, err := DecodeClientToken("")
	assert.True(t, domain.IsCheckoutError(err, domain.ErrorCodeInvalidClientToken))

	// Not a JWT at all.
	_, err = DecodeClientToken("definitely-not-a-jwt")
	assert.True(t, domain.IsCheckoutError(err, domain.ErrorCodeInvalidClientToken))

	// Decodable but missing the intent claim.
	_, err = DecodeClientToken(makeClientToken(t, map[string]any{"env": "SANDBOX"}))
	assert.True(t, domain.IsCheckoutError(err, domain.ErrorCodeInvalidClientToken))

	// Expired.
	_, err = DecodeClientToken(makeClientToken(t, map[string]any{
		"intent": "CHECKOUT",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	}))
	assert.True(t, domain.IsCheckoutError(err, domain.ErrorCodeInvalidClientToken))
}

// TestDecodeClientToken_NoExpiry tests that tokens without exp never expire
// client side
func TestDecodeClientToken_NoExpiry(t *testing.T) {
	tok, err := DecodeClientToken(makeClientToken(t, map[string]any{"intent": "CHECKOUT"}))
	require.NoError(t, err)
	assert.False(t, tok.Expired())
}

// TestIsRedirectionIntent tests the suffix rule
func TestIsRedirectionIntent(t *testing.T) {
	cases := []struct {
		intent string
		want   bool
	}{
		{"XENDIT_RETAIL_OUTLETS_REDIRECTION", true},
		{"ADYEN_IDEAL_REDIRECTION", true},
		{"_REDIRECTION", false},
		{"CHECKOUT", false},
		{"3DS_AUTHENTICATION", false},
	}

	for _, tc := range cases {
		tok := &ClientToken{Intent: tc.intent}
		assert.Equal(t, tc.want, tok.IsRedirectionIntent(), tc.intent)
	}
}
