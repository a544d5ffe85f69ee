package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/checkout-sdk/internal/domain"
	"github.com/meridianpay/checkout-sdk/internal/session"
	"github.com/meridianpay/checkout-sdk/test/mocks"
)

func testClientToken() *session.ClientToken {
	return &session.ClientToken{
		Intent:      session.IntentCheckout,
		AccessToken: "acc_test",
		CoreURL:     "https://api.example.com",
		PCIURL:      "https://pci.example.com",
	}
}

func jsonResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// TestTokenize tests routing, auth header, and payload decode
func TestTokenize(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"token":"pmt_123","last4Digits":"4242","paymentInstrumentType":"PAYMENT_CARD"}`), nil
	})
	c := NewClient(httpClient, mocks.NewMockLogger())

	token, err := c.Tokenize(context.Background(), testClientToken(), domain.TokenizationRequest{
		PaymentInstrument: domain.PaymentInstrument{Number: "4242424242424242"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pmt_123", token.Token)
	assert.Equal(t, "4242", token.Last4)

	require.Len(t, httpClient.Calls, 1)
	req := httpClient.Calls[0]
	// Instrument data goes to the PCI host, never the core API.
	assert.Equal(t, "https://pci.example.com/payment-instruments", req.URL.String())
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "acc_test", req.Header.Get("X-Client-Token"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

// TestTokenize_EmptyToken tests rejection of a degenerate response
func TestTokenize_EmptyToken(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{}`), nil
	})
	c := NewClient(httpClient, mocks.NewMockLogger())

	_, err := c.Tokenize(context.Background(), testClientToken(), domain.TokenizationRequest{})
	assert.True(t, domain.IsCheckoutError(err, domain.ErrorCodeInternalError))
}

// TestCreatePayment tests the payment creation round trip
func TestCreatePayment(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		var body createPaymentRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "pmt_123", body.PaymentMethodToken)
		return jsonResponse(200, `{"id":"pay_1","status":"PENDING","requiredAction":{"name":"3DS_AUTHENTICATION","clientToken":"tok_next"}}`), nil
	})
	c := NewClient(httpClient, mocks.NewMockLogger())

	resp, err := c.CreatePayment(context.Background(), testClientToken(), "pmt_123")
	require.NoError(t, err)
	assert.Equal(t, "pay_1", resp.ID)
	assert.Equal(t, domain.PaymentStatusPending, resp.Status)
	require.NotNil(t, resp.RequiredAction)
	assert.Equal(t, "tok_next", resp.RequiredAction.ClientToken)

	assert.Equal(t, "https://api.example.com/payments", httpClient.Calls[0].URL.String())
}

// TestResumePayment tests the resume endpoint and payload
func TestResumePayment(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		var body resumePaymentRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "resume_1", body.ResumeToken)
		return jsonResponse(200, `{"id":"pay_1","status":"SUCCESS"}`), nil
	})
	c := NewClient(httpClient, mocks.NewMockLogger())

	resp, err := c.ResumePayment(context.Background(), testClientToken(), "pay_1", "resume_1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusSuccess, resp.Status)
	assert.Equal(t, "https://api.example.com/payments/pay_1/resume", httpClient.Calls[0].URL.String())
}

// TestPollStatus tests the status GET
func TestPollStatus(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		return jsonResponse(200, `{"id":"resume_9","status":"COMPLETE"}`), nil
	})
	c := NewClient(httpClient, mocks.NewMockLogger())

	resp, err := c.PollStatus(context.Background(), testClientToken(), "https://api.example.com/status/9")
	require.NoError(t, err)
	assert.Equal(t, "resume_9", resp.ID)
	assert.Equal(t, "https://api.example.com/status/9", httpClient.Calls[0].URL.String())
}

// TestErrorMapping tests HTTP status to error code translation
func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		body       string
		wantCode   domain.ErrorCode
	}{
		{"unauthorized", 401, `{}`, domain.ErrorCodeInvalidClientToken},
		{"forbidden", 403, `{}`, domain.ErrorCodeInvalidClientToken},
		{"server error", 500, `{}`, domain.ErrorCodeTransportError},
		{"bad gateway", 502, `{}`, domain.ErrorCodeTransportError},
		{"client error", 422, `{"error":{"errorId":"card-declined","description":"declined"}}`, domain.ErrorCodePaymentFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.statusCode, tc.body), nil
			})
			c := NewClient(httpClient, mocks.NewMockLogger())

			_, err := c.CreatePayment(context.Background(), testClientToken(), "pmt_123")
			assert.True(t, domain.IsCheckoutError(err, tc.wantCode), "got %v", err)
		})
	}
}

// TestErrorMapping_KeepsBackendEnvelope tests errorId/diagnostics carry-over
func TestErrorMapping_KeepsBackendEnvelope(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(422, `{"error":{"errorId":"card-declined","description":"declined","diagnosticsId":"diag_7"}}`), nil
	})
	c := NewClient(httpClient, mocks.NewMockLogger())

	_, err := c.CreatePayment(context.Background(), testClientToken(), "pmt_123")
	var ce *domain.CheckoutError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "card-declined", ce.Details["errorId"])
	assert.Equal(t, "diag_7", ce.DiagnosticsID)
	assert.Equal(t, 422, ce.Details["statusCode"])
}

// TestTransportFailure tests connection-level errors
func TestTransportFailure(t *testing.T) {
	httpClient := mocks.NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	c := NewClient(httpClient, mocks.NewMockLogger())

	_, err := c.CreatePayment(context.Background(), testClientToken(), "pmt_123")
	assert.True(t, domain.IsCheckoutError(err, domain.ErrorCodeTransportError))
}

// TestFetchConfig tests configuration decode and family mapping
func TestFetchConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/client-sdk/configuration", r.URL.Path)
		assert.Equal(t, "acc_test", r.Header.Get("X-Client-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"paymentMethods":[
			{"id":"cfg_card","type":"PAYMENT_CARD","options":{"cardholderNameRequired":true}},
			{"id":"cfg_ovo","type":"XENDIT_OVO"},
			{"id":"cfg_ro","type":"XENDIT_RETAIL_OUTLETS"},
			{"id":"cfg_x","type":"SOME_FUTURE_METHOD"}
		]}`))
	}))
	defer srv.Close()

	tok := testClientToken()
	tok.CoreURL = srv.URL

	c := NewClientWithDefaults(mocks.NewMockLogger())
	configs, err := c.FetchConfig(context.Background(), tok)
	require.NoError(t, err)

	// The unknown method is skipped, not fatal.
	require.Len(t, configs, 3)

	byType := map[string]domain.PaymentMethodConfig{}
	for _, cfg := range configs {
		byType[cfg.Type] = cfg
	}

	card := byType["PAYMENT_CARD"]
	assert.Equal(t, "cfg_card", card.ConfigID)
	assert.Equal(t, domain.FamilyCard, card.Family)
	assert.True(t, card.Requires(domain.InputElementCardholderName))

	assert.Equal(t, domain.FamilyPhone, byType["XENDIT_OVO"].Family)
	assert.Equal(t, domain.FamilyRetailer, byType["XENDIT_RETAIL_OUTLETS"].Family)
}

// TestFetchConfig_RetriesServerErrors tests the retrying client
func TestFetchConfig_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"paymentMethods":[]}`))
	}))
	defer srv.Close()

	tok := testClientToken()
	tok.CoreURL = srv.URL

	c := NewClientWithDefaults(mocks.NewMockLogger())
	configs, err := c.FetchConfig(context.Background(), tok)
	require.NoError(t, err)
	assert.Empty(t, configs)
	assert.Equal(t, 2, attempts)
}
