package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/meridianpay/checkout-sdk/internal/domain"
	"github.com/meridianpay/checkout-sdk/internal/domain/ports"
	"github.com/meridianpay/checkout-sdk/internal/session"
	"github.com/meridianpay/checkout-sdk/pkg/httpclient"
)

const clientTokenHeader = "X-Client-Token"

// Client is the REST adapter for the checkout backend. It implements
// ports.TokenizationClient, ports.PaymentService, ports.StatusClient, and
// ports.ConfigurationService. Payment mutations go over a plain tuned client
// so nothing is ever retried implicitly; the read-only configuration fetch
// uses a retrying client.
type Client struct {
	httpClient ports.HTTPClient
	statusHTTP ports.HTTPClient
	configHTTP *retryablehttp.Client
	logger     ports.Logger
}

// NewClient creates an API client over the given HTTP client. All requests,
// status polls included, ride the given client.
func NewClient(httpClient ports.HTTPClient, logger ports.Logger) *Client {
	configHTTP := retryablehttp.NewClient()
	configHTTP.RetryMax = 3
	configHTTP.RetryWaitMin = 500 * time.Millisecond
	configHTTP.RetryWaitMax = 4 * time.Second
	configHTTP.Logger = nil
	configHTTP.HTTPClient = httpclient.New(httpclient.APIConfig(), 30*time.Second)

	return &Client{
		httpClient: httpClient,
		statusHTTP: httpClient,
		configHTTP: configHTTP,
		logger:     logger,
	}
}

// NewClientWithDefaults creates an API client with the default tuned
// transports: the long-lived API profile for payment calls, the fast-header
// polling profile for status polls.
func NewClientWithDefaults(logger ports.Logger) *Client {
	c := NewClient(httpclient.New(httpclient.APIConfig(), 30*time.Second), logger)
	c.statusHTTP = httpclient.New(httpclient.PollingConfig(), 15*time.Second)
	return c
}

// Tokenize exchanges a built payment instrument for an opaque token. PANs
// only ever travel to the PCI host.
func (c *Client) Tokenize(ctx context.Context, clientToken *session.ClientToken, req domain.TokenizationRequest) (*domain.PaymentMethodToken, error) {
	url := clientToken.PCIURL + "/payment-instruments"

	var token domain.PaymentMethodToken
	if err := c.do(ctx, http.MethodPost, url, clientToken.AccessToken, req, &token); err != nil {
		return nil, err
	}
	if token.Token == "" {
		return nil, domain.NewCheckoutError(domain.ErrorCodeInternalError, "tokenization response carries no token")
	}
	return &token, nil
}

type createPaymentRequest struct {
	PaymentMethodToken string `json:"paymentMethodToken"`
}

type resumePaymentRequest struct {
	ResumeToken string `json:"resumeToken"`
}

// CreatePayment creates a payment from a payment method token.
func (c *Client) CreatePayment(ctx context.Context, clientToken *session.ClientToken, paymentMethodToken string) (*domain.PaymentResponse, error) {
	url := clientToken.CoreURL + "/payments"

	var resp domain.PaymentResponse
	if err := c.do(ctx, http.MethodPost, url, clientToken.AccessToken, createPaymentRequest{PaymentMethodToken: paymentMethodToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResumePayment resumes a payment after its required action completed.
func (c *Client) ResumePayment(ctx context.Context, clientToken *session.ClientToken, paymentID, resumeToken string) (*domain.PaymentResponse, error) {
	url := fmt.Sprintf("%s/payments/%s/resume", clientToken.CoreURL, paymentID)

	var resp domain.PaymentResponse
	if err := c.do(ctx, http.MethodPost, url, clientToken.AccessToken, resumePaymentRequest{ResumeToken: resumeToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PollStatus fetches one status snapshot from a required action's status
// URL. Retry cadence is owned by the caller, so failures surface directly.
func (c *Client) PollStatus(ctx context.Context, clientToken *session.ClientToken, url string) (*ports.PollResponse, error) {
	var resp ports.PollResponse
	if err := c.doVia(ctx, c.statusHTTP, http.MethodGet, url, clientToken.AccessToken, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type configurationResponse struct {
	PaymentMethods []paymentMethodEntry `json:"paymentMethods"`
}

type paymentMethodEntry struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Options struct {
		CardholderNameRequired bool `json:"cardholderNameRequired"`
	} `json:"options"`
}

var familyByType = map[string]domain.PaymentMethodFamily{
	"PAYMENT_CARD":          domain.FamilyCard,
	"XENDIT_OVO":            domain.FamilyPhone,
	"XENDIT_RETAIL_OUTLETS": domain.FamilyRetailer,
}

// FetchConfig fetches the session's payment method configuration. The call
// is an idempotent GET, so it rides the retrying client.
func (c *Client) FetchConfig(ctx context.Context, clientToken *session.ClientToken) ([]domain.PaymentMethodConfig, error) {
	url := clientToken.CoreURL + "/client-sdk/configuration"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "building configuration request failed", err)
	}
	req.Header.Set(clientTokenHeader, clientToken.AccessToken)
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.configHTTP.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeTransportError, "configuration fetch failed", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeTransportError, "reading configuration response failed", err)
	}
	if httpResp.StatusCode >= 400 {
		return nil, c.statusError(httpResp.StatusCode, body)
	}

	var cfgResp configurationResponse
	if err := json.Unmarshal(body, &cfgResp); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInternalError, "decoding configuration response failed", err)
	}
	return c.toConfigs(cfgResp), nil
}

func (c *Client) toConfigs(resp configurationResponse) []domain.PaymentMethodConfig {
	configs := make([]domain.PaymentMethodConfig, 0, len(resp.PaymentMethods))
	for _, pm := range resp.PaymentMethods {
		family, ok := familyByType[pm.Type]
		if !ok {
			c.logger.Warn("skipping unsupported payment method",
				ports.String("type", pm.Type))
			continue
		}

		cfg := domain.PaymentMethodConfig{
			Type:     pm.Type,
			ConfigID: pm.ID,
			Family:   family,
		}
		switch family {
		case domain.FamilyCard:
			cfg.RequiredInputElements = []domain.InputElementType{
				domain.InputElementCardNumber,
				domain.InputElementExpiryDate,
				domain.InputElementCVV,
			}
			if pm.Options.CardholderNameRequired {
				cfg.RequiredInputElements = append(cfg.RequiredInputElements, domain.InputElementCardholderName)
			}
		case domain.FamilyPhone:
			cfg.RequiredInputElements = []domain.InputElementType{domain.InputElementPhoneNumber}
		case domain.FamilyRetailer:
			cfg.RequiredInputElements = []domain.InputElementType{domain.InputElementRetailer}
		}
		configs = append(configs, cfg)
	}
	return configs
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error struct {
		ErrorID       string `json:"errorId"`
		Description   string `json:"description"`
		DiagnosticsID string `json:"diagnosticsId"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, url, accessToken string, request, response any) error {
	return c.doVia(ctx, c.httpClient, method, url, accessToken, request, response)
}

func (c *Client) doVia(ctx context.Context, client ports.HTTPClient, method, url, accessToken string, request, response any) error {
	var body io.Reader
	if request != nil {
		payload, err := json.Marshal(request)
		if err != nil {
			return domain.WrapError(domain.ErrorCodeInternalError, "marshaling request failed", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeInternalError, "building request failed", err)
	}
	httpReq.Header.Set(clientTokenHeader, accessToken)
	httpReq.Header.Set("Accept", "application/json")
	if request != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("calling checkout backend",
		ports.String("method", method),
		ports.String("url", url))

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeTransportError, "request to checkout backend failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeTransportError, "reading response body failed", err)
	}
	if httpResp.StatusCode >= 400 {
		return c.statusError(httpResp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, response); err != nil {
		return domain.WrapError(domain.ErrorCodeInternalError, "decoding response failed", err)
	}
	return nil
}

// statusError maps an HTTP failure onto the shared error taxonomy, keeping
// the backend's own error envelope when one is present.
func (c *Client) statusError(statusCode int, body []byte) error {
	var envelope errorBody
	_ = json.Unmarshal(body, &envelope)

	var ce *domain.CheckoutError
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		ce = domain.NewCheckoutError(domain.ErrorCodeInvalidClientToken, "backend rejected the client token")
	case statusCode >= 500:
		ce = domain.NewCheckoutError(domain.ErrorCodeTransportError, "checkout backend error")
	default:
		ce = domain.NewCheckoutError(domain.ErrorCodePaymentFailed, "checkout backend rejected the request")
	}

	ce = ce.WithDetail("statusCode", statusCode)
	if envelope.Error.ErrorID != "" {
		ce = ce.WithDetail("errorId", envelope.Error.ErrorID).
			WithDetail("description", envelope.Error.Description)
	}
	if envelope.Error.DiagnosticsID != "" {
		ce.DiagnosticsID = envelope.Error.DiagnosticsID
	}
	return ce
}
