package ports

import (
	"context"

	"github.com/meridianpay/checkout-sdk/internal/domain"
	"github.com/meridianpay/checkout-sdk/internal/session"
)

// TokenizationClient submits a built tokenization request to the backend and
// exchanges it for an opaque payment method token.
type TokenizationClient interface {
	Tokenize(ctx context.Context, clientToken *session.ClientToken, req domain.TokenizationRequest) (*domain.PaymentMethodToken, error)
}

// PaymentService creates a payment from a payment method token and resumes
// it after a required action completes.
type PaymentService interface {
	CreatePayment(ctx context.Context, clientToken *session.ClientToken, paymentMethodToken string) (*domain.PaymentResponse, error)
	ResumePayment(ctx context.Context, clientToken *session.ClientToken, paymentID, resumeToken string) (*domain.PaymentResponse, error)
}

// ThreeDSResult is a completed 3DS challenge: the (possibly exchanged) token
// and the resume token produced by the authentication.
type ThreeDSResult struct {
	Token       *domain.PaymentMethodToken
	ResumeToken string
}

// ThreeDSProvider runs a 3DS challenge against a tokenized payment method.
// The capability is optional at build time; the orchestrator treats a nil
// provider as a configuration error, never a silent skip.
type ThreeDSProvider interface {
	Perform(ctx context.Context, token *domain.PaymentMethodToken, protocolVersions []string) (*ThreeDSResult, error)
}

// ConfigurationService refreshes the session's payment method configuration.
// Called after every client-token replacement.
type ConfigurationService interface {
	FetchConfig(ctx context.Context, clientToken *session.ClientToken) ([]domain.PaymentMethodConfig, error)
}

// PollStatus is the per-response state of an asynchronous side channel.
type PollStatus string

const (
	PollStatusPending  PollStatus = "PENDING"
	PollStatusComplete PollStatus = "COMPLETE"
)

// PollResponse is one status-URL response.
type PollResponse struct {
	ID     string     `json:"id"`
	Status PollStatus `json:"status"`
	Source string     `json:"source,omitempty"`
}

// StatusClient fetches the state of an asynchronous required action.
type StatusClient interface {
	PollStatus(ctx context.Context, clientToken *session.ClientToken, url string) (*PollResponse, error)
}

// RedirectPresenter shows a redirect URL to the user (an embedded web view
// on mobile hosts, a browser tab elsewhere). Dismiss tears the surface down;
// a user-initiated close is reported through the cancel callback registered
// at presentation time.
type RedirectPresenter interface {
	Present(ctx context.Context, redirectURL string, onUserCancel func()) error
	Dismiss()
}
