package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meridianpay/checkout-sdk/internal/domain"
	"github.com/meridianpay/checkout-sdk/internal/domain/ports"
	"github.com/meridianpay/checkout-sdk/internal/services/polling"
	"github.com/meridianpay/checkout-sdk/internal/session"
	"github.com/meridianpay/checkout-sdk/internal/tokenization"
	"github.com/meridianpay/checkout-sdk/pkg/observability"
)

// PaymentHandling selects who drives the payment after tokenization: the
// SDK (automatic) or the merchant's own backend (manual).
type PaymentHandling string

const (
	HandlingAutomatic PaymentHandling = "AUTO"
	HandlingManual    PaymentHandling = "MANUAL"
)

// Dependencies are the backend and host-side ports the orchestrator drives.
// Tokenizer, Payments, Configuration, Status, Delegate, and Logger are
// required. ThreeDS and Presenter are optional capabilities; flows that need
// an absent one fail closed instead of skipping the step.
type Dependencies struct {
	Tokenizer     ports.TokenizationClient
	Payments      ports.PaymentService
	Configuration ports.ConfigurationService
	Status        ports.StatusClient
	ThreeDS       ports.ThreeDSProvider
	Presenter     ports.RedirectPresenter
	Delegate      ports.CheckoutDelegate
	Logger        ports.Logger
}

// Options tune a checkout service instance.
type Options struct {
	Handling PaymentHandling
	Polling  polling.Config
}

// Service runs the submit cycle: validate and build the instrument, consult
// the merchant, tokenize, create or hand off the payment, perform required
// actions, resume, and deliver exactly one terminal event per cycle.
type Service struct {
	deps  Dependencies
	opts  Options
	state *session.State

	submitting atomic.Bool

	pollerMu sync.Mutex
	poller   *polling.Poller
}

// NewService wires a checkout service. Returns an error when a required
// dependency is missing.
func NewService(deps Dependencies, opts Options) (*Service, error) {
	switch {
	case deps.Tokenizer == nil:
		return nil, errors.New("checkout: tokenization client is required")
	case deps.Payments == nil:
		return nil, errors.New("checkout: payment service is required")
	case deps.Configuration == nil:
		return nil, errors.New("checkout: configuration service is required")
	case deps.Status == nil:
		return nil, errors.New("checkout: status client is required")
	case deps.Delegate == nil:
		return nil, errors.New("checkout: delegate is required")
	case deps.Logger == nil:
		return nil, errors.New("checkout: logger is required")
	}
	if opts.Handling == "" {
		opts.Handling = HandlingAutomatic
	}
	return &Service{deps: deps, opts: opts, state: session.NewState()}, nil
}

// Start decodes the session client token, fetches the payment method
// configuration under it, and commits both to the session state.
func (s *Service) Start(ctx context.Context, rawClientToken string) error {
	tok, err := s.replaceClientToken(ctx, rawClientToken)
	if err != nil {
		return err
	}
	s.deps.Logger.Info("session started",
		ports.String("intent", tok.Intent),
		ports.String("env", tok.Env),
		ports.Bool("vault", tok.Intent == session.IntentVault),
		ports.Int("payment_methods", len(s.state.Configs())))
	return nil
}

// Configs returns the payment method configurations of the current session.
func (s *Service) Configs() []domain.PaymentMethodConfig {
	return s.state.Configs()
}

// CancelRequiredAction cooperatively cancels an in-flight redirect-and-poll
// required action. The submit cycle terminates with a cancellation error.
func (s *Service) CancelRequiredAction() {
	s.pollerMu.Lock()
	defer s.pollerMu.Unlock()
	if s.poller != nil {
		s.poller.Cancel()
	}
}

// Submit runs one full submit cycle for the given payment method type and
// raw input data. At most one cycle runs per instance; a second Submit while
// one is in flight is rejected without side effects. The terminal outcome is
// delivered through the delegate and mirrored in the returned error.
func (s *Service) Submit(ctx context.Context, paymentMethodType string, raw domain.RawPaymentData) error {
	if !s.submitting.CompareAndSwap(false, true) {
		return domain.ErrSubmitInProgress
	}
	defer s.submitting.Store(false)

	started := time.Now()

	tok := s.state.ClientToken()
	if tok == nil || tok.Expired() {
		return s.fail(domain.ErrInvalidClientToken, nil, paymentMethodType, started)
	}
	config, ok := s.state.Config(paymentMethodType)
	if !ok {
		err := domain.NewCheckoutError(domain.ErrorCodeUnsupportedPaymentMethod,
			"payment method is not configured for this session").
			WithDetail("paymentMethodType", paymentMethodType)
		return s.fail(err, nil, paymentMethodType, started)
	}

	s.deps.Delegate.PreparationStarted(paymentMethodType)

	builder, err := tokenization.ForFamily(config.Family)
	if err != nil {
		return s.fail(err, nil, paymentMethodType, started)
	}
	req, err := builder.Build(raw, config)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			err = verr.AsCheckoutError()
		}
		return s.fail(err, nil, paymentMethodType, started)
	}

	// Vault sessions store the instrument; there is no payment to gate.
	if tok.Intent != session.IntentVault {
		decision := s.deps.Delegate.WillCreatePayment(ctx, ports.CheckoutPaymentMethodData{Type: paymentMethodType})
		if decision.Type == ports.PaymentDecisionAbort {
			err := domain.NewCheckoutError(domain.ErrorCodeMerchantAborted, "payment aborted by merchant")
			if decision.Message != "" {
				err = err.WithDetail("message", decision.Message)
			}
			return s.fail(err, nil, paymentMethodType, started)
		}
	}

	s.deps.Delegate.TokenizationStarted(paymentMethodType)
	pmToken, err := s.deps.Tokenizer.Tokenize(ctx, tok, *req)
	if err != nil {
		observability.RecordTokenization(paymentMethodType, "failure")
		s.deps.Delegate.TokenizationFailed(err)
		return s.fail(err, nil, paymentMethodType, started)
	}
	observability.RecordTokenization(paymentMethodType, "success")

	decision := s.deps.Delegate.DidTokenize(ctx, pmToken)

	if tok.Intent == session.IntentVault {
		s.deps.Logger.Info("payment method vaulted",
			ports.String("payment_method_type", paymentMethodType))
		observability.RecordSubmitCycle(paymentMethodType, "success", started)
		return nil
	}

	if s.opts.Handling == HandlingManual {
		return s.settleManual(ctx, pmToken, decision, paymentMethodType, started)
	}
	return s.settleAutomatic(ctx, pmToken, paymentMethodType, started)
}

// settleAutomatic creates the payment and drives required actions and
// resumes until the payment reaches a terminal status.
func (s *Service) settleAutomatic(ctx context.Context, pmToken *domain.PaymentMethodToken, paymentMethodType string, started time.Time) error {
	resp, err := s.deps.Payments.CreatePayment(ctx, s.state.ClientToken(), pmToken.Token)
	if err != nil {
		return s.fail(err, nil, paymentMethodType, started)
	}

	for {
		switch {
		case resp.RequiredAction != nil && resp.RequiredAction.ClientToken != "":
			resumeToken, err := s.handleRequiredAction(ctx, resp.RequiredAction.ClientToken, pmToken)
			if err != nil {
				data := domain.NewCheckoutData(*resp)
				return s.fail(err, &data, paymentMethodType, started)
			}
			// Decision ignored under automatic handling.
			s.deps.Delegate.DidResume(ctx, resumeToken)
			resp, err = s.deps.Payments.ResumePayment(ctx, s.state.ClientToken(), resp.ID, resumeToken)
			if err != nil {
				return s.fail(err, nil, paymentMethodType, started)
			}

		case resp.Status == domain.PaymentStatusFailed:
			data := domain.NewCheckoutData(*resp)
			err := domain.NewCheckoutError(domain.ErrorCodePaymentFailed, "payment failed").
				WithDetail("paymentId", resp.ID)
			if reason, known := domain.KnownFailureReason(resp.PaymentFailureReason); known {
				err = err.WithDetail("paymentFailureReason", string(reason))
			}
			return s.fail(err, &data, paymentMethodType, started)

		default:
			// SUCCESS, or PENDING with no pending required action.
			data := domain.NewCheckoutData(*resp)
			s.deps.Delegate.DidCompleteCheckout(data)
			s.deps.Logger.Info("checkout completed",
				ports.String("payment_id", resp.ID),
				ports.String("status", string(resp.Status)))
			observability.RecordSubmitCycle(paymentMethodType, "success", started)
			return nil
		}
	}
}

// settleManual consumes merchant decisions: each continue-with-new-client-token
// performs one required action and asks again with the produced resume token.
func (s *Service) settleManual(ctx context.Context, pmToken *domain.PaymentMethodToken, decision ports.ResumeDecision, paymentMethodType string, started time.Time) error {
	for {
		switch decision.Type {
		case ports.ResumeDecisionSucceed:
			s.deps.Logger.Info("merchant completed payment",
				ports.String("payment_method_type", paymentMethodType))
			observability.RecordSubmitCycle(paymentMethodType, "success", started)
			return nil

		case ports.ResumeDecisionFail:
			err := domain.NewCheckoutError(domain.ErrorCodePaymentFailed, "payment failed by merchant")
			if decision.Message != "" {
				err = err.WithDetail("message", decision.Message)
			}
			return s.fail(err, nil, paymentMethodType, started)

		case ports.ResumeDecisionContinueWithToken:
			resumeToken, err := s.handleRequiredAction(ctx, decision.NewClientToken, pmToken)
			if err != nil {
				return s.fail(err, nil, paymentMethodType, started)
			}
			decision = s.deps.Delegate.DidResume(ctx, resumeToken)

		default:
			err := domain.NewCheckoutError(domain.ErrorCodeInternalError, "unrecognized resume decision").
				WithDetail("decision", string(decision.Type))
			return s.fail(err, nil, paymentMethodType, started)
		}
	}
}

// handleRequiredAction commits the replacement client token, dispatches on
// its intent, and returns the resume token the action produced.
func (s *Service) handleRequiredAction(ctx context.Context, rawClientToken string, pmToken *domain.PaymentMethodToken) (string, error) {
	tok, err := s.replaceClientToken(ctx, rawClientToken)
	if err != nil {
		return "", err
	}

	switch {
	case tok.Intent == session.Intent3DSAuthentication:
		if s.deps.ThreeDS == nil {
			return "", domain.ErrMissing3DSProvider
		}
		result, err := s.deps.ThreeDS.Perform(ctx, pmToken, tok.ThreeDSProtocolVersions)
		if err != nil {
			return "", domain.WrapError(domain.ErrorCodeFailed3DS, "3DS challenge failed", err)
		}
		return result.ResumeToken, nil

	case tok.Intent == session.IntentProcessor3DS:
		if tok.RedirectURL == "" || tok.StatusURL == "" {
			return "", domain.NewCheckoutError(domain.ErrorCodeInvalidResumeToken,
				"processor 3DS token is missing its redirect or status URL")
		}
		return s.redirectAndPoll(ctx, tok)

	case tok.IsRedirectionIntent():
		if tok.StatusURL == "" {
			return "", domain.NewCheckoutError(domain.ErrorCodeInvalidResumeToken,
				"redirection token is missing its status URL")
		}
		return s.redirectAndPoll(ctx, tok)

	default:
		return "", domain.ErrInvalidResumeToken
	}
}

// redirectAndPoll presents the side-channel URL when one is given and polls
// the status URL until the action completes, the user closes the surface, or
// the poll times out.
func (s *Service) redirectAndPoll(ctx context.Context, tok *session.ClientToken) (string, error) {
	p := polling.New(s.deps.Status, s.deps.Logger, s.opts.Polling)
	s.pollerMu.Lock()
	s.poller = p
	s.pollerMu.Unlock()
	defer func() {
		s.pollerMu.Lock()
		s.poller = nil
		s.pollerMu.Unlock()
	}()

	if tok.RedirectURL != "" {
		if s.deps.Presenter == nil {
			return "", domain.NewCheckoutError(domain.ErrorCodeInternalError,
				"redirect required but no presenter is configured")
		}
		if err := s.deps.Presenter.Present(ctx, tok.RedirectURL, p.Cancel); err != nil {
			return "", domain.WrapError(domain.ErrorCodeInternalError, "presenting redirect failed", err)
		}
		defer s.deps.Presenter.Dismiss()
	}

	return p.Poll(ctx, tok, tok.StatusURL)
}

// replaceClientToken decodes a raw client token, refreshes the payment
// method configuration under it, and atomically commits both. The refresh is
// bracketed by the client-session update events.
func (s *Service) replaceClientToken(ctx context.Context, raw string) (*session.ClientToken, error) {
	tok, err := session.DecodeClientToken(raw)
	if err != nil {
		return nil, err
	}

	s.deps.Delegate.ClientSessionWillUpdate()
	configs, err := s.deps.Configuration.FetchConfig(ctx, tok)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeTransportError, "configuration refresh failed", err)
	}
	s.state.Store(tok, configs)
	s.deps.Delegate.ClientSessionDidUpdate(configs)
	return tok, nil
}

// fail normalizes err into the shared error shape, delivers the terminal
// failure through the delegate, and returns it.
func (s *Service) fail(err error, data *domain.CheckoutData, paymentMethodType string, started time.Time) error {
	var ce *domain.CheckoutError
	if !errors.As(err, &ce) {
		ce = domain.WrapError(domain.ErrorCodeInternalError, "submit cycle failed", err)
	}

	outcome := "failure"
	if ce.Code == domain.ErrorCodeCancelled {
		outcome = "cancelled"
	}
	observability.RecordSubmitCycle(paymentMethodType, outcome, started)

	s.deps.Logger.Error("submit cycle failed",
		ports.String("payment_method_type", paymentMethodType),
		ports.String("code", string(ce.Code)),
		ports.String("diagnostics_id", ce.DiagnosticsID),
		ports.Err(ce))
	s.deps.Delegate.DidFail(ce, data)
	return ce
}
