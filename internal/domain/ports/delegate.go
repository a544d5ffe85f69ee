package ports

import (
	"context"

	"github.com/meridianpay/checkout-sdk/internal/domain"
)

// PaymentDecisionType is the merchant's pre-payment verdict.
type PaymentDecisionType string

const (
	PaymentDecisionContinue PaymentDecisionType = "CONTINUE"
	PaymentDecisionAbort    PaymentDecisionType = "ABORT"
)

// PaymentDecision is returned from WillCreatePayment. An abort carries the
// merchant-supplied message surfaced on the terminal error.
type PaymentDecision struct {
	Type    PaymentDecisionType
	Message string
}

// ContinuePayment allows the payment to proceed.
func ContinuePayment() PaymentDecision {
	return PaymentDecision{Type: PaymentDecisionContinue}
}

// AbortPayment stops the flow with a merchant-side business-rule message.
func AbortPayment(message string) PaymentDecision {
	return PaymentDecision{Type: PaymentDecisionAbort, Message: message}
}

// ResumeDecisionType is the merchant's verdict at a manual-handling
// tokenization or resume checkpoint.
type ResumeDecisionType string

const (
	ResumeDecisionSucceed           ResumeDecisionType = "SUCCEED"
	ResumeDecisionContinueWithToken ResumeDecisionType = "CONTINUE_WITH_NEW_CLIENT_TOKEN"
	ResumeDecisionFail              ResumeDecisionType = "FAIL"
)

// ResumeDecision is the manual-handling merchant response. Exactly one
// decision is consumed per checkpoint.
type ResumeDecision struct {
	Type           ResumeDecisionType
	NewClientToken string
	Message        string
}

// SucceedResume completes the merchant-managed payment.
func SucceedResume() ResumeDecision {
	return ResumeDecision{Type: ResumeDecisionSucceed}
}

// ContinueWithClientToken continues the flow under a replacement client token.
func ContinueWithClientToken(newClientToken string) ResumeDecision {
	return ResumeDecision{Type: ResumeDecisionContinueWithToken, NewClientToken: newClientToken}
}

// FailResume fails the merchant-managed payment with the given message.
func FailResume(message string) ResumeDecision {
	return ResumeDecision{Type: ResumeDecisionFail, Message: message}
}

// CheckoutPaymentMethodData describes the payment method about to be charged.
type CheckoutPaymentMethodData struct {
	Type string
}

// CheckoutDelegate is the merchant-facing event surface. The notification
// methods fire at most once per named event per submit cycle; the
// decision-returning methods suspend the flow until the merchant answers.
type CheckoutDelegate interface {
	// PreparationStarted fires when a submit cycle begins.
	PreparationStarted(paymentMethodType string)

	// TokenizationStarted fires immediately before the tokenize call.
	TokenizationStarted(paymentMethodType string)

	// TokenizationFailed fires when the tokenize call itself fails, before
	// the terminal DidFail. Payment creation and resume failures do not
	// fire it.
	TokenizationFailed(err error)

	// WillCreatePayment gives the merchant a chance to abort before any
	// payment is created. Skipped for vault-intent sessions.
	WillCreatePayment(ctx context.Context, data CheckoutPaymentMethodData) PaymentDecision

	// DidTokenize delivers the payment method token. Under manual payment
	// handling the returned decision drives the flow; under automatic
	// handling the decision is ignored.
	DidTokenize(ctx context.Context, token *domain.PaymentMethodToken) ResumeDecision

	// DidResume delivers a resume token produced by a completed required
	// action. Under manual payment handling the returned decision drives
	// the flow; under automatic handling the decision is ignored.
	DidResume(ctx context.Context, resumeToken string) ResumeDecision

	// DidCompleteCheckout delivers the terminal checkout data. Fired only
	// under automatic payment handling.
	DidCompleteCheckout(data domain.CheckoutData)

	// DidFail delivers the terminal error, with whatever checkout data was
	// assembled before the failure.
	DidFail(err error, data *domain.CheckoutData)

	// ClientSessionWillUpdate / ClientSessionDidUpdate bracket every
	// configuration refresh triggered by a client-token replacement.
	ClientSessionWillUpdate()
	ClientSessionDidUpdate(configs []domain.PaymentMethodConfig)
}
