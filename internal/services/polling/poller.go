// Package polling repeatedly queries a required action's status URL until
// the side channel reaches a terminal state, yielding the resume token.
package polling

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/meridianpay/checkout-sdk/internal/domain"
	"github.com/meridianpay/checkout-sdk/internal/domain/ports"
	"github.com/meridianpay/checkout-sdk/internal/session"
	"github.com/meridianpay/checkout-sdk/pkg/observability"
	"github.com/meridianpay/checkout-sdk/pkg/resilience"
)

// Config tunes the polling cadence. Zero values take the production
// defaults; tests shrink the delays.
type Config struct {
	// Pending is the delay before re-polling a still-pending side channel.
	Pending resilience.BackoffStrategy
	// Failure is the delay before retrying after a transport failure. This
	// is the flow's only automatic retry.
	Failure resilience.BackoffStrategy
	// MaxDuration bounds the whole poll so an abandoned side channel
	// cannot hold the flow open forever.
	MaxDuration time.Duration
}

func (c Config) withDefaults() Config {
	if c.Pending == nil {
		c.Pending = resilience.PendingPollBackoff()
	}
	if c.Failure == nil {
		c.Failure = resilience.FailurePollBackoff()
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = 10 * time.Minute
	}
	return c
}

// Poller drives one status URL to a terminal state. A Poller serves a single
// Poll call; cancellation is cooperative and sticks for the Poller's
// lifetime.
type Poller struct {
	client    ports.StatusClient
	logger    ports.Logger
	cfg       Config
	cancelled atomic.Bool
}

// New creates a poller over the given status client.
func New(client ports.StatusClient, logger ports.Logger, cfg Config) *Poller {
	return &Poller{client: client, logger: logger, cfg: cfg.withDefaults()}
}

// Cancel marks the poll cancelled. In-flight requests are not aborted
// mid-transport; their results are rejected on arrival.
func (p *Poller) Cancel() {
	p.cancelled.Store(true)
}

// Poll queries the status URL until the side channel completes, returning
// the resume token. Pending responses re-poll after the pending delay;
// transport failures retry after the failure delay; cancellation and the
// max-duration bound end the loop with an error.
func (p *Poller) Poll(ctx context.Context, clientToken *session.ClientToken, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.MaxDuration)
	defer cancel()

	attempt := 0
	for {
		resp, err := p.fetchStatus(ctx, clientToken, url)
		if err != nil {
			return "", err
		}

		switch resp.Status {
		case ports.PollStatusComplete:
			return resp.ID, nil
		case ports.PollStatusPending:
			delay := p.cfg.Pending.NextDelay(attempt)
			p.logger.Debug("side channel still pending",
				ports.String("status_url", url),
				ports.Int("attempt", attempt),
				ports.Duration("retry_in", delay))
			if err := sleep(ctx, delay); err != nil {
				return "", p.deadlineError(err)
			}
			attempt++
		default:
			// The backend only ever reports pending or complete; anything
			// else means a contract break.
			return "", domain.NewCheckoutError(domain.ErrorCodeInternalError,
				fmt.Sprintf("unrecognized poll status %q", resp.Status))
		}
	}
}

// fetchStatus issues status requests until one yields a decodable response,
// retrying transport failures on the failure cadence. Cancellation is
// checked as each result arrives.
func (p *Poller) fetchStatus(ctx context.Context, clientToken *session.ClientToken, url string) (*ports.PollResponse, error) {
	policy := backoff.WithContext(backoff.NewConstantBackOff(p.cfg.Failure.NextDelay(0)), ctx)

	resp, err := backoff.RetryWithData(func() (*ports.PollResponse, error) {
		observability.RecordPollAttempt()
		r, reqErr := p.client.PollStatus(ctx, clientToken, url)
		if p.cancelled.Load() {
			return nil, backoff.Permanent(domain.ErrCancelled)
		}
		if reqErr != nil {
			p.logger.Warn("status poll failed, retrying",
				ports.String("status_url", url),
				ports.Err(reqErr))
			return nil, reqErr
		}
		return r, nil
	}, policy)
	if err != nil {
		if ce := domain.GetErrorCode(err); ce == domain.ErrorCodeCancelled {
			return nil, domain.ErrCancelled
		}
		return nil, p.deadlineError(err)
	}
	return resp, nil
}

func (p *Poller) deadlineError(err error) error {
	if p.cancelled.Load() {
		return domain.ErrCancelled
	}
	return domain.WrapError(domain.ErrorCodeInternalError, "polling did not reach a terminal state in time", err)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
