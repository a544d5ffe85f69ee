package session

import (
	"sync"

	"github.com/meridianpay/checkout-sdk/internal/domain"
)

// State holds the session's current client token and the payment method
// configuration derived from it. A required action that supplies a new
// client token must fully commit the replacement (token write plus config
// re-fetch) before any later flow step reads it, so all access goes through
// one mutex.
type State struct {
	mu      sync.RWMutex
	current *ClientToken
	configs map[string]domain.PaymentMethodConfig
}

// NewState creates an empty session state.
func NewState() *State {
	return &State{configs: make(map[string]domain.PaymentMethodConfig)}
}

// ClientToken returns the session's current decoded client token, or nil
// before Store has been called.
func (s *State) ClientToken() *ClientToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Store atomically replaces the client token and the configuration fetched
// under it.
func (s *State) Store(token *ClientToken, configs []domain.PaymentMethodConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = token
	s.configs = make(map[string]domain.PaymentMethodConfig, len(configs))
	for _, c := range configs {
		s.configs[c.Type] = c
	}
}

// Config looks up a payment method configuration by its type string.
func (s *State) Config(paymentMethodType string) (domain.PaymentMethodConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.configs[paymentMethodType]
	return c, ok
}

// Configs returns a copy of all configured payment methods.
func (s *State) Configs() []domain.PaymentMethodConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PaymentMethodConfig, 0, len(s.configs))
	for _, c := range s.configs {
		out = append(out, c)
	}
	return out
}
