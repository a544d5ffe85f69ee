package validation

import (
	"strings"

	"github.com/meridianpay/checkout-sdk/internal/domain"
)

// Editor tracks one input element through user editing. It enforces the
// element's character set and length caps before accepting an edit, keeps
// the de-formatted value, and re-evaluates card network detection on every
// accepted edit.
type Editor struct {
	elementType domain.InputElementType
	value       string
	network     domain.CardNetwork
	// cvvNetwork tightens CVV length rules when the card-number element of
	// the same form has detected a network.
	cvvNetwork domain.CardNetwork

	// OnNetworkChange fires only when the detected network actually
	// transitions, including to and from CardNetworkUnknown.
	OnNetworkChange func(network domain.CardNetwork)
	// OnValidityChange fires after every accepted edit with the current
	// validation verdict.
	OnValidityChange func(valid bool)
}

// NewEditor creates an editor for the given element type.
func NewEditor(t domain.InputElementType) *Editor {
	return &Editor{elementType: t, network: domain.CardNetworkUnknown, cvvNetwork: domain.CardNetworkUnknown}
}

// Value returns the current de-formatted value.
func (e *Editor) Value() string { return e.value }

// FormattedValue returns the current value with display formatting applied.
// Card numbers group at the detected network's digit boundaries.
func (e *Editor) FormattedValue() string {
	if e.elementType == domain.InputElementCardNumber {
		return FormatCardNumber(e.value, e.network)
	}
	return Format(e.elementType, e.value)
}

// Network returns the currently detected card network.
func (e *Editor) Network() domain.CardNetwork { return e.network }

// SetCVVNetwork switches CVV validation between the generic rule and the
// network-specific code length. Passing CardNetworkUnknown reverts to the
// generic rule.
func (e *Editor) SetCVVNetwork(network domain.CardNetwork) {
	e.cvvNetwork = network
}

// IsValid reports whether the current value passes the element's predicate.
func (e *Editor) IsValid() bool {
	network := e.network
	if e.elementType == domain.InputElementCVV {
		network = e.cvvNetwork
	}
	return Validate(e.elementType, e.value, network)
}

// Apply proposes a full replacement value, as produced by a text field after
// an edit. The edit is rejected wholesale (no partial acceptance) if any
// character is outside the element's set or the de-formatted result exceeds
// the allowed length. Returns whether the edit was accepted.
func (e *Editor) Apply(proposed string) bool {
	deformatted := ClearFormatting(e.elementType, proposed)

	if allowed, ok := AllowedCharacters(e.elementType); ok {
		for _, r := range deformatted {
			if !strings.ContainsRune(allowed, r) {
				return false
			}
		}
	}
	if maxLen, ok := MaxAllowedLength(e.elementType); ok && len(deformatted) > maxLen {
		return false
	}

	if e.elementType == domain.InputElementCardNumber {
		if v, ok := domain.DetectCardNetwork(deformatted).Validation(); ok {
			maxNetworkLen := 0
			for _, l := range v.Lengths {
				if l > maxNetworkLen {
					maxNetworkLen = l
				}
			}
			if len(deformatted) > maxNetworkLen {
				return false
			}
		}
	}
	if e.elementType == domain.InputElementCVV {
		if length, ok := e.cvvNetwork.CVVLength(); ok && len(deformatted) > length {
			return false
		}
	}

	e.value = deformatted
	e.refreshNetwork()
	if e.OnValidityChange != nil {
		e.OnValidityChange(e.IsValid())
	}
	return true
}

func (e *Editor) refreshNetwork() {
	if e.elementType != domain.InputElementCardNumber {
		return
	}
	detected := domain.DetectCardNetwork(e.value)
	if detected == e.network {
		return
	}
	e.network = detected
	if e.OnNetworkChange != nil {
		e.OnNetworkChange(detected)
	}
}
