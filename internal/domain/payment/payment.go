package payment

import (
	"strings"
	"sync"
)

// Kind enumerates the supported payment method variants.
type Kind string

const (
	// KindCard is an inline card entry; the only variant with field validation.
	KindCard Kind = "card"
	// KindWallet redirects to an external wallet provider.
	KindWallet Kind = "wallet"
	// KindBankTransfer settles out-of-band after order placement.
	KindBankTransfer Kind = "bank_transfer"
)

// Method is the tagged payment variant chosen for a checkout session.
// Exactly one of the variant fields is populated, matching Kind.
type Method struct {
	Kind   Kind
	Card   *Card
	Wallet *Wallet
}

// Card holds inline card entry fields. Number and Expiry are kept in
// display form; validation works on the stripped digits.
type Card struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
}

// Wallet identifies the external wallet provider to redirect to.
type Wallet struct {
	Provider string
}

// Complete reports whether every required sub-field of the variant passes
// validation. Wallet needs a provider; bank transfer has no fields.
func (m Method) Complete() bool {
	switch m.Kind {
	case KindCard:
		return m.Card != nil && m.Card.Valid()
	case KindWallet:
		return m.Wallet != nil && strings.TrimSpace(m.Wallet.Provider) != ""
	case KindBankTransfer:
		return true
	default:
		return false
	}
}

// Summary is the order-payload description of the method: never raw card
// data, only the variant and a masked hint.
func (m Method) Summary() string {
	switch m.Kind {
	case KindCard:
		if m.Card == nil {
			return "card"
		}
		digits := stripNonDigits(m.Card.Number)
		if len(digits) >= 4 {
			return "card ending " + digits[len(digits)-4:]
		}
		return "card"
	case KindWallet:
		if m.Wallet != nil {
			return "wallet: " + m.Wallet.Provider
		}
		return "wallet"
	case KindBankTransfer:
		return "bank transfer"
	default:
		return string(m.Kind)
	}
}

// Valid checks the card's fields: 13-16 digits in the number, a four digit
// MM/YY expiry with a real month, a 3-4 digit CVV, and a holder name.
func (c Card) Valid() bool {
	digits := stripNonDigits(c.Number)
	if len(digits) < 13 || len(digits) > 16 {
		return false
	}
	if !validExpiry(c.Expiry) {
		return false
	}
	if !validCVV(c.CVV) {
		return false
	}
	return strings.TrimSpace(c.HolderName) != ""
}

// Selector captures the payment method chosen for the session.
type Selector struct {
	mu      sync.Mutex
	current *Method
}

// NewSelector returns a Selector with no method chosen.
func NewSelector() *Selector {
	return &Selector{}
}

// Select replaces the session's payment method. The method may still be
// incomplete; completeness is re-checked at the Payment gate.
func (s *Selector) Select(m Method) {
	s.mu.Lock()
	s.current = &m
	s.mu.Unlock()
}

// Current returns the chosen method, or nil when none has been selected.
func (s *Selector) Current() *Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	m := *s.current
	return &m
}
