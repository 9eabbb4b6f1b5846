package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() Card {
	return Card{
		Number:     "4111 1111 1111 1111",
		Expiry:     "12/26",
		CVV:        "123",
		HolderName: "Dana Reyes",
	}
}

func TestCardValid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Card)
		want   bool
	}{
		{name: "valid 16 digit card", mutate: func(*Card) {}, want: true},
		{name: "valid 13 digit card", mutate: func(c *Card) { c.Number = "4222222222222" }, want: true},
		{name: "12 digits is too short", mutate: func(c *Card) { c.Number = "411111111111" }, want: false},
		{name: "17 digits is too long", mutate: func(c *Card) { c.Number = "41111111111111112" }, want: false},
		{name: "four digit cvv", mutate: func(c *Card) { c.CVV = "1234" }, want: true},
		{name: "two digit cvv", mutate: func(c *Card) { c.CVV = "12" }, want: false},
		{name: "cvv with letters", mutate: func(c *Card) { c.CVV = "12a" }, want: false},
		{name: "month 00 invalid", mutate: func(c *Card) { c.Expiry = "00/26" }, want: false},
		{name: "month 13 invalid", mutate: func(c *Card) { c.Expiry = "13/26" }, want: false},
		{name: "short expiry invalid", mutate: func(c *Card) { c.Expiry = "1/26" }, want: false},
		{name: "missing holder name", mutate: func(c *Card) { c.HolderName = "  " }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCard()
			tt.mutate(&c)
			assert.Equal(t, tt.want, c.Valid())
		})
	}
}

func TestMethodComplete(t *testing.T) {
	card := validCard()
	tests := []struct {
		name   string
		method Method
		want   bool
	}{
		{name: "complete card", method: Method{Kind: KindCard, Card: &card}, want: true},
		{name: "card variant without card data", method: Method{Kind: KindCard}, want: false},
		{name: "wallet with provider", method: Method{Kind: KindWallet, Wallet: &Wallet{Provider: "paypal"}}, want: true},
		{name: "wallet without provider", method: Method{Kind: KindWallet, Wallet: &Wallet{}}, want: false},
		{name: "bank transfer has no fields", method: Method{Kind: KindBankTransfer}, want: true},
		{name: "unknown kind", method: Method{Kind: Kind("iou")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.Complete())
		})
	}
}

func TestMethodSummary_MasksCardNumber(t *testing.T) {
	card := validCard()
	m := Method{Kind: KindCard, Card: &card}
	assert.Equal(t, "card ending 1111", m.Summary())
	assert.NotContains(t, m.Summary(), "4111 1111")
}

func TestSelector(t *testing.T) {
	s := NewSelector()
	require.Nil(t, s.Current())

	s.Select(Method{Kind: KindBankTransfer})
	got := s.Current()
	require.NotNil(t, got)
	assert.Equal(t, KindBankTransfer, got.Kind)

	// Selecting again replaces.
	card := validCard()
	s.Select(Method{Kind: KindCard, Card: &card})
	assert.Equal(t, KindCard, s.Current().Kind)
}
