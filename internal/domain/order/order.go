package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/address"
	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
)

// Order is the finalized payload handed to the Submitter: the cart snapshot,
// the summary priced from it, the shipping address, and a masked payment
// description. Raw payment credentials never enter an Order.
type Order struct {
	ID             string
	Items          []cart.LineItem
	Summary        pricing.Summary
	CouponCode     string
	Address        address.Address
	PaymentSummary string
	CreatedAt      time.Time
}

// Subtotal is a convenience accessor for the priced subtotal.
func (o *Order) Subtotal() decimal.Decimal { return o.Summary.Subtotal }

// Total is a convenience accessor for the priced total.
func (o *Order) Total() decimal.Decimal { return o.Summary.Total }

// Submitter accepts a finalized order and returns its assigned identifier.
// Submission is the one suspending call in the pipeline; implementations
// must honor ctx cancellation and deadlines.
type Submitter interface {
	Submit(ctx context.Context, o *Order) (orderID string, err error)
}
