// Package pricing turns a cart snapshot plus an optional coupon into a
// priced summary. The engine is a pure function: no state, no clock, no
// I/O. Callers recompute the Summary after every cart or coupon mutation
// instead of caching or patching a previous one.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/coupon"
)

var hundred = decimal.NewFromInt(100)

// ShippingPolicy is the flat-fee-with-free-threshold shipping rule.
// Carts whose raw subtotal is strictly above FreeThreshold ship free;
// at or below it the flat fee applies.
type ShippingPolicy struct {
	FlatFee       decimal.Decimal
	FreeThreshold decimal.Decimal
}

// Summary is the derived monetary breakdown for the current cart and
// coupon. It is a projection, never stored and never mutated in place.
type Summary struct {
	Subtotal       decimal.Decimal
	Savings        decimal.Decimal
	CouponDiscount decimal.Decimal
	Shipping       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// Price computes the Summary for the given line items. The terms build on
// each other, so the order is fixed:
//
//  1. subtotal over unit price x quantity
//  2. savings from original prices (display only, not part of total)
//  3. coupon discount as a percentage of subtotal
//  4. shipping, decided on the raw subtotal before the coupon
//  5. tax on the post-coupon, pre-shipping amount
//  6. total = subtotal - discount + shipping + tax, floored at zero
//
// An empty cart prices to an all-zero Summary; whether checkout is allowed
// for it is the flow controller's call, not the engine's.
func Price(items []cart.LineItem, active *coupon.Coupon, policy ShippingPolicy, taxRate decimal.Decimal) Summary {
	subtotal := decimal.Zero
	savings := decimal.Zero
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(it.UnitPrice.Mul(qty))
		if it.OriginalUnitPrice != nil {
			savings = savings.Add(it.OriginalUnitPrice.Sub(it.UnitPrice).Mul(qty))
		}
	}

	discount := decimal.Zero
	if active != nil {
		discount = subtotal.Mul(active.DiscountPercent).Div(hundred)
	}

	shipping := policy.FlatFee
	if len(items) == 0 || subtotal.GreaterThan(policy.FreeThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Sub(discount).Mul(taxRate)

	total := subtotal.Sub(discount).Add(shipping).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Summary{
		Subtotal:       subtotal.Round(2),
		Savings:        savings.Round(2),
		CouponDiscount: discount.Round(2),
		Shipping:       shipping.Round(2),
		Tax:            tax.Round(2),
		Total:          total.Round(2),
	}
}
