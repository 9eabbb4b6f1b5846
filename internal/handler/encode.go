package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/address"
	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
	"github.com/xenking/storefront-checkout/internal/domain/product"
)

// Responses are streamed with jx encoders; monetary values are emitted as
// exact JSON numbers straight from their decimal representation, never
// through float64.

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func encDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func encSummary(e *jx.Encoder, s pricing.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("subtotal", func(e *jx.Encoder) { encDecimal(e, s.Subtotal) })
		e.Field("savings", func(e *jx.Encoder) { encDecimal(e, s.Savings) })
		e.Field("couponDiscount", func(e *jx.Encoder) { encDecimal(e, s.CouponDiscount) })
		e.Field("shipping", func(e *jx.Encoder) { encDecimal(e, s.Shipping) })
		e.Field("tax", func(e *jx.Encoder) { encDecimal(e, s.Tax) })
		e.Field("total", func(e *jx.Encoder) { encDecimal(e, s.Total) })
	})
}

func encLineItem(e *jx.Encoder, it cart.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("unitPrice", func(e *jx.Encoder) { encDecimal(e, it.UnitPrice) })
		if it.OriginalUnitPrice != nil {
			e.Field("originalUnitPrice", func(e *jx.Encoder) { encDecimal(e, *it.OriginalUnitPrice) })
		}
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("vendorId", func(e *jx.Encoder) { e.Str(it.VendorID) })
		e.Field("inStock", func(e *jx.Encoder) { e.Bool(it.InStock) })
	})
}

func encCart(e *jx.Encoder, items []cart.LineItem, couponCode string, s pricing.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range items {
					encLineItem(e, it)
				}
			})
		})
		if couponCode != "" {
			e.Field("couponCode", func(e *jx.Encoder) { e.Str(couponCode) })
		}
		e.Field("summary", func(e *jx.Encoder) { encSummary(e, s) })
	})
}

func encProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { encDecimal(e, p.Price) })
		if p.OriginalPrice != nil {
			e.Field("originalPrice", func(e *jx.Encoder) { encDecimal(e, *p.OriginalPrice) })
		}
		e.Field("vendorId", func(e *jx.Encoder) { e.Str(p.VendorID) })
		e.Field("inStock", func(e *jx.Encoder) { e.Bool(p.InStock) })
	})
}

func encAddress(e *jx.Encoder, a address.Address) {
	e.Obj(func(e *jx.Encoder) {
		if a.ID != "" {
			e.Field("id", func(e *jx.Encoder) { e.Str(a.ID) })
		}
		e.Field("name", func(e *jx.Encoder) { e.Str(a.Name) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(a.Phone) })
		e.Field("street", func(e *jx.Encoder) { e.Str(a.Street) })
		e.Field("city", func(e *jx.Encoder) { e.Str(a.City) })
		e.Field("state", func(e *jx.Encoder) { e.Str(a.State) })
		e.Field("zipCode", func(e *jx.Encoder) { e.Str(a.ZipCode) })
		e.Field("isDefault", func(e *jx.Encoder) { e.Bool(a.IsDefault) })
	})
}
