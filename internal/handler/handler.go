// Package handler exposes the cart-to-order pipeline over HTTP. Requests
// resolve their session from the X-Session-ID header; the header is echoed
// back so new clients learn their id from the first response.
package handler

import (
	"net/http"

	"github.com/xenking/storefront-checkout/internal/domain/coupon"
	"github.com/xenking/storefront-checkout/internal/domain/product"
	"github.com/xenking/storefront-checkout/internal/session"
)

// SessionHeader carries the client's opaque session id.
const SessionHeader = "X-Session-ID"

// Handler wires the HTTP surface to the session registry and domain
// services.
type Handler struct {
	sessions *session.Registry
	products product.Repository
	coupons  coupon.Validator
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(sessions *session.Registry, products product.Repository, coupons coupon.Validator) *Handler {
	return &Handler{
		sessions: sessions,
		products: products,
		coupons:  coupons,
	}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.setQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	mux.HandleFunc("POST /api/cart/coupon", h.applyCoupon)
	mux.HandleFunc("DELETE /api/cart/coupon", h.removeCoupon)

	mux.HandleFunc("GET /api/addresses", h.listAddresses)

	mux.HandleFunc("GET /api/checkout", h.getCheckout)
	mux.HandleFunc("POST /api/checkout/address", h.setAddress)
	mux.HandleFunc("POST /api/checkout/payment", h.setPayment)
	mux.HandleFunc("POST /api/checkout/next", h.advance)
	mux.HandleFunc("POST /api/checkout/back", h.goBack)
	mux.HandleFunc("POST /api/checkout/submit", h.submit)
	mux.HandleFunc("DELETE /api/checkout", h.cancel)

	return mux
}

// resolve returns the request's session, creating one when needed, and
// stamps the session id on the response.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) *session.Session {
	s := h.sessions.Get(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, s.ID)
	return s
}
