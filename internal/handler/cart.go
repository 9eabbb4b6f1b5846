package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/session"
)

func (h *Handler) writeCart(w http.ResponseWriter, s *session.Session, status int) {
	code := ""
	if active := s.ActiveCoupon(); active != nil {
		code = active.Code
	}
	e := &jx.Encoder{}
	encCart(e, s.Cart.Snapshot(), code, h.sessions.Quote(s))
	writeJSON(w, status, e)
}

// getCart returns the cart snapshot together with a freshly recomputed
// price summary. The summary is derived on every read, never cached.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)
	h.writeCart(w, s, http.StatusOK)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// addItem hydrates the line item from the product read-model, snapshotting
// the price at time of adding.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	item := cart.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  req.Quantity,
		VendorID:  p.VendorID,
		InStock:   p.InStock,
	}
	if p.OriginalPrice != nil {
		orig := *p.OriginalPrice
		item.OriginalUnitPrice = &orig
	}

	if err := s.Cart.AddItem(item); err != nil {
		respondError(w, r, err)
		return
	}
	h.writeCart(w, s, http.StatusCreated)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.Cart.SetQuantity(r.PathValue("id"), req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}
	h.writeCart(w, s, http.StatusOK)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	if err := s.Cart.RemoveItem(r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	h.writeCart(w, s, http.StatusOK)
}

// clearCart empties the cart unconditionally; the confirmation gesture
// belongs to the client.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)
	s.Cart.Clear()
	h.writeCart(w, s, http.StatusOK)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// applyCoupon validates the submitted code and, when valid, replaces the
// session's active coupon. A rejection changes nothing and reports the
// displayable reason with 422.
func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c, err := h.coupons.Validate(r.Context(), req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.ApplyCoupon(*c)
	h.writeCart(w, s, http.StatusOK)
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)
	s.RemoveCoupon()
	h.writeCart(w, s, http.StatusOK)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r)

	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			encProduct(e, p)
		}
	})
	writeJSON(w, http.StatusOK, e)
}
