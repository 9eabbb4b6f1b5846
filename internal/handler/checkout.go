package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-checkout/internal/domain/address"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/session"
)

func (h *Handler) writeCheckout(w http.ResponseWriter, s *session.Session, status int) {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("step", func(e *jx.Encoder) { e.Str(string(s.Flow.Step())) })
		if addr := s.Address.Current(); addr != nil {
			e.Field("address", func(e *jx.Encoder) { encAddress(e, *addr) })
		}
		if m := s.Payment.Current(); m != nil {
			e.Field("payment", func(e *jx.Encoder) { e.Str(m.Summary()) })
		}
		e.Field("summary", func(e *jx.Encoder) { encSummary(e, h.sessions.Quote(s)) })
	})
	writeJSON(w, status, e)
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)
	h.writeCheckout(w, s, http.StatusOK)
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	addrs, err := s.Address.ListSaved(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.Arr(func(e *jx.Encoder) {
		for _, a := range addrs {
			encAddress(e, a)
		}
	})
	writeJSON(w, http.StatusOK, e)
}

type setAddressRequest struct {
	// ID selects a saved address; when empty, the inline fields become a
	// session-local draft.
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

func (h *Handler) setAddress(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	var req setAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.ID != "" {
		if err := s.Address.Select(r.Context(), req.ID); err != nil {
			respondError(w, r, err)
			return
		}
	} else {
		s.Address.DraftNew(address.Address{
			Name:    req.Name,
			Phone:   req.Phone,
			Street:  req.Street,
			City:    req.City,
			State:   req.State,
			ZipCode: req.ZipCode,
		})
	}
	h.writeCheckout(w, s, http.StatusOK)
}

type setPaymentRequest struct {
	Kind     string `json:"kind"`
	Provider string `json:"provider,omitempty"`
	Card     *struct {
		Number     string `json:"number"`
		Expiry     string `json:"expiry"`
		CVV        string `json:"cvv"`
		HolderName string `json:"holderName"`
	} `json:"card,omitempty"`
}

// setPayment records the chosen method. Card number and expiry are stored
// in normalized display form; completeness is judged at the gate.
func (h *Handler) setPayment(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	var req setPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	m := payment.Method{Kind: payment.Kind(req.Kind)}
	switch m.Kind {
	case payment.KindCard:
		if req.Card == nil {
			writeError(w, http.StatusUnprocessableEntity, "card fields required")
			return
		}
		m.Card = &payment.Card{
			Number:     payment.FormatCardNumber(req.Card.Number),
			Expiry:     payment.FormatExpiry(req.Card.Expiry),
			CVV:        req.Card.CVV,
			HolderName: req.Card.HolderName,
		}
	case payment.KindWallet:
		m.Wallet = &payment.Wallet{Provider: req.Provider}
	case payment.KindBankTransfer:
	default:
		writeError(w, http.StatusUnprocessableEntity, "unknown payment kind")
		return
	}

	s.Payment.Select(m)
	h.writeCheckout(w, s, http.StatusOK)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	if _, err := s.Flow.Advance(r.Context(), checkout.ActionNext); err != nil {
		respondError(w, r, err)
		return
	}
	h.writeCheckout(w, s, http.StatusOK)
}

func (h *Handler) goBack(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	if _, err := s.Flow.Advance(r.Context(), checkout.ActionBack); err != nil {
		respondError(w, r, err)
		return
	}
	h.writeCheckout(w, s, http.StatusOK)
}

// submit finalizes the order. On success the session is discarded; the
// client starts over with a fresh cart on its next request.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)

	orderID, err := s.Flow.Submit(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.sessions.Drop(s.ID)

	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Str(orderID) })
	})
	writeJSON(w, http.StatusCreated, e)
}

// cancel explicitly abandons the checkout attempt and its session.
func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	s := h.resolve(w, r)
	h.sessions.Drop(s.ID)
	w.WriteHeader(http.StatusNoContent)
}
