package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/domain/address"
	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/coupon"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/product"
)

func writeError(w http.ResponseWriter, status int, message string) {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, e)
}

// respondError maps domain errors to HTTP statuses:
//
//	validation (bad coupon, bad fields, bad quantities)  -> 422
//	unknown resources                                    -> 404
//	business-rule blocks (gates, in-flight guard)        -> 409
//	finished sessions                                    -> 410
//	submission failures            -> 402 declined, 502 transport
//
// Anything unclassified is logged and reported as a plain 500; internal
// details never reach the response body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rejection *coupon.Rejection
		blocked   *checkout.BlockedError
		submitErr *order.SubmitError
	)

	switch {
	case errors.As(err, &rejection):
		writeError(w, http.StatusUnprocessableEntity, rejection.Reason)
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidPrice):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &blocked):
		writeError(w, http.StatusConflict, blocked.Reason)
	case errors.Is(err, checkout.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, "submission already in progress")
	case errors.Is(err, checkout.ErrStaleSubmission):
		writeError(w, http.StatusConflict, "submission cancelled by navigation")
	case errors.Is(err, checkout.ErrCompleted):
		writeError(w, http.StatusGone, "checkout already completed")
	case errors.As(err, &submitErr):
		respondSubmitError(w, submitErr)
	default:
		zctx.From(r.Context()).Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondSubmitError(w http.ResponseWriter, err *order.SubmitError) {
	status := http.StatusBadGateway
	switch err.Kind {
	case order.FailureValidation:
		status = http.StatusUnprocessableEntity
	case order.FailureDeclined:
		status = http.StatusPaymentRequired
	case order.FailureTransport:
		status = http.StatusBadGateway
	}
	msg := err.Message
	if msg == "" {
		msg = "order submission failed"
	}
	writeError(w, status, msg)
}
