package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-checkout/internal/domain/order"
)

const createOrderSQL = `INSERT INTO orders
	(id, items, subtotal, coupon_discount, shipping, tax, total, coupon_code, address, payment_summary)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

var _ order.Submitter = (*OrderSubmitter)(nil)

// OrderSubmitter implements order.Submitter by persisting the finalized
// order to PostgreSQL. Line items and the address are serialized to JSONB;
// the payment column only ever holds the masked summary string.
type OrderSubmitter struct {
	pool *pgxpool.Pool
}

// NewOrderSubmitter returns an OrderSubmitter that uses the given pool.
func NewOrderSubmitter(pool *pgxpool.Pool) *OrderSubmitter {
	return &OrderSubmitter{pool: pool}
}

// Submit persists the order and returns its id. Failures are classified
// into order.SubmitError kinds: context errors map to transport (retryable),
// everything else to validation.
func (r *OrderSubmitter) Submit(ctx context.Context, o *order.Order) (string, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return "", &order.SubmitError{
			Kind:    order.FailureValidation,
			Message: "order items not serializable",
			Cause:   fmt.Errorf("marshaling order items: %w", err),
		}
	}
	addressJSON, err := json.Marshal(o.Address)
	if err != nil {
		return "", &order.SubmitError{
			Kind:    order.FailureValidation,
			Message: "shipping address not serializable",
			Cause:   fmt.Errorf("marshaling address: %w", err),
		}
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, itemsJSON,
		o.Summary.Subtotal, o.Summary.CouponDiscount, o.Summary.Shipping,
		o.Summary.Tax, o.Summary.Total,
		o.CouponCode, addressJSON, o.PaymentSummary,
	)
	if err != nil {
		return "", classifySubmitError(ctx, o.ID, err)
	}
	return o.ID, nil
}

func classifySubmitError(ctx context.Context, orderID string, err error) *order.SubmitError {
	if ctx.Err() != nil {
		return &order.SubmitError{
			Kind:    order.FailureTransport,
			Message: "order store unreachable",
			Cause:   fmt.Errorf("creating order %q: %w", orderID, err),
		}
	}
	return &order.SubmitError{
		Kind:    order.FailureValidation,
		Message: "order rejected by store",
		Cause:   fmt.Errorf("creating order %q: %w", orderID, err),
	}
}
