package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/storefront-checkout/internal/domain/order"
)

// Submit finalizes the flow from the Review step. It re-runs every gate,
// builds the order payload from fresh state, and hands it to the Submitter.
//
// Guarantees:
//   - at most one submission is in flight per session (ErrSubmitInFlight);
//   - a response arriving after a backward navigation is stale and changes
//     nothing (ErrStaleSubmission);
//   - failure keeps the session in Review with cart, address, and payment
//     data intact;
//   - success clears the cart and marks the session completed.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return "", ErrCompleted
	}
	if c.step != StepReview {
		step := c.step
		c.mu.Unlock()
		return "", &BlockedError{Step: step, Action: ActionNext, Reason: "not at review step"}
	}
	if c.inFlight {
		c.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	c.inFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	release := func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}

	// Review trusts nothing: every earlier gate runs again right before
	// the payload is built.
	for _, step := range []Step{StepCart, StepShipping, StepPayment} {
		if err := c.gate(ctx, step); err != nil {
			release()
			return "", err
		}
	}

	o := &order.Order{
		ID:             uuid.New().String(),
		Items:          c.cart.Snapshot(),
		Summary:        c.quote(),
		Address:        *c.addresses.Current(),
		PaymentSummary: c.payments.Current().Summary(),
		CreatedAt:      time.Now().UTC(),
	}
	if active := c.coupon(); active != nil {
		o.CouponCode = active.Code
	}

	id, err := c.submitter.Submit(ctx, o)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if c.epoch != epoch {
		// The user navigated away while the call was pending. Whatever
		// the outcome, acting on it now would mutate state for a
		// cancelled intent.
		return "", ErrStaleSubmission
	}
	if err != nil {
		return "", err
	}

	c.completed = true
	c.cart.Clear()
	return id, nil
}
