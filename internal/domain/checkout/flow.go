// Package checkout sequences the Cart -> Shipping -> Payment -> Review flow.
// The controller is an explicit finite-state machine: transitions live in a
// table keyed by (step, action), and every forward move is guarded by a
// completion gate. Gates re-run on every attempt, so re-entering a later
// step re-validates instead of trusting stale state.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-checkout/internal/domain/address"
	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/coupon"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
	"github.com/xenking/storefront-checkout/internal/domain/product"
)

// Step is a checkout flow state.
type Step string

const (
	StepCart     Step = "cart"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
)

// Action is a user-driven flow transition request.
type Action string

const (
	// ActionNext advances to the following step, subject to the gate.
	ActionNext Action = "next"
	// ActionBack returns to the previous step. Always allowed, never
	// discards data entered for the step being left.
	ActionBack Action = "back"
)

// transitions is the flow's transition table. A missing entry means the
// move does not exist; gates decide whether an existing move is allowed.
var transitions = map[Step]map[Action]Step{
	StepCart:     {ActionNext: StepShipping},
	StepShipping: {ActionNext: StepPayment, ActionBack: StepCart},
	StepPayment:  {ActionNext: StepReview, ActionBack: StepShipping},
	StepReview:   {ActionBack: StepPayment},
}

// BlockedError reports a transition that did not occur because its gate
// precondition failed. Reason is suitable for display next to the step.
type BlockedError struct {
	Step   Step
	Action Action
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("checkout %s blocked at %s: %s", e.Action, e.Step, e.Reason)
}

// Sentinel errors for flow control.
var (
	// ErrSubmitInFlight is returned when a submission is already pending.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	// ErrStaleSubmission is returned when a submission response arrives
	// after the user navigated away; the result is discarded unused.
	ErrStaleSubmission = errors.New("submission superseded by navigation")
	// ErrCompleted is returned for any action on a finished session.
	ErrCompleted = errors.New("checkout session already completed")
)

// Quoter prices the current cart and coupon state. The controller never
// computes money itself; it asks for a fresh quote when it needs one.
type Quoter func() pricing.Summary

// ActiveCoupon reports the session's applied coupon, or nil.
type ActiveCoupon func() *coupon.Coupon

// Controller drives one checkout attempt over the session's cart, address
// book, and payment selector. It is created when checkout begins and is
// discarded on successful submission or explicit cancellation.
type Controller struct {
	cart      *cart.Store
	products  product.Repository
	addresses *address.Book
	payments  *payment.Selector
	quote     Quoter
	coupon    ActiveCoupon
	submitter order.Submitter

	mu        sync.Mutex
	step      Step
	epoch     uint64
	inFlight  bool
	completed bool
}

// NewController starts a flow at the Cart step.
func NewController(
	cartStore *cart.Store,
	products product.Repository,
	addresses *address.Book,
	payments *payment.Selector,
	quote Quoter,
	activeCoupon ActiveCoupon,
	submitter order.Submitter,
) *Controller {
	return &Controller{
		cart:      cartStore,
		products:  products,
		addresses: addresses,
		payments:  payments,
		quote:     quote,
		coupon:    activeCoupon,
		submitter: submitter,
		step:      StepCart,
	}
}

// Step returns the flow's current step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Completed reports whether the session finished with a successful submit.
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Advance applies an action to the flow. Forward moves run the gate for
// the step being left; a failed gate leaves the step unchanged and returns
// a *BlockedError naming the precondition. Backward moves always succeed
// and mark any in-flight submission stale.
func (c *Controller) Advance(ctx context.Context, action Action) (Step, error) {
	c.mu.Lock()
	if c.completed {
		step := c.step
		c.mu.Unlock()
		return step, ErrCompleted
	}
	from := c.step
	next, ok := transitions[from][action]
	c.mu.Unlock()

	if !ok {
		return from, &BlockedError{Step: from, Action: action, Reason: "no such transition"}
	}

	if action == ActionNext {
		if err := c.gate(ctx, from); err != nil {
			return from, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != from {
		// Lost a race with another request on the same session; report
		// the current step without moving.
		return c.step, &BlockedError{Step: c.step, Action: action, Reason: "step changed concurrently"}
	}
	if action == ActionBack {
		// Anything submitted before this navigation is a cancelled intent.
		c.epoch++
	}
	c.step = next
	return next, nil
}

// gate runs the completion precondition for leaving the given step.
func (c *Controller) gate(ctx context.Context, from Step) error {
	switch from {
	case StepCart:
		return c.gateCart(ctx)
	case StepShipping:
		return c.gateShipping()
	case StepPayment:
		return c.gatePayment()
	default:
		return nil
	}
}

// gateCart requires a non-empty cart with every item in stock. Stock is
// re-validated against the product read-model at the gate, not trusted
// from the add-time snapshot.
func (c *Controller) gateCart(ctx context.Context) error {
	items := c.cart.Snapshot()
	if len(items) == 0 {
		return &BlockedError{Step: StepCart, Action: ActionNext, Reason: "cart is empty"}
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	fetched, err := c.products.GetByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "re-check stock")
	}

	inStock := make(map[string]bool, len(fetched))
	for _, p := range fetched {
		inStock[p.ID] = p.InStock
	}

	var out []string
	for _, it := range items {
		if !inStock[it.ProductID] {
			out = append(out, it.Name)
		}
	}
	if len(out) > 0 {
		return &BlockedError{
			Step:   StepCart,
			Action: ActionNext,
			Reason: "out of stock: " + strings.Join(out, ", "),
		}
	}
	return nil
}

func (c *Controller) gateShipping() error {
	addr := c.addresses.Current()
	if addr == nil {
		return &BlockedError{Step: StepShipping, Action: ActionNext, Reason: "no shipping address selected"}
	}
	if missing := addr.MissingFields(); len(missing) > 0 {
		return &BlockedError{
			Step:   StepShipping,
			Action: ActionNext,
			Reason: "address missing: " + strings.Join(missing, ", "),
		}
	}
	return nil
}

func (c *Controller) gatePayment() error {
	m := c.payments.Current()
	if m == nil {
		return &BlockedError{Step: StepPayment, Action: ActionNext, Reason: "no payment method selected"}
	}
	if !m.Complete() {
		return &BlockedError{Step: StepPayment, Action: ActionNext, Reason: "payment method incomplete"}
	}
	return nil
}
