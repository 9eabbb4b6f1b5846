package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrUnknownCode is returned when a coupon code is not present in the
// directory or is inactive.
var ErrUnknownCode = errors.New("coupon code not recognized")

// Coupon is a percentage discount applied to the cart subtotal. At most one
// coupon is active per session; applying a new one replaces the previous
// one, it never stacks.
type Coupon struct {
	Code            string
	DiscountPercent decimal.Decimal
	Description     string
}

// Directory provides lookup of coupons by exact code. The directory is an
// external configuration surface (database, ops tooling), never a constant
// baked into the pipeline.
type Directory interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// Rejection is a typed, user-displayable validation failure. It is a value
// the caller renders next to the coupon field; it must never surface as an
// unhandled fault or touch cart state.
type Rejection struct {
	Code   string
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}
