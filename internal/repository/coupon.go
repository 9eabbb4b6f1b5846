package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-checkout/internal/domain/coupon"
)

// Codes are matched exactly and case-sensitively; no UPPER() on either side.
const getCouponByCodeSQL = `SELECT code, discount_percent, description
	FROM coupons WHERE code = $1 AND active = TRUE`

var _ coupon.Directory = (*CouponDirectory)(nil)

// CouponDirectory implements coupon.Directory backed by PostgreSQL.
type CouponDirectory struct {
	pool *pgxpool.Pool
}

// NewCouponDirectory returns a CouponDirectory that uses the given pool.
func NewCouponDirectory(pool *pgxpool.Pool) *CouponDirectory {
	return &CouponDirectory{pool: pool}
}

// FindByCode looks up an active coupon by its exact code.
// Returns coupon.ErrUnknownCode when no matching active coupon exists.
func (r *CouponDirectory) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (coupon.Coupon, error) {
		var c coupon.Coupon
		err := row.Scan(&c.Code, &c.DiscountPercent, &c.Description)
		return c, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrUnknownCode
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}
