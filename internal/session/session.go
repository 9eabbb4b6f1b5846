// Package session ties one client's cart, coupon, address, payment, and
// checkout flow together under a session ID. Sessions live in memory and
// are evicted after an idle TTL; the pipeline is single-actor per session,
// but the registry itself is shared by all HTTP workers.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/domain/address"
	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/domain/coupon"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
	"github.com/xenking/storefront-checkout/internal/domain/product"
)

// Session aggregates the per-client state of the cart-to-order pipeline.
type Session struct {
	ID       string
	Cart     *cart.Store
	Address  *address.Book
	Payment  *payment.Selector
	Flow     *checkout.Controller
	lastSeen time.Time

	mu     sync.Mutex
	active *coupon.Coupon
}

// ApplyCoupon makes the coupon the session's active one. A newly applied
// coupon replaces the previous one; coupons never stack.
func (s *Session) ApplyCoupon(c coupon.Coupon) {
	s.mu.Lock()
	s.active = &c
	s.mu.Unlock()
}

// RemoveCoupon clears the active coupon.
func (s *Session) RemoveCoupon() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

// ActiveCoupon returns the applied coupon, or nil.
func (s *Session) ActiveCoupon() *coupon.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	c := *s.active
	return &c
}

// Config holds the pricing inputs shared by every session.
type Config struct {
	ShippingPolicy pricing.ShippingPolicy
	TaxRate        decimal.Decimal
	IdleTTL        time.Duration
}

// Registry creates, resolves, and evicts sessions. Lookup is by the opaque
// session ID the client echoes back in a header.
type Registry struct {
	cfg       Config
	products  product.Repository
	addresses address.Saved
	submitter order.Submitter

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry(cfg Config, products product.Repository, addresses address.Saved, submitter order.Submitter) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &Registry{
		cfg:       cfg,
		products:  products,
		addresses: addresses,
		submitter: submitter,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session for id, creating a fresh one when the id is
// unknown or blank. The returned session's ID is authoritative; handlers
// echo it back to the client.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = time.Now()
		return s
	}

	s := r.newSession()
	r.sessions[s.ID] = s
	return s
}

// Drop discards a session, ending any checkout attempt it carried.
// Called after a successful submission and on explicit cancellation.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) newSession() *Session {
	s := &Session{
		ID:       uuid.New().String(),
		Cart:     cart.NewStore(),
		Address:  address.NewBook(r.addresses),
		Payment:  payment.NewSelector(),
		lastSeen: time.Now(),
	}
	quote := func() pricing.Summary {
		return pricing.Price(s.Cart.Snapshot(), s.ActiveCoupon(), r.cfg.ShippingPolicy, r.cfg.TaxRate)
	}
	s.Flow = checkout.NewController(
		s.Cart, r.products, s.Address, s.Payment,
		quote, s.ActiveCoupon, r.submitter,
	)
	return s
}

// Quote prices the session's current cart and coupon state. Every handler
// response recomputes through here; summaries are never cached.
func (r *Registry) Quote(s *Session) pricing.Summary {
	return pricing.Price(s.Cart.Snapshot(), s.ActiveCoupon(), r.cfg.ShippingPolicy, r.cfg.TaxRate)
}

// StartCleanup evicts idle sessions every interval until ctx is done.
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.evictIdle(now)
			}
		}
	}()
}

func (r *Registry) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.cfg.IdleTTL {
			delete(r.sessions, id)
		}
	}
}
