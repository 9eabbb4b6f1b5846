package cart

import (
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart mutations.
var (
	// ErrLineNotFound is returned when a mutation references a line item
	// that is not in the cart.
	ErrLineNotFound = errors.New("line item not found")
	// ErrInvalidQuantity is returned when a quantity below 1 is submitted.
	// Dropping a quantity to zero is not a removal; RemoveItem is.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidPrice is returned when a line item carries a negative unit price.
	ErrInvalidPrice = errors.New("unit price must not be negative")
)

// LineItem is one product entry in the cart with its quantity and the price
// snapshot taken when the product was added.
type LineItem struct {
	ProductID         string
	Name              string
	UnitPrice         decimal.Decimal
	OriginalUnitPrice *decimal.Decimal
	Quantity          int
	VendorID          string
	InStock           bool
}

// Store owns the mutable line item collection for one shopping session.
// All reads go through Snapshot, which returns deep copies; callers never
// see or mutate the backing slice. Store computes no prices itself.
type Store struct {
	mu    sync.Mutex
	items []LineItem
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{}
}

// AddItem appends a line item to the cart. Adding a product that is already
// in the cart merges quantities instead of creating a second line.
func (s *Store) AddItem(item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Quantity += item.Quantity
			return nil
		}
	}
	s.items = append(s.items, item)
	return nil
}

// SetQuantity replaces the quantity of an existing line item. Quantities
// below 1 are rejected as a no-op rather than treated as removal, so a
// stray decrement can never silently delete a line.
func (s *Store) SetQuantity(productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveItem deletes a line item from the cart.
func (s *Store) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Clear removes every line item. Confirmation of the gesture is the
// caller's responsibility; Clear itself is unconditional.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Snapshot returns a copy of the current line items in insertion order.
func (s *Store) Snapshot() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	for i, it := range s.items {
		out[i] = it
		if it.OriginalUnitPrice != nil {
			orig := *it.OriginalUnitPrice
			out[i].OriginalUnitPrice = &orig
		}
	}
	return out
}

// Len reports the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
