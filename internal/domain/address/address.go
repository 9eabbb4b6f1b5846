package address

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
)

// Sentinel errors for address selection.
var (
	// ErrNotFound is returned when selecting a saved address that does not exist.
	ErrNotFound = errors.New("address not found")
)

// Address is a shipping destination. Exactly one saved address per account
// may be the default; that invariant is enforced by the backing store, not
// by this package.
type Address struct {
	ID        string
	Name      string
	Phone     string
	Street    string
	City      string
	State     string
	ZipCode   string
	IsDefault bool
}

// Complete reports whether the address carries every field checkout needs.
// A drafted address may be held incomplete in the book; completeness is
// re-checked at the Shipping gate.
func (a Address) Complete() bool {
	for _, f := range []string{a.Name, a.Phone, a.Street, a.City, a.State, a.ZipCode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// MissingFields lists the empty required fields, for field-scoped messages.
func (a Address) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", a.Name},
		{"phone", a.Phone},
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Saved provides the account's persisted addresses. Persistence of new
// addresses is outside the pipeline; the book only lists and resolves.
type Saved interface {
	List(ctx context.Context) ([]Address, error)
	GetByID(ctx context.Context, id string) (*Address, error)
}

// Book tracks the shipping address chosen for the current checkout session:
// either a saved address selected by ID or a draft entered inline. A draft
// is usable immediately, without being persisted first.
type Book struct {
	saved Saved

	mu      sync.Mutex
	current *Address
}

// NewBook creates a Book over the given saved-address source.
func NewBook(saved Saved) *Book {
	return &Book{saved: saved}
}

// ListSaved returns the account's saved addresses.
func (b *Book) ListSaved(ctx context.Context) ([]Address, error) {
	return b.saved.List(ctx)
}

// Select makes a saved address the session's shipping address.
func (b *Book) Select(ctx context.Context, id string) error {
	a, err := b.saved.GetByID(ctx, id)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.current = a
	b.mu.Unlock()
	return nil
}

// DraftNew makes an unsaved address the session's shipping address and
// returns it. The draft lives only as long as the session.
func (b *Book) DraftNew(fields Address) Address {
	fields.ID = ""
	fields.IsDefault = false

	b.mu.Lock()
	b.current = &fields
	b.mu.Unlock()
	return fields
}

// Current returns the session's shipping address, or nil when none has
// been chosen yet.
func (b *Book) Current() *Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	a := *b.current
	return &a
}
