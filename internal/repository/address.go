package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-checkout/internal/domain/address"
)

const (
	listAddressesSQL = `SELECT id, name, phone, street, city, state, zip_code, is_default
		FROM addresses WHERE account_id = $1
		ORDER BY is_default DESC, created_at`

	getAddressByIDSQL = `SELECT id, name, phone, street, city, state, zip_code, is_default
		FROM addresses WHERE account_id = $1 AND id = $2`
)

var _ address.Saved = (*AddressRepository)(nil)

// AddressRepository implements address.Saved for one account, backed by
// PostgreSQL. The partial unique index on (account_id) WHERE is_default
// keeps the one-default-per-account invariant on the storage side.
type AddressRepository struct {
	pool      *pgxpool.Pool
	accountID string
}

// NewAddressRepository returns the saved-address view for the given account.
func NewAddressRepository(pool *pgxpool.Pool, accountID string) *AddressRepository {
	return &AddressRepository{pool: pool, accountID: accountID}
}

// List returns the account's saved addresses, default first.
func (r *AddressRepository) List(ctx context.Context) ([]address.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, r.accountID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}

	addrs, err := pgx.CollectRows(rows, scanAddress)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}
	return addrs, nil
}

// GetByID resolves one saved address or address.ErrNotFound.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressByIDSQL, r.accountID, id)
	if err != nil {
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	return &a, nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(&a.ID, &a.Name, &a.Phone, &a.Street, &a.City, &a.State, &a.ZipCode, &a.IsDefault)
	return a, err
}
