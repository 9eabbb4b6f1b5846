// Command seed-db loads the demo catalog, promo codes, and saved addresses
// into PostgreSQL. Safe to re-run; every write is an upsert.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-checkout/internal/repository"
)

type productJSON struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	VendorID      string           `json:"vendorId"`
	InStock       bool             `json:"inStock"`
}

type couponSeed struct {
	code        string
	percent     decimal.Decimal
	description string
}

type addressSeed struct {
	id, name, phone, street, city, state, zip string
	isDefault                                 bool
}

func main() {
	var (
		databaseURL  string
		productsFile string
		accountID    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&accountID, "account-id", "demo-account", "account to attach the demo addresses to")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, accountID); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, accountID string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedAddresses(ctx, pool, accountID); err != nil {
		return errors.Wrap(err, "seed addresses")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	const query = `
		INSERT INTO products (id, name, price, original_price, vendor_id, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			vendor_id = EXCLUDED.vendor_id,
			in_stock = EXCLUDED.in_stock`

	for _, p := range products {
		if _, err := pool.Exec(ctx, query,
			p.ID, p.Name, p.Price, p.OriginalPrice, p.VendorID, p.InStock,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo coupons")

	coupons := []couponSeed{
		{code: "SAVE10", percent: decimal.NewFromInt(10), description: "10% off your order"},
		{code: "WELCOME20", percent: decimal.NewFromInt(20), description: "Welcome: 20% off your first order"},
		{code: "VIP30", percent: decimal.NewFromInt(30), description: "VIP members: 30% off"},
	}

	const query = `
		INSERT INTO coupons (code, discount_percent, description, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			discount_percent = EXCLUDED.discount_percent,
			description = EXCLUDED.description,
			active = TRUE`

	for _, c := range coupons {
		if _, err := pool.Exec(ctx, query, c.code, c.percent, c.description); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}

		slog.Info("upserted coupon", slog.String("code", c.code), slog.String("description", c.description))
	}

	return nil
}

func seedAddresses(ctx context.Context, pool *pgxpool.Pool, accountID string) error {
	slog.Info("seeding demo addresses", slog.String("account", accountID))

	addresses := []addressSeed{
		{
			id: "addr-home", name: "Jordan Smith", phone: "+1 555 0100",
			street: "221B Maple Street", city: "Springfield", state: "IL", zip: "62704",
			isDefault: true,
		},
		{
			id: "addr-office", name: "Jordan Smith", phone: "+1 555 0101",
			street: "42 Commerce Plaza, Suite 900", city: "Springfield", state: "IL", zip: "62701",
		},
	}

	const query = `
		INSERT INTO addresses (id, account_id, name, phone, street, city, state, zip_code, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			is_default = EXCLUDED.is_default`

	for _, a := range addresses {
		if _, err := pool.Exec(ctx, query,
			a.id, accountID, a.name, a.phone, a.street, a.city, a.state, a.zip, a.isDefault,
		); err != nil {
			return errors.Wrapf(err, "upsert address %s", a.id)
		}

		slog.Info("upserted address", slog.String("id", a.id), slog.String("city", a.city))
	}

	return nil
}
