package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-checkout/internal/domain/address"
	"github.com/xenking/storefront-checkout/internal/domain/coupon"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/pricing"
	"github.com/xenking/storefront-checkout/internal/domain/product"
	"github.com/xenking/storefront-checkout/internal/session"
)

// --- In-memory collaborators ---

type memProducts map[string]product.Product

func (m memProducts) List(context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	return out, nil
}

func (m memProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m memProducts) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type memAddresses map[string]address.Address

func (m memAddresses) List(context.Context) ([]address.Address, error) {
	out := make([]address.Address, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	return out, nil
}

func (m memAddresses) GetByID(_ context.Context, id string) (*address.Address, error) {
	a, ok := m[id]
	if !ok {
		return nil, address.ErrNotFound
	}
	return &a, nil
}

type memSubmitter struct {
	err  error
	last *order.Order
}

func (s *memSubmitter) Submit(_ context.Context, o *order.Order) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.last = o
	return o.ID, nil
}

// --- Test server ---

type env struct {
	srv       *httptest.Server
	submitter *memSubmitter
	sessionID string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	orig := decimal.NewFromInt(80)
	products := memProducts{
		"p1": {ID: "p1", Name: "Walnut desk", Price: decimal.NewFromInt(100), VendorID: "v1", InStock: true},
		"p2": {ID: "p2", Name: "Desk lamp", Price: decimal.NewFromInt(50), OriginalPrice: &orig, VendorID: "v2", InStock: true},
	}
	saved := memAddresses{
		"a1": {
			ID: "a1", Name: "Dana Reyes", Phone: "555-0100", Street: "12 Harbor Way",
			City: "Portsmouth", State: "NH", ZipCode: "03801", IsDefault: true,
		},
	}
	submitter := &memSubmitter{}

	registry := session.NewRegistry(session.Config{
		ShippingPolicy: pricing.ShippingPolicy{
			FlatFee:       decimal.NewFromInt(25),
			FreeThreshold: decimal.NewFromInt(500),
		},
		TaxRate: decimal.RequireFromString("0.15"),
		IdleTTL: time.Hour,
	}, products, saved, submitter)

	validator := coupon.NewDirectoryValidator(coupon.StaticDirectory{
		"SAVE10": {Code: "SAVE10", DiscountPercent: decimal.NewFromInt(10)},
	})

	h := NewHandler(registry, products, validator)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return &env{srv: srv, submitter: submitter}
}

func (e *env) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if e.sessionID != "" {
		req.Header.Set(SessionHeader, e.sessionID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if id := resp.Header.Get(SessionHeader); id != "" {
		e.sessionID = id
	}

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		_ = dec.Decode(&decoded)
	}
	return resp, decoded
}

func num(t *testing.T, body map[string]any, path ...string) string {
	t.Helper()
	var cur any = body
	for _, p := range path {
		m, ok := cur.(map[string]any)
		require.True(t, ok, "no object at %v", path)
		cur = m[p]
	}
	n, ok := cur.(json.Number)
	require.True(t, ok, "no number at %v", path)
	return n.String()
}

// --- Tests ---

func TestCartLifecycle(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, e.sessionID, "first response must assign a session id")
	assert.Equal(t, "200", num(t, body, "summary", "subtotal"))

	// Price snapshot and savings come from the read-model.
	resp, body = e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p2", "quantity": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "250", num(t, body, "summary", "subtotal"))
	assert.Equal(t, "30", num(t, body, "summary", "savings"))
	assert.Equal(t, "25", num(t, body, "summary", "shipping"))
	assert.Equal(t, "37.5", num(t, body, "summary", "tax"))
	assert.Equal(t, "312.5", num(t, body, "summary", "total"))

	// Quantity zero is rejected and changes nothing.
	resp, _ = e.do(t, http.MethodPatch, "/api/cart/items/p1", map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	_, body = e.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, "250", num(t, body, "summary", "subtotal"))

	resp, body = e.do(t, http.MethodDelete, "/api/cart/items/p2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "200", num(t, body, "summary", "subtotal"))

	resp, body = e.do(t, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", num(t, body, "summary", "total"))
}

func TestUnknownProduct(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "ghost", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCouponApplyAndRemove(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "quantity": 10})

	_, before := e.do(t, http.MethodGet, "/api/cart", nil)
	totalBefore := num(t, before, "summary", "total")

	resp, body := e.do(t, http.MethodPost, "/api/cart/coupon", map[string]any{"code": " SAVE10 "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SAVE10", body["couponCode"])
	assert.Equal(t, "100", num(t, body, "summary", "couponDiscount"))
	// Tax on the discounted amount: (1000-100) * 0.15.
	assert.Equal(t, "135", num(t, body, "summary", "tax"))

	// Bad code: 422, cart untouched.
	resp, errBody := e.do(t, http.MethodPost, "/api/cart/coupon", map[string]any{"code": "save10"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, errBody["message"], "not recognized")
	_, body = e.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, "SAVE10", body["couponCode"], "rejected code must not displace the active coupon")

	resp, body = e.do(t, http.MethodDelete, "/api/cart/coupon", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, totalBefore, num(t, body, "summary", "total"), "removal restores the pre-coupon total")
}

func TestCheckoutFlow(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "quantity": 2})

	// Cart -> Shipping.
	resp, body := e.do(t, http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "shipping", body["step"])

	// Shipping -> Payment blocked without an address.
	resp, errBody := e.do(t, http.MethodPost, "/api/checkout/next", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, errBody["message"], "address")

	// Select the saved address, then advance.
	resp, _ = e.do(t, http.MethodPost, "/api/checkout/address", map[string]any{"id": "a1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = e.do(t, http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "payment", body["step"])

	// A two digit CVV blocks Payment -> Review.
	e.do(t, http.MethodPost, "/api/checkout/payment", map[string]any{
		"kind": "card",
		"card": map[string]any{
			"number": "4111-1111-1111-1111", "expiry": "1226",
			"cvv": "12", "holderName": "Dana Reyes",
		},
	})
	resp, _ = e.do(t, http.MethodPost, "/api/checkout/next", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Complete card passes; note the input arrives unformatted.
	e.do(t, http.MethodPost, "/api/checkout/payment", map[string]any{
		"kind": "card",
		"card": map[string]any{
			"number": "4111111111111111", "expiry": "12/26",
			"cvv": "123", "holderName": "Dana Reyes",
		},
	})
	resp, body = e.do(t, http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "review", body["step"])
	assert.Equal(t, "card ending 1111", body["payment"])

	// Submit succeeds, discards the session, and the next request starts fresh.
	resp, body = e.do(t, http.MethodPost, "/api/checkout/submit", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["orderId"])

	submitted := e.submitter.last
	require.NotNil(t, submitted)
	assert.Equal(t, "card ending 1111", submitted.PaymentSummary)
	assert.Equal(t, "a1", submitted.Address.ID)
	assert.True(t, decimal.NewFromInt(200).Equal(submitted.Summary.Subtotal))

	oldSession := e.sessionID
	_, body = e.do(t, http.MethodGet, "/api/cart", nil)
	assert.NotEqual(t, oldSession, e.sessionID)
	assert.Equal(t, "0", num(t, body, "summary", "total"))
}

func TestCheckoutBlockedOnEmptyCart(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodPost, "/api/checkout/next", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["message"], "empty")
}

func TestSubmitFailureKeepsSession(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "quantity": 1})
	e.do(t, http.MethodPost, "/api/checkout/address", map[string]any{"id": "a1"})
	e.do(t, http.MethodPost, "/api/checkout/payment", map[string]any{"kind": "bank_transfer"})
	for range 3 {
		resp, _ := e.do(t, http.MethodPost, "/api/checkout/next", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	e.submitter.err = &order.SubmitError{Kind: order.FailureTransport, Message: "order store unreachable"}
	resp, body := e.do(t, http.MethodPost, "/api/checkout/submit", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["message"], "unreachable")

	// Same session, still at review, retry succeeds.
	_, body = e.do(t, http.MethodGet, "/api/checkout", nil)
	assert.Equal(t, "review", body["step"])

	e.submitter.err = nil
	resp, _ = e.do(t, http.MethodPost, "/api/checkout/submit", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCancelDiscardsSession(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "quantity": 1})
	old := e.sessionID

	resp, _ := e.do(t, http.MethodDelete, "/api/checkout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := e.do(t, http.MethodGet, "/api/cart", nil)
	assert.NotEqual(t, old, e.sessionID)
	assert.Equal(t, "0", num(t, body, "summary", "subtotal"))
}

func TestDraftAddressUsableWithoutPersistence(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1", "quantity": 1})
	e.do(t, http.MethodPost, "/api/checkout/next", nil)

	resp, body := e.do(t, http.MethodPost, "/api/checkout/address", map[string]any{
		"name": "Sam Okafor", "phone": "555-0101", "street": "9 Mill Rd",
		"city": "Keene", "state": "NH", "zipCode": "03431",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	addr, ok := body["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Sam Okafor", addr["name"])

	resp, body = e.do(t, http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "payment", body["step"])
}
