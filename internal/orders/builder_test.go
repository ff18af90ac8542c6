package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/audit"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	builder   *Builder
	lifecycle *Lifecycle
	stock     *ledger.MemStore
	orders    *MemStore
	sent      *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := catalog.NewMemCatalog(
		catalog.Product{ID: "prod-a", SKU: "SKU-A", Name: "Widget A", PriceCents: 1000, Active: true},
		catalog.Product{ID: "prod-b", SKU: "SKU-B", Name: "Widget B", PriceCents: 500, Active: true},
		catalog.Product{ID: "prod-x", SKU: "SKU-X", Name: "Retired", PriceCents: 100, Active: false},
	)
	stock := ledger.NewMemStore()
	require.NoError(t, stock.Create(context.Background(), ledger.Record{ProductID: "prod-a", Quantity: 10, ReorderLevel: 2}))
	require.NoError(t, stock.Create(context.Background(), ledger.Record{ProductID: "prod-b", Quantity: 10, ReorderLevel: 2}))

	sent := &notify.Recorder{}
	led := &ledger.Service{Store: stock, Notifier: sent}
	os := NewMemStore()
	return &fixture{
		builder:   &Builder{Catalog: cat, Ledger: led, Store: os, Notifier: sent, Audit: audit.Nop{}},
		lifecycle: &Lifecycle{Store: os, Ledger: led, Notifier: sent, Audit: audit.Nop{}},
		stock:     stock,
		orders:    os,
		sent:      sent,
	}
}

func (f *fixture) record(t *testing.T, productID string) ledger.Record {
	t.Helper()
	rec, err := f.stock.Get(context.Background(), productID)
	require.NoError(t, err)
	return rec
}

func createReq(items ...ItemInput) CreateRequest {
	return CreateRequest{
		UserID:          "user-1",
		Items:           items,
		ShippingAddress: Address{Name: "A B", Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		BillingAddress:  Address{Name: "A B", Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   "card",
	}
}

func TestCreate_HappyPath(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(
		ItemInput{ProductID: "prod-a", Qty: 2},
		ItemInput{ProductID: "prod-b", Qty: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, 2*1000+500, res.TotalCents)

	o, err := f.orders.Get(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, res.Number, o.Number)

	items, err := f.orders.Items(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1000, items[0].UnitPriceCents)
	assert.Equal(t, 2000, items[0].LineTotalCents)

	assert.Equal(t, 2, f.record(t, "prod-a").Reserved)
	assert.Equal(t, 1, f.record(t, "prod-b").Reserved)
	assert.Equal(t, 10, f.record(t, "prod-a").Quantity, "reserve never changes quantity")

	assert.Len(t, f.sent.ByKind(notify.KindOrderCreated), 1)
}

func TestCreate_PriceCapturedAtCreation(t *testing.T) {
	f := newFixture(t)
	cat := f.builder.Catalog.(*catalog.MemCatalog)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)

	cat.Put(catalog.Product{ID: "prod-a", SKU: "SKU-A", Name: "Widget A", PriceCents: 9999, Active: true})

	items, err := f.orders.Items(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 1000, items[0].UnitPriceCents, "later price changes never touch existing orders")
}

func TestCreate_AllOrNothingOnInsufficientStock(t *testing.T) {
	f := newFixture(t)

	// prod-a can only cover 1 unit
	_, err := f.builder.Ledger.Adjust(context.Background(), "prod-a", 9, ledger.OpReserve)
	require.NoError(t, err)

	_, err = f.builder.Create(context.Background(), createReq(
		ItemInput{ProductID: "prod-a", Qty: 2},
		ItemInput{ProductID: "prod-b", Qty: 1},
	))
	assert.ErrorIs(t, err, ledger.ErrInsufficientAvailable)

	// no reservation survives the failed request, in either validation order
	assert.Equal(t, 9, f.record(t, "prod-a").Reserved)
	assert.Equal(t, 0, f.record(t, "prod-b").Reserved)
}

func TestCreate_LaterItemFailureReleasesEarlierReservations(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.Ledger.Adjust(context.Background(), "prod-b", 10, ledger.OpReserve)
	require.NoError(t, err)

	_, err = f.builder.Create(context.Background(), createReq(
		ItemInput{ProductID: "prod-a", Qty: 2},
		ItemInput{ProductID: "prod-b", Qty: 1},
	))
	assert.ErrorIs(t, err, ledger.ErrInsufficientAvailable)

	assert.Equal(t, 0, f.record(t, "prod-a").Reserved, "prod-a reservation rolled back")
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{name: "empty items", req: createReq(), want: ErrValidation},
		{name: "missing user", req: CreateRequest{Items: []ItemInput{{ProductID: "prod-a", Qty: 1}}}, want: ErrValidation},
		{name: "non-positive qty", req: createReq(ItemInput{ProductID: "prod-a", Qty: 0}), want: ErrValidation},
		{name: "duplicate product", req: createReq(ItemInput{ProductID: "prod-a", Qty: 1}, ItemInput{ProductID: "prod-a", Qty: 2}), want: ErrValidation},
		{name: "unknown product", req: createReq(ItemInput{ProductID: "nope", Qty: 1}), want: catalog.ErrNotFound},
		{name: "inactive product", req: createReq(ItemInput{ProductID: "prod-x", Qty: 1}), want: ErrProductInactive},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.builder.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// none of the rejected requests left a reservation behind
	assert.Equal(t, 0, f.record(t, "prod-a").Reserved)
}

func TestNewNumber(t *testing.T) {
	urlSafe := regexp.MustCompile(`^ORD-[0-9T]+-[A-Z2-7]+$`)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		n := NewNumber(time.Now())
		assert.Regexp(t, urlSafe, n)
		assert.False(t, seen[n], "order numbers must not collide")
		seen[n] = true
	}
}
