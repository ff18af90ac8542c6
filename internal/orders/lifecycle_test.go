package orders

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusProcessing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
}

func TestTransition_ConfirmSellsReservedUnits(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 3}))
	require.NoError(t, err)

	o, err := f.lifecycle.Transition(context.Background(), res.OrderID, StatusConfirmed, "payment")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)

	rec := f.record(t, "prod-a")
	assert.Equal(t, 7, rec.Quantity, "quantity decreases by the sold units")
	assert.Equal(t, 0, rec.Reserved, "reservation fully converted")
}

func TestTransition_CancelPendingReleasesReservation(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 2}))
	require.NoError(t, err)

	o, err := f.lifecycle.Transition(context.Background(), res.OrderID, StatusCancelled, "customer")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)

	rec := f.record(t, "prod-a")
	assert.Equal(t, 10, rec.Quantity, "quantity untouched by cancel")
	assert.Equal(t, 0, rec.Reserved)
}

func TestTransition_SameStatusIsNoOp(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 2}))
	require.NoError(t, err)

	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, StatusCancelled, "customer")
	require.NoError(t, err)

	f.sent.Reset()
	o, err := f.lifecycle.Transition(context.Background(), res.OrderID, StatusCancelled, "customer")
	require.NoError(t, err, "second cancel is a harmless no-op")
	assert.Equal(t, StatusCancelled, o.Status)

	assert.Empty(t, f.sent.Sent(), "no duplicate notifications")
	assert.Equal(t, 0, f.record(t, "prod-a").Reserved, "no duplicate ledger effects")
	assert.Equal(t, 10, f.record(t, "prod-a").Quantity)
}

func TestTransition_Illegal(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)

	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, StatusShipped, "admin")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, Status("bogus"), "admin")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.lifecycle.Transition(context.Background(), "missing", StatusCancelled, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_AdminCancelAfterConfirmDoesNotRestock(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 4}))
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, StatusConfirmed, "payment")
	require.NoError(t, err)

	o, err := f.lifecycle.Transition(context.Background(), res.OrderID, StatusCancelled, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)

	// units were already sold at confirm; cancel after confirm keeps them sold
	rec := f.record(t, "prod-a")
	assert.Equal(t, 6, rec.Quantity)
	assert.Equal(t, 0, rec.Reserved)
}

func TestTransition_AdminProgressionHasNoLedgerEffect(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 2}))
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, StatusConfirmed, "payment")
	require.NoError(t, err)
	after := f.record(t, "prod-a")

	for _, st := range []Status{StatusProcessing, StatusShipped, StatusDelivered} {
		_, err = f.lifecycle.Transition(context.Background(), res.OrderID, st, "admin")
		require.NoError(t, err)
		assert.Equal(t, after, f.record(t, "prod-a"), "no ledger effect at %s", st)
	}

	// delivered is terminal
	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, StatusCancelled, "admin")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_NotifiesCustomer(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 1}))
	require.NoError(t, err)

	f.sent.Reset()
	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, StatusConfirmed, "payment")
	require.NoError(t, err)

	got := f.sent.ByKind(notify.KindOrderStatusChanged)
	require.Len(t, got, 1)
	assert.Equal(t, "user-1", got[0].UserID)
}

// guard: sell must stay within what the record holds even if reservations
// were manually released in between
func TestTransition_ConfirmFailsWhenStockVanished(t *testing.T) {
	f := newFixture(t)

	res, err := f.builder.Create(context.Background(), createReq(ItemInput{ProductID: "prod-a", Qty: 2}))
	require.NoError(t, err)

	_, err = f.lifecycle.Ledger.Adjust(context.Background(), "prod-a", 2, ledger.OpRelease)
	require.NoError(t, err)
	_, err = f.lifecycle.Ledger.Adjust(context.Background(), "prod-a", -10, ledger.OpAdjust)
	require.NoError(t, err)

	_, err = f.lifecycle.Transition(context.Background(), res.OrderID, StatusConfirmed, "payment")
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	o, err := f.orders.Get(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status, "status unchanged when the ledger refuses")
}
