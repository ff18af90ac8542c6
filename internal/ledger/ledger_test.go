package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProductID = "prod-1"

func newService(t *testing.T, rec Record) (*Service, *notify.Recorder) {
	t.Helper()
	store := NewMemStore()
	require.NoError(t, store.Create(context.Background(), rec))
	rc := &notify.Recorder{}
	return &Service{Store: store, Notifier: rc}, rc
}

func TestAdjust_Reserve(t *testing.T) {
	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: 10, ReorderLevel: 2})

	adj, err := svc.Adjust(context.Background(), testProductID, 4, OpReserve)
	require.NoError(t, err)
	assert.Equal(t, 10, adj.NewQuantity)
	assert.Equal(t, 4, adj.NewReserved)
	assert.Equal(t, 6, adj.Available)

	_, err = svc.Adjust(context.Background(), testProductID, 7, OpReserve)
	assert.ErrorIs(t, err, ErrInsufficientAvailable)

	// failed reserve leaves counters untouched
	rec, err := svc.Store.Get(context.Background(), testProductID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
	assert.Equal(t, 4, rec.Reserved)
}

func TestAdjust_ReleaseClampsAtZero(t *testing.T) {
	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: 10, Reserved: 5})

	adj, err := svc.Adjust(context.Background(), testProductID, 100, OpRelease)
	require.NoError(t, err)
	assert.Equal(t, 0, adj.NewReserved)
	assert.Equal(t, 10, adj.NewQuantity)
}

func TestAdjust_ReserveReleaseRoundTrip(t *testing.T) {
	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: 10, Reserved: 2})

	_, err := svc.Adjust(context.Background(), testProductID, 3, OpReserve)
	require.NoError(t, err)
	adj, err := svc.Adjust(context.Background(), testProductID, 3, OpRelease)
	require.NoError(t, err)

	assert.Equal(t, 2, adj.NewReserved)
	assert.Equal(t, 10, adj.NewQuantity)
}

func TestAdjust_SellConsumesReservedFirst(t *testing.T) {
	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: 10, Reserved: 3})

	// 3 reserved + 2 direct
	adj, err := svc.Adjust(context.Background(), testProductID, 5, OpSell)
	require.NoError(t, err)
	assert.Equal(t, 5, adj.NewQuantity)
	assert.Equal(t, 0, adj.NewReserved)

	_, err = svc.Adjust(context.Background(), testProductID, 6, OpSell)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAdjust_SellAfterReserveKeepsInvariant(t *testing.T) {
	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: 3})

	_, err := svc.Adjust(context.Background(), testProductID, 3, OpReserve)
	require.NoError(t, err)
	adj, err := svc.Adjust(context.Background(), testProductID, 3, OpSell)
	require.NoError(t, err)

	assert.Equal(t, 0, adj.NewQuantity)
	assert.Equal(t, 0, adj.NewReserved)
	assert.GreaterOrEqual(t, adj.NewReserved, 0)
}

func TestAdjust_ManualAdjust(t *testing.T) {
	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: 4})

	adj, err := svc.Adjust(context.Background(), testProductID, -3, OpAdjust)
	require.NoError(t, err)
	assert.Equal(t, 1, adj.NewQuantity)

	_, err = svc.Adjust(context.Background(), testProductID, -2, OpAdjust)
	assert.ErrorIs(t, err, ErrNegativeResult)
}

func TestAdjust_Validation(t *testing.T) {
	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: 4})

	for _, kind := range []OpKind{OpReserve, OpRelease, OpSell, OpRestock} {
		_, err := svc.Adjust(context.Background(), testProductID, -1, kind)
		assert.ErrorIs(t, err, ErrInvalidQuantity, string(kind))
	}

	_, err := svc.Adjust(context.Background(), "missing", 1, OpReserve)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjust_LowStockAlertFiresOnceAtCrossing(t *testing.T) {
	svc, rc := newService(t, Record{ProductID: testProductID, Quantity: 10, ReorderLevel: 5})

	_, err := svc.Adjust(context.Background(), testProductID, 4, OpReserve)
	require.NoError(t, err)
	assert.Empty(t, rc.ByKind(notify.KindLowStock), "available 6 > reorder 5, no alert yet")

	_, err = svc.Adjust(context.Background(), testProductID, 3, OpReserve)
	require.NoError(t, err)
	assert.Len(t, rc.ByKind(notify.KindLowStock), 1, "available 3 <= reorder 5 crossed from above")

	// staying below the threshold does not re-alert
	_, err = svc.Adjust(context.Background(), testProductID, 1, OpReserve)
	require.NoError(t, err)
	assert.Len(t, rc.ByKind(notify.KindLowStock), 1)
}

func TestAdjust_OutOfStockAndRestockedAlerts(t *testing.T) {
	svc, rc := newService(t, Record{ProductID: testProductID, Quantity: 2, ReorderLevel: 3})

	_, err := svc.Adjust(context.Background(), testProductID, 2, OpSell)
	require.NoError(t, err)
	assert.Len(t, rc.ByKind(notify.KindOutOfStock), 1)

	_, err = svc.Adjust(context.Background(), testProductID, 10, OpRestock)
	require.NoError(t, err)
	assert.Len(t, rc.ByKind(notify.KindRestocked), 1)

	// restock while already above the reorder level stays silent
	_, err = svc.Adjust(context.Background(), testProductID, 5, OpRestock)
	require.NoError(t, err)
	assert.Len(t, rc.ByKind(notify.KindRestocked), 1)
}

func TestAdjust_ConcurrentReservesNeverOversell(t *testing.T) {
	const available = 6
	const callers = 20

	svc, _ := newService(t, Record{ProductID: testProductID, Quantity: available})

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Adjust(context.Background(), testProductID, 1, OpReserve)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientAvailable)
		}
	}
	assert.Equal(t, available, succeeded, "exactly the available units reserve")

	rec, err := svc.Store.Get(context.Background(), testProductID)
	require.NoError(t, err)
	assert.Equal(t, available, rec.Reserved)
	assert.Equal(t, available, rec.Quantity)
	assert.GreaterOrEqual(t, rec.Quantity, rec.Reserved)
}
