package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/audit"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Lifecycle governs order status transitions and keeps the inventory ledger
// consistent with the outcome: confirm converts reservations into sales,
// cancel from pending gives them back.
type Lifecycle struct {
	Store    Store
	Ledger   *ledger.Service
	Notifier notify.Notifier
	Audit    audit.Recorder
}

// Transition moves an order to the target status. Transitioning to the
// current status is a no-op success with no ledger effects, no audit entry
// and no notification.
func (l *Lifecycle) Transition(ctx context.Context, orderID string, to Status, actorID string) (Order, error) {
	if !to.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	o, err := l.Store.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	from := o.Status
	if from == to {
		return o, nil
	}
	if !CanTransition(from, to) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	switch {
	case to == StatusConfirmed:
		// payment settled: reserved units become sold
		if err := l.ledgerEach(ctx, orderID, ledger.OpSell); err != nil {
			return Order{}, err
		}
	case to == StatusCancelled && from == StatusPending:
		// stock was only promised, give it back; after confirm the units are
		// already sold and stay sold (refund does not restock)
		if err := l.ledgerEach(ctx, orderID, ledger.OpRelease); err != nil {
			return Order{}, err
		}
	}

	if err := l.Store.UpdateStatus(ctx, orderID, to); err != nil {
		return Order{}, err
	}
	o.Status = to

	if l.Audit != nil {
		l.Audit.Record(ctx, audit.Entry{
			EntityType: "order",
			EntityID:   orderID,
			Action:     "status_changed",
			OldValues:  map[string]any{"status": string(from)},
			NewValues:  map[string]any{"status": string(to)},
			ActorID:    actorID,
		})
	}
	if l.Notifier != nil {
		l.Notifier.Notify(ctx, notify.Notification{
			UserID:   o.UserID,
			Kind:     notify.KindOrderStatusChanged,
			Title:    "Order update",
			Body:     fmt.Sprintf("order %s is now %s", o.Number, to),
			Metadata: map[string]any{"order_id": orderID, "from": string(from), "to": string(to)},
		})
	}
	return o, nil
}

func (l *Lifecycle) ledgerEach(ctx context.Context, orderID string, kind ledger.OpKind) error {
	items, err := l.Store.Items(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := l.Ledger.Adjust(ctx, it.ProductID, it.Qty, kind); err != nil {
			return err
		}
	}
	return nil
}
