package orders

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("order not found")

// Store persists orders with their items. Create writes the order and every
// item in one transaction; an order's item set is immutable afterwards, only
// status fields mutate.
type Store interface {
	Create(ctx context.Context, o Order, items []Item) error
	Get(ctx context.Context, id string) (Order, error)
	Items(ctx context.Context, orderID string) ([]Item, error)
	UpdateStatus(ctx context.Context, id string, st Status) error
	UpdatePaymentStatus(ctx context.Context, id string, ps PaymentStatus) error
}
