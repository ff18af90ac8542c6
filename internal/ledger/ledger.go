// Package ledger owns the per-product quantity/reservation counters. Every
// mutation goes through Service.Adjust as one atomic read-modify-write on a
// single inventory record, so `0 <= reserved <= quantity` holds at all times.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
)

type OpKind string

const (
	OpReserve OpKind = "reserve"
	OpRelease OpKind = "release"
	OpSell    OpKind = "sell"
	OpRestock OpKind = "restock"
	OpAdjust  OpKind = "adjust"
)

var (
	ErrNotFound              = errors.New("inventory record not found")
	ErrInsufficientAvailable = errors.New("insufficient available stock")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrNegativeResult        = errors.New("adjustment would drive quantity negative")
	ErrInvalidQuantity       = errors.New("quantity change must be positive")
)

type Record struct {
	ProductID    string
	Quantity     int // units physically in stock
	Reserved     int // units promised to pending orders, subset of Quantity
	ReorderLevel int
	UpdatedAt    time.Time
}

// Available is the only number safe to offer to new demand.
func (r Record) Available() int { return r.Quantity - r.Reserved }

type Adjustment struct {
	ProductID    string
	Kind         OpKind
	PrevQuantity int
	NewQuantity  int
	PrevReserved int
	NewReserved  int
	Available    int
}

// Store serializes mutations per product record. Mutate runs fn against the
// current record under a row-level lock and persists the result iff fn
// returns nil.
type Store interface {
	Get(ctx context.Context, productID string) (Record, error)
	Create(ctx context.Context, rec Record) error
	Mutate(ctx context.Context, productID string, fn func(rec *Record) error) (before, after Record, err error)
}

type Service struct {
	Store    Store
	Notifier notify.Notifier
}

// Adjust applies one ledger operation. Magnitudes are positive for
// reserve/release/sell/restock and signed for adjust. Stock alerts fire
// after the mutation committed, never before.
func (s *Service) Adjust(ctx context.Context, productID string, change int, kind OpKind) (Adjustment, error) {
	if kind != OpAdjust && change <= 0 {
		return Adjustment{}, fmt.Errorf("%w: %s %d", ErrInvalidQuantity, kind, change)
	}

	before, after, err := s.Store.Mutate(ctx, productID, func(rec *Record) error {
		return apply(rec, change, kind)
	})
	if err != nil {
		return Adjustment{}, err
	}

	s.alert(ctx, kind, before, after)

	return Adjustment{
		ProductID:    productID,
		Kind:         kind,
		PrevQuantity: before.Quantity,
		NewQuantity:  after.Quantity,
		PrevReserved: before.Reserved,
		NewReserved:  after.Reserved,
		Available:    after.Available(),
	}, nil
}

func apply(rec *Record, change int, kind OpKind) error {
	switch kind {
	case OpReserve:
		if rec.Available() < change {
			return fmt.Errorf("%w: product %s requested %d available %d",
				ErrInsufficientAvailable, rec.ProductID, change, rec.Available())
		}
		rec.Reserved += change
	case OpRelease:
		// over-release is clamped, not an error: overlapping cancellation
		// paths may both try to give the same units back
		if change > rec.Reserved {
			change = rec.Reserved
		}
		rec.Reserved -= change
	case OpSell:
		if rec.Quantity-change < 0 {
			return fmt.Errorf("%w: product %s sell %d quantity %d",
				ErrInsufficientStock, rec.ProductID, change, rec.Quantity)
		}
		// consume reserved units first, remainder comes straight from stock
		fromReserved := change
		if fromReserved > rec.Reserved {
			fromReserved = rec.Reserved
		}
		rec.Quantity -= change
		rec.Reserved -= fromReserved
	case OpRestock:
		rec.Quantity += change
	case OpAdjust:
		if rec.Quantity+change < 0 {
			return fmt.Errorf("%w: product %s quantity %d change %d",
				ErrNegativeResult, rec.ProductID, rec.Quantity, change)
		}
		rec.Quantity += change
	default:
		return fmt.Errorf("unknown operation kind %q", kind)
	}
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// alert dispatches post-commit stock signals to operators.
func (s *Service) alert(ctx context.Context, kind OpKind, before, after Record) {
	if s.Notifier == nil {
		return
	}
	meta := map[string]any{
		"product_id": after.ProductID,
		"quantity":   after.Quantity,
		"reserved":   after.Reserved,
		"available":  after.Available(),
	}
	if before.Available() > after.ReorderLevel && after.Available() <= after.ReorderLevel {
		s.Notifier.Notify(ctx, notify.Notification{
			Kind:     notify.KindLowStock,
			Title:    "Low stock",
			Body:     fmt.Sprintf("product %s available %d at or below reorder level %d", after.ProductID, after.Available(), after.ReorderLevel),
			Metadata: meta,
		})
	}
	if before.Quantity > 0 && after.Quantity == 0 {
		s.Notifier.Notify(ctx, notify.Notification{
			Kind:     notify.KindOutOfStock,
			Title:    "Out of stock",
			Body:     fmt.Sprintf("product %s is out of stock", after.ProductID),
			Metadata: meta,
		})
	}
	if kind == OpRestock && before.Quantity <= before.ReorderLevel {
		s.Notifier.Notify(ctx, notify.Notification{
			Kind:     notify.KindRestocked,
			Title:    "Restocked",
			Body:     fmt.Sprintf("product %s restocked to %d", after.ProductID, after.Quantity),
			Metadata: meta,
		})
	}
}
