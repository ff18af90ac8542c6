package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/audit"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
	"github.com/google/uuid"
)

var (
	ErrValidation      = errors.New("invalid order request")
	ErrProductInactive = errors.New("product is not active")
)

type ItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type CreateRequest struct {
	UserID          string
	Items           []ItemInput
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   string
	Notes           string
}

type CreateResult struct {
	OrderID    string `json:"order_id"`
	Number     string `json:"order_number"`
	TotalCents int    `json:"total_cents"`
}

// Builder creates orders all-or-nothing: either every line item obtains a
// reservation and the order persists, or nothing is left behind.
type Builder struct {
	Catalog  catalog.Catalog
	Ledger   *ledger.Service
	Store    Store
	Notifier notify.Notifier
	Audit    audit.Recorder
}

func (b *Builder) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	if req.UserID == "" {
		return CreateResult{}, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	if len(req.Items) == 0 {
		return CreateResult{}, fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	seen := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		if it.Qty <= 0 {
			return CreateResult{}, fmt.Errorf("%w: invalid qty for product %s", ErrValidation, it.ProductID)
		}
		if seen[it.ProductID] {
			return CreateResult{}, fmt.Errorf("%w: duplicate product %s", ErrValidation, it.ProductID)
		}
		seen[it.ProductID] = true
	}

	// price snapshot from the catalog, never from the client
	now := time.Now().UTC()
	orderID := uuid.NewString()
	items := make([]Item, 0, len(req.Items))
	total := 0
	for _, it := range req.Items {
		p, err := b.Catalog.Product(ctx, it.ProductID)
		if err != nil {
			return CreateResult{}, err
		}
		if !p.Active {
			return CreateResult{}, fmt.Errorf("%w: %s", ErrProductInactive, it.ProductID)
		}
		line := p.PriceCents * it.Qty
		total += line
		items = append(items, Item{
			ID:             uuid.NewString(),
			OrderID:        orderID,
			ProductID:      it.ProductID,
			Qty:            it.Qty,
			UnitPriceCents: p.PriceCents,
			LineTotalCents: line,
		})
	}

	// reserve item by item; any failure releases what this request already
	// holds before the error surfaces (no cross-row transaction guards the
	// whole loop)
	reserved := make([]Item, 0, len(items))
	for _, it := range items {
		if _, err := b.Ledger.Adjust(ctx, it.ProductID, it.Qty, ledger.OpReserve); err != nil {
			b.releaseAll(ctx, reserved)
			return CreateResult{}, err
		}
		reserved = append(reserved, it)
	}

	o := Order{
		ID:              orderID,
		Number:          NewNumber(now),
		UserID:          req.UserID,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		TotalCents:      total,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := b.Store.Create(ctx, o, items); err != nil {
		b.releaseAll(ctx, reserved)
		return CreateResult{}, err
	}

	// post-commit side effects
	if b.Audit != nil {
		b.Audit.Record(ctx, audit.Entry{
			EntityType: "order",
			EntityID:   orderID,
			Action:     "created",
			NewValues:  map[string]any{"order_number": o.Number, "status": string(o.Status), "total_cents": total},
			ActorID:    req.UserID,
		})
	}
	if b.Notifier != nil {
		b.Notifier.Notify(ctx, notify.Notification{
			UserID:   req.UserID,
			Kind:     notify.KindOrderCreated,
			Title:    "Order received",
			Body:     fmt.Sprintf("order %s created, total %d cents", o.Number, total),
			Metadata: map[string]any{"order_id": orderID, "order_number": o.Number},
		})
	}

	return CreateResult{OrderID: orderID, Number: o.Number, TotalCents: total}, nil
}

func (b *Builder) releaseAll(ctx context.Context, items []Item) {
	for _, it := range items {
		if _, err := b.Ledger.Adjust(ctx, it.ProductID, it.Qty, ledger.OpRelease); err != nil {
			// compensation failure leaves a leaked reservation; loud log so
			// an operator can correct the record manually
			log.Printf("release rollback product=%s qty=%d: %v", it.ProductID, it.Qty, err)
		}
	}
}
