// Package availability answers "can N units of product P be sold right now".
// It is strictly advisory: it never reserves, and the answer can go stale
// before the caller acts on it. The authoritative check is the ledger's
// reserve operation, which re-validates under the row lock.
package availability

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"golang.org/x/sync/errgroup"
)

const (
	ReasonProductNotFound   = "PRODUCT_NOT_FOUND"
	ReasonProductInactive   = "PRODUCT_INACTIVE"
	ReasonInsufficientStock = "INSUFFICIENT_STOCK"
	ReasonInvalidQuantity   = "INVALID_QUANTITY"
)

type Result struct {
	ProductID         string `json:"product_id"`
	Requested         int    `json:"requested"`
	Available         bool   `json:"available"`
	Reason            string `json:"reason,omitempty"`
	AvailableQuantity int    `json:"available_quantity"`
	UnitPriceCents    int    `json:"unit_price_cents,omitempty"`
}

type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"qty"`
}

type BatchResult struct {
	AllAvailable bool     `json:"all_available"`
	Available    []Result `json:"available"`
	Unavailable  []Result `json:"unavailable"`
}

type Checker struct {
	Catalog catalog.Catalog
	Ledger  ledger.Store
}

// Check is a query, not a command: business-negative outcomes come back as
// results with a reason, the error return is for infrastructure failures
// only.
func (c *Checker) Check(ctx context.Context, productID string, qty int) (Result, error) {
	res := Result{ProductID: productID, Requested: qty}

	if qty <= 0 {
		res.Reason = ReasonInvalidQuantity
		return res, nil
	}

	p, err := c.Catalog.Product(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		res.Reason = ReasonProductNotFound
		return res, nil
	}
	if err != nil {
		return Result{}, err
	}
	res.UnitPriceCents = p.PriceCents
	if !p.Active {
		res.Reason = ReasonProductInactive
		return res, nil
	}

	rec, err := c.Ledger.Get(ctx, productID)
	if errors.Is(err, ledger.ErrNotFound) {
		// product exists but was never stocked
		res.Reason = ReasonInsufficientStock
		return res, nil
	}
	if err != nil {
		return Result{}, err
	}

	res.AvailableQuantity = rec.Available()
	if rec.Available() < qty {
		res.Reason = ReasonInsufficientStock
		return res, nil
	}
	res.Available = true
	return res, nil
}

// CheckBatch evaluates every item independently and partitions the outcome.
// It reserves nothing.
func (c *Checker) CheckBatch(ctx context.Context, items []ItemRequest) (BatchResult, error) {
	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			r, err := c.Check(gctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	out := BatchResult{AllAvailable: true}
	for _, r := range results {
		if r.Available {
			out.Available = append(out.Available, r)
		} else {
			out.Unavailable = append(out.Unavailable, r)
			out.AllAvailable = false
		}
	}
	return out, nil
}
