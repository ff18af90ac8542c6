package catalog

import (
	"context"
	"errors"
)

// Product is read-only reference data owned by the catalog side of the shop;
// the fulfillment core never writes it.
type Product struct {
	ID         string
	SKU        string
	Name       string
	PriceCents int
	CostCents  int
	Active     bool
}

var ErrNotFound = errors.New("product not found")

type Catalog interface {
	Product(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
}
