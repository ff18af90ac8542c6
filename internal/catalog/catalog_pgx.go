package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCatalog struct{ DB *pgxpool.Pool }

func (c *PgxCatalog) Product(ctx context.Context, id string) (Product, error) {
	var p Product
	err := c.DB.QueryRow(ctx, `SELECT id, sku, name, price_cents, cost_cents, active
	                           FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.CostCents, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (c *PgxCatalog) List(ctx context.Context) ([]Product, error) {
	rows, err := c.DB.Query(ctx, `SELECT id, sku, name, price_cents, cost_cents, active
	                              FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.CostCents, &p.Active); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
