package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStore struct{ DB *pgxpool.Pool }

func (s *PgxStore) Create(ctx context.Context, o Order, items []Item) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ship, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	bill, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, order_number, user_id, status, payment_status, total_cents,
		                   shipping_address, billing_address, payment_method, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, o.ID, o.Number, o.UserID, o.Status, o.PaymentStatus, o.TotalCents, ship, bill, o.PaymentMethod, o.Notes)
	if err != nil {
		return err
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, qty, unit_price_cents, line_total_cents)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, it.ID, it.OrderID, it.ProductID, it.Qty, it.UnitPriceCents, it.LineTotalCents)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PgxStore) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	var ship, bill []byte
	err := s.DB.QueryRow(ctx, `
		SELECT id, order_number, user_id, status, payment_status, total_cents,
		       shipping_address, billing_address, payment_method, notes, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &o.PaymentStatus, &o.TotalCents,
			&ship, &bill, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(ship, &o.ShippingAddress); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(bill, &o.BillingAddress); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *PgxStore) Items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, product_id, qty, unit_price_cents, line_total_cents
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.UnitPriceCents, &it.LineTotalCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PgxStore) UpdateStatus(ctx context.Context, id string, st Status) error {
	ct, err := s.DB.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, st)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgxStore) UpdatePaymentStatus(ctx context.Context, id string, ps PaymentStatus) error {
	ct, err := s.DB.Exec(ctx, `UPDATE orders SET payment_status=$2, updated_at=now() WHERE id=$1`, id, ps)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
