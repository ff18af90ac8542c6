package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStore struct{ DB *pgxpool.Pool }

func (s *PgxStore) Create(ctx context.Context, p Payment) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO payments(id, order_id, method, amount_cents, status, transaction_id, gateway_response)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, p.ID, p.OrderID, p.Method, p.AmountCents, p.Status, p.TransactionID, p.GatewayResponse)
	return err
}

func (s *PgxStore) Get(ctx context.Context, id string) (Payment, error) {
	var p Payment
	err := s.DB.QueryRow(ctx, `
		SELECT id, order_id, method, amount_cents, status, transaction_id, gateway_response, created_at
		FROM payments WHERE id=$1`, id).
		Scan(&p.ID, &p.OrderID, &p.Method, &p.AmountCents, &p.Status, &p.TransactionID, &p.GatewayResponse, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

func (s *PgxStore) ByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, method, amount_cents, status, transaction_id, gateway_response, created_at
		FROM payments WHERE order_id=$1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.AmountCents, &p.Status, &p.TransactionID, &p.GatewayResponse, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PgxStore) UpdateStatus(ctx context.Context, id string, st Status) error {
	ct, err := s.DB.Exec(ctx, `UPDATE payments SET status=$2 WHERE id=$1`, id, st)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
