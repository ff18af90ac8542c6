package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxStore keeps one row per product in inventory_records. Mutate locks the
// row with FOR UPDATE for the whole read-then-write, so concurrent adjusts
// on the same product serialize while different products never block each
// other.
type PgxStore struct{ DB *pgxpool.Pool }

func (s *PgxStore) Get(ctx context.Context, productID string) (Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `SELECT product_id, quantity, reserved_quantity, reorder_level, updated_at
	                           FROM inventory_records WHERE product_id=$1`, productID).
		Scan(&rec.ProductID, &rec.Quantity, &rec.Reserved, &rec.ReorderLevel, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *PgxStore) Create(ctx context.Context, rec Record) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO inventory_records(product_id, quantity, reserved_quantity, reorder_level)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (product_id) DO NOTHING
	`, rec.ProductID, rec.Quantity, rec.Reserved, rec.ReorderLevel)
	return err
}

func (s *PgxStore) Mutate(ctx context.Context, productID string, fn func(rec *Record) error) (Record, Record, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Record{}, Record{}, err
	}
	defer tx.Rollback(ctx)

	var before Record
	err = tx.QueryRow(ctx, `SELECT product_id, quantity, reserved_quantity, reorder_level, updated_at
	                        FROM inventory_records WHERE product_id=$1 FOR UPDATE`, productID).
		Scan(&before.ProductID, &before.Quantity, &before.Reserved, &before.ReorderLevel, &before.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, Record{}, err
	}

	after := before
	if err := fn(&after); err != nil {
		return Record{}, Record{}, err // rollback via defer
	}

	if _, err := tx.Exec(ctx, `UPDATE inventory_records
	                           SET quantity=$2, reserved_quantity=$3, updated_at=$4
	                           WHERE product_id=$1`,
		productID, after.Quantity, after.Reserved, after.UpdatedAt); err != nil {
		return Record{}, Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, Record{}, err
	}
	return before, after, nil
}
