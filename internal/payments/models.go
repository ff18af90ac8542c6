package payments

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

var (
	ErrNotFound   = errors.New("payment not found")
	ErrValidation = errors.New("invalid payment request")
)

// Payment rows never mutate after creation, with one exception: the
// originating charge flips to refunded when fully refunded.
type Payment struct {
	ID              string
	OrderID         string
	Method          string
	AmountCents     int // positive charge, negative refund
	Status          Status
	TransactionID   string
	GatewayResponse string
	CreatedAt       time.Time
}

type Store interface {
	Create(ctx context.Context, p Payment) error
	Get(ctx context.Context, id string) (Payment, error)
	ByOrder(ctx context.Context, orderID string) ([]Payment, error)
	UpdateStatus(ctx context.Context, id string, st Status) error
}
