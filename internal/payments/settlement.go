package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/audit"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/orders"
	"github.com/google/uuid"
)

var ErrNotChargeable = errors.New("order is not chargeable")

type ChargeResult struct {
	PaymentID     string `json:"payment_id"`
	Status        Status `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
	ReasonCode    string `json:"reason_code,omitempty"`
}

type RefundResult struct {
	RefundPaymentID     string `json:"refund_payment_id,omitempty"`
	Status              Status `json:"status"`
	RefundTransactionID string `json:"refund_transaction_id,omitempty"`
	ReasonCode          string `json:"reason_code,omitempty"`
}

// Settlement is a thin orchestrator between the gateway and the order
// lifecycle. Gateway declines come back as typed results, never as errors.
type Settlement struct {
	Gateway   Gateway
	Payments  Store
	Orders    orders.Store
	Lifecycle *orders.Lifecycle
	Notifier  notify.Notifier
	Audit     audit.Recorder
	Currency  string
}

// Charge attempts payment for a pending order. On decline the order stays
// pending with payment status failed and keeps its reservation, so the
// customer can retry against the same stock.
func (s *Settlement) Charge(ctx context.Context, orderID, method string, details map[string]string) (ChargeResult, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return ChargeResult{}, err
	}
	if o.Status != orders.StatusPending {
		return ChargeResult{}, fmt.Errorf("%w: order %s is %s", ErrNotChargeable, orderID, o.Status)
	}
	if o.PaymentStatus == orders.PaymentPaid {
		return ChargeResult{}, fmt.Errorf("%w: order %s already paid", ErrNotChargeable, orderID)
	}

	outcome, err := s.Gateway.Charge(ctx, ChargeRequest{
		OrderID:     orderID,
		AmountCents: o.TotalCents,
		Currency:    s.Currency,
		Method:      method,
		Details:     details,
	})
	if err != nil {
		return ChargeResult{}, fmt.Errorf("gateway charge: %w", err)
	}

	p := Payment{
		ID:              uuid.NewString(),
		OrderID:         orderID,
		Method:          method,
		AmountCents:     o.TotalCents,
		TransactionID:   outcome.TransactionID,
		GatewayResponse: outcome.Raw,
		CreatedAt:       time.Now().UTC(),
	}

	if !outcome.Approved {
		p.Status = StatusFailed
		if err := s.Payments.Create(ctx, p); err != nil {
			return ChargeResult{}, err
		}
		if err := s.Orders.UpdatePaymentStatus(ctx, orderID, orders.PaymentFailed); err != nil {
			return ChargeResult{}, err
		}
		s.notify(ctx, o.UserID, notify.KindPaymentFailed, "Payment failed",
			fmt.Sprintf("payment for order %s was declined (%s)", o.Number, outcome.ReasonCode),
			map[string]any{"order_id": orderID, "payment_id": p.ID, "reason": outcome.ReasonCode})
		return ChargeResult{PaymentID: p.ID, Status: StatusFailed, ReasonCode: outcome.ReasonCode}, nil
	}

	p.Status = StatusCompleted
	if err := s.Payments.Create(ctx, p); err != nil {
		return ChargeResult{}, err
	}
	if _, err := s.Lifecycle.Transition(ctx, orderID, orders.StatusConfirmed, "payment"); err != nil {
		// charge settled but the order could not confirm; surface it, the
		// payment row keeps the money trail
		return ChargeResult{}, fmt.Errorf("confirm after charge: %w", err)
	}
	if err := s.Orders.UpdatePaymentStatus(ctx, orderID, orders.PaymentPaid); err != nil {
		return ChargeResult{}, err
	}
	s.notify(ctx, o.UserID, notify.KindPaymentSucceeded, "Payment received",
		fmt.Sprintf("payment for order %s settled", o.Number),
		map[string]any{"order_id": orderID, "payment_id": p.ID})

	return ChargeResult{PaymentID: p.ID, Status: StatusCompleted, TransactionID: outcome.TransactionID}, nil
}

// Refund reverses a settled charge, fully or partially. A full refund flips
// the originating charge to refunded and drives the order to cancelled.
// Sold units are NOT restocked; the ledger keeps the decrement and an audit
// note records the asymmetry.
func (s *Settlement) Refund(ctx context.Context, paymentID string, amountCents int, reason string) (RefundResult, error) {
	p, err := s.Payments.Get(ctx, paymentID)
	if err != nil {
		return RefundResult{}, err
	}
	if p.AmountCents <= 0 || p.Status == StatusFailed {
		return RefundResult{}, fmt.Errorf("%w: payment %s is not a settled charge", ErrValidation, paymentID)
	}
	if p.Status == StatusRefunded {
		return RefundResult{}, fmt.Errorf("%w: payment %s already refunded", ErrValidation, paymentID)
	}
	if amountCents == 0 {
		amountCents = p.AmountCents
	}
	if amountCents < 0 || amountCents > p.AmountCents {
		return RefundResult{}, fmt.Errorf("%w: refund amount %d out of range", ErrValidation, amountCents)
	}

	outcome, err := s.Gateway.Refund(ctx, RefundRequest{
		TransactionID: p.TransactionID,
		AmountCents:   amountCents,
		Reason:        reason,
	})
	if err != nil {
		return RefundResult{}, fmt.Errorf("gateway refund: %w", err)
	}
	if !outcome.Approved {
		return RefundResult{Status: StatusFailed, ReasonCode: outcome.ReasonCode}, nil
	}

	refund := Payment{
		ID:              uuid.NewString(),
		OrderID:         p.OrderID,
		Method:          p.Method,
		AmountCents:     -amountCents,
		Status:          StatusCompleted,
		TransactionID:   outcome.TransactionID,
		GatewayResponse: outcome.Raw,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Payments.Create(ctx, refund); err != nil {
		return RefundResult{}, err
	}

	o, err := s.Orders.Get(ctx, p.OrderID)
	if err != nil {
		return RefundResult{}, err
	}

	if amountCents == p.AmountCents {
		if err := s.Payments.UpdateStatus(ctx, p.ID, StatusRefunded); err != nil {
			return RefundResult{}, err
		}
		wasConfirmed := o.Status != orders.StatusPending
		if _, err := s.Lifecycle.Transition(ctx, p.OrderID, orders.StatusCancelled, "refund"); err != nil && !errors.Is(err, orders.ErrInvalidTransition) {
			// terminal orders stay where they are, anything else surfaces
			return RefundResult{}, err
		}
		if err := s.Orders.UpdatePaymentStatus(ctx, p.OrderID, orders.PaymentRefunded); err != nil {
			return RefundResult{}, err
		}
		if wasConfirmed && s.Audit != nil {
			// sold units keep their stock decrement
			s.Audit.Record(ctx, audit.Entry{
				EntityType: "order",
				EntityID:   p.OrderID,
				Action:     "refunded_without_restock",
				NewValues:  map[string]any{"payment_id": p.ID, "amount_cents": amountCents},
				ActorID:    "refund",
			})
		}
	}

	s.notify(ctx, o.UserID, notify.KindPaymentRefunded, "Payment refunded",
		fmt.Sprintf("refund of %d cents issued for order %s", amountCents, o.Number),
		map[string]any{"order_id": p.OrderID, "payment_id": p.ID, "refund_payment_id": refund.ID})

	return RefundResult{
		RefundPaymentID:     refund.ID,
		Status:              StatusCompleted,
		RefundTransactionID: outcome.TransactionID,
	}, nil
}

func (s *Settlement) notify(ctx context.Context, userID string, kind notify.Kind, title, body string, meta map[string]any) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(ctx, notify.Notification{UserID: userID, Kind: kind, Title: title, Body: body, Metadata: meta})
}
