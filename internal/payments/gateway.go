package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is the gateway verdict. A decline is a normal business outcome,
// not an error; the error return on Gateway calls is reserved for transport
// faults.
type Outcome struct {
	Approved      bool
	TransactionID string
	ReasonCode    string
	Raw           string
}

type ChargeRequest struct {
	OrderID     string
	AmountCents int
	Currency    string
	Method      string
	Details     map[string]string
}

type RefundRequest struct {
	TransactionID string // the originating charge
	AmountCents   int
	Reason        string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Outcome, error)
	Refund(ctx context.Context, req RefundRequest) (Outcome, error)
}

// MockGateway approves everything unless told otherwise. Stands in for a
// real provider in tests and local runs.
type MockGateway struct {
	DeclineCharge bool
	DeclineRefund bool
	ReasonCode    string
}

func (m *MockGateway) Charge(_ context.Context, req ChargeRequest) (Outcome, error) {
	if m.DeclineCharge {
		return Outcome{ReasonCode: m.reason(), Raw: "mock decline"}, nil
	}
	return Outcome{
		Approved:      true,
		TransactionID: fmt.Sprintf("TXN_%d_%s", time.Now().Unix(), uuid.NewString()[:8]),
		Raw:           fmt.Sprintf("mock approval %d %s", req.AmountCents, req.Currency),
	}, nil
}

func (m *MockGateway) Refund(_ context.Context, req RefundRequest) (Outcome, error) {
	if m.DeclineRefund {
		return Outcome{ReasonCode: m.reason(), Raw: "mock refund decline"}, nil
	}
	return Outcome{
		Approved:      true,
		TransactionID: fmt.Sprintf("RFD_%d_%s", time.Now().Unix(), uuid.NewString()[:8]),
		Raw:           fmt.Sprintf("mock refund %d of %s", req.AmountCents, req.TransactionID),
	}, nil
}

func (m *MockGateway) reason() string {
	if m.ReasonCode != "" {
		return m.ReasonCode
	}
	return "INSUFFICIENT_FUNDS"
}
