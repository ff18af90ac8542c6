package notify

import (
	"context"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/events"
	kafkax "github.com/ariefcatur/go-storefront-fulfillment.git/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type Kind string

const (
	KindLowStock           Kind = "low-stock"
	KindOutOfStock         Kind = "out-of-stock"
	KindRestocked          Kind = "restocked"
	KindOrderCreated       Kind = "order-created"
	KindOrderStatusChanged Kind = "order-status-changed"
	KindPaymentSucceeded   Kind = "payment-succeeded"
	KindPaymentFailed      Kind = "payment-failed"
	KindPaymentRefunded    Kind = "payment-refunded"
)

// Notification with empty UserID is a broadcast to operators.
type Notification struct {
	UserID   string
	Kind     Kind
	Title    string
	Body     string
	Metadata map[string]any
}

// Notifier is fire-and-forget: implementations never block the caller's
// transaction and never surface delivery failures.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Dispatcher publishes notifications onto the notification topic.
type Dispatcher struct {
	Producer *kafkax.Producer
	Service  string
}

func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventNotification,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      d.Service,
		CorrelationID: correlationID(n),
		Payload: kafkax.MustMarshal(events.NotificationPayload{
			UserID:   n.UserID,
			Kind:     string(n.Kind),
			Title:    n.Title,
			Body:     n.Body,
			Metadata: n.Metadata,
		}),
	}
	d.Producer.Publish(events.PartitionKey(ev.CorrelationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventNotification)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func correlationID(n Notification) string {
	for _, k := range []string{"order_id", "product_id", "payment_id"} {
		if v, ok := n.Metadata[k].(string); ok && v != "" {
			return v
		}
	}
	return n.UserID
}
