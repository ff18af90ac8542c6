package audit

import (
	"context"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/events"
	kafkax "github.com/ariefcatur/go-storefront-fulfillment.git/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type Entry struct {
	EntityType string
	EntityID   string
	Action     string
	OldValues  map[string]any
	NewValues  map[string]any
	ActorID    string
}

// Recorder is fire-and-forget; a failed record is logged by the
// implementation, never propagated into the business operation.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Kafka publishes audit entries onto the audit topic. Storage format on the
// other side is a collaborator concern.
type Kafka struct {
	Producer *kafkax.Producer
	Service  string
}

func (k *Kafka) Record(ctx context.Context, e Entry) {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventAuditEntry,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		CorrelationID: e.EntityID,
		Payload: kafkax.MustMarshal(events.AuditPayload{
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Action:     e.Action,
			OldValues:  e.OldValues,
			NewValues:  e.NewValues,
			ActorID:    e.ActorID,
		}),
	}
	k.Producer.Publish(events.PartitionKey(e.EntityID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventAuditEntry)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
