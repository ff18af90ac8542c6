package events

import (
	"encoding/json"
	"time"
)

const (
	EventNotification = "Notification"
	EventAuditEntry   = "AuditEntry"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "fulfillment-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually an order_id or product_id
	Payload       json.RawMessage `json:"payload"`
}

// NotificationPayload is the wire form of a dispatched notification.
// Empty user_id means operator broadcast.
type NotificationPayload struct {
	UserID   string         `json:"user_id,omitempty"`
	Kind     string         `json:"kind"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type AuditPayload struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
}
