package events

const (
	TopicNotifications = "fulfillment.notifications"
	TopicAudit         = "fulfillment.audit"
)

// Partition key keeps all events for one entity in order.
func PartitionKey(entityID string) []byte { return []byte(entityID) }
