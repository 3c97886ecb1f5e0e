package events

import (
	"encoding/json"
	"time"
)

// Envelope is the shared event shape written to outbox tables and published on
// the bus. Payload stays raw so the relay can forward rows without knowing
// every event schema.
type Envelope struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type"`
	SourceService  string          `json:"source_service"`
	OccurredAtUTC  time.Time       `json:"occurred_at_utc"`
	EntityType     string          `json:"entity_type"`
	EntityID       string          `json:"entity_id"`
	PartitionKey   string          `json:"partition_key"`
	PayloadVersion int             `json:"payload_version"`
	Payload        json.RawMessage `json:"payload"`
}
