package models

import (
	"encoding/json"
	"time"
)

// EventType categorizes notifications published by the unread core.
type EventType string

const (
	// Unread events
	EventTypeCountsChanged EventType = "unread.counts_changed"
	EventTypeBankruptcy    EventType = "unread.bankruptcy"

	// Session events
	EventTypeSessionInitialized EventType = "session.initialized"

	// System events
	EventTypeWarning EventType = "warning"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeSession EntityType = "session"
	EntityTypeStream  EntityType = "stream"
	EntityTypeSystem  EntityType = "system"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CountsChangedPayload is the payload for unread.counts_changed events.
type CountsChangedPayload struct {
	Reason                string `json:"reason"`
	HomeUnreadMessages    int    `json:"home_unread_messages"`
	PrivateMessageCount   int    `json:"private_message_count"`
	MentionedMessageCount int    `json:"mentioned_message_count"`
}
