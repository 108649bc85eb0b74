package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tOgg1/tally/internal/models"
)

// New builds an event with a fresh id and the current UTC time. A nil
// payload leaves Payload empty.
func New(eventType models.EventType, entityType models.EntityType, entityID string, payload any) (*models.Event, error) {
	event := &models.Event{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
		}
		event.Payload = data
	}
	return event, nil
}

// DecodePayload unmarshals event's payload into v.
func DecodePayload(event *models.Event, v any) error {
	if event == nil || len(event.Payload) == 0 {
		return fmt.Errorf("event has no payload")
	}
	if err := json.Unmarshal(event.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}
	return nil
}
