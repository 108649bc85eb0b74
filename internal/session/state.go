package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/muting"
	"github.com/tOgg1/tally/internal/pmconv"
	"github.com/tOgg1/tally/internal/streams"
)

// InitialState is the register payload a session starts from.
type InitialState struct {
	UserID              models.UserID       `json:"user_id"`
	RealmUsers          []*models.Person    `json:"realm_users"`
	RealmNonActiveUsers []*models.Person    `json:"realm_non_active_users"`
	CrossRealmBots      []*models.Person    `json:"cross_realm_bots"`
	Subscriptions       []streams.Sub       `json:"subscriptions"`
	Unsubscribed        []streams.Sub       `json:"unsubscribed"`
	MutedTopics         []muting.MutedTopic `json:"muted_topics"`
	MutedUsers          []muting.MutedUser  `json:"muted_users"`

	RecentPrivateConversations []pmconv.InitialConversation `json:"recent_private_conversations"`

	UnreadMsgs models.UnreadSnapshot `json:"unread_msgs"`

	// Messages are message objects already loaded when the session starts.
	Messages []*models.Message `json:"messages,omitempty"`
}

// DecodeInitialState parses a register payload.
func DecodeInitialState(data []byte) (*InitialState, error) {
	var state InitialState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode initial state: %w", err)
	}
	return &state, nil
}

// Event is one live server event. Only the envelope is decoded up front;
// the body is decoded by type when the event is applied.
type Event struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Op   string `json:"op,omitempty"`

	// ReceivedAt is when the event arrived. Zero means when it is applied.
	ReceivedAt time.Time `json:"-"`

	raw json.RawMessage
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var envelope struct {
		ID        int64  `json:"id"`
		Type      string `json:"type"`
		Op        string `json:"op"`
		Operation string `json:"operation"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if envelope.Type == "" {
		return fmt.Errorf("event has no type")
	}
	e.ID = envelope.ID
	e.Type = envelope.Type
	e.Op = envelope.Op
	if e.Op == "" {
		e.Op = envelope.Operation
	}
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	type envelope struct {
		ID   int64  `json:"id,omitempty"`
		Type string `json:"type"`
		Op   string `json:"op,omitempty"`
	}
	return json.Marshal(envelope{ID: e.ID, Type: e.Type, Op: e.Op})
}

// Raw returns the event as received.
func (e Event) Raw() json.RawMessage {
	return e.raw
}

// Decode unmarshals the event body into v.
func (e Event) Decode(v any) error {
	if len(e.raw) == 0 {
		return fmt.Errorf("event %q has no body", e.Type)
	}
	if err := json.Unmarshal(e.raw, v); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", e.Type, err)
	}
	return nil
}

// NewEvent builds an event of eventType from body, which must marshal to a
// JSON object. The type field is set on the result.
func NewEvent(eventType string, body any) (Event, error) {
	fields := map[string]any{}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Event{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return Event{}, fmt.Errorf("%s event body is not an object: %w", eventType, err)
		}
	}
	fields["type"] = eventType
	data, err := json.Marshal(fields)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	return DecodeEvent(data)
}

// DecodeEvent parses one event.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return ev, nil
}

// ReadEvents parses a JSONL event stream. Blank lines are skipped.
func ReadEvents(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []Event
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		ev, err := DecodeEvent(data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return out, nil
}

type messageEvent struct {
	Message *models.Message `json:"message"`
	Flags   *[]string       `json:"flags"`
}

type flagsEvent struct {
	Flag     string             `json:"flag"`
	Messages []models.MessageID `json:"messages"`
	All      bool               `json:"all"`
}

type updateMessageEvent struct {
	MessageID  models.MessageID   `json:"message_id"`
	MessageIDs []models.MessageID `json:"message_ids"`
	StreamID   models.StreamID    `json:"stream_id"`
	Topic      *string            `json:"topic"`
	Subject    *string            `json:"subject"`
	Flags      *[]string          `json:"flags"`
}

type mutedTopicsEvent struct {
	MutedTopics []muting.MutedTopic `json:"muted_topics"`
}

type mutedUsersEvent struct {
	MutedUsers []muting.MutedUser `json:"muted_users"`
}

type subscriptionEvent struct {
	Subscriptions []streams.Sub   `json:"subscriptions"`
	StreamID      models.StreamID `json:"stream_id"`
	Property      string          `json:"property"`
	Value         json.RawMessage `json:"value"`
}

type realmUserEvent struct {
	Person realmUserPerson `json:"person"`
}

type realmUserPerson struct {
	models.Person
	NewEmail string `json:"new_email,omitempty"`
}

// applyFlags sets the read and mention booleans from a server flag list.
func applyFlags(msg *models.Message, flags []string) {
	msg.Unread = true
	msg.Mentioned = false
	msg.MentionedMeDirectly = false
	msg.Starred = false
	for _, f := range flags {
		switch f {
		case "read":
			msg.Unread = false
		case "mentioned":
			msg.Mentioned = true
			msg.MentionedMeDirectly = true
		case "wildcard_mentioned":
			msg.Mentioned = true
		case "starred":
			msg.Starred = true
		}
	}
}
