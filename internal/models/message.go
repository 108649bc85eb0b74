package models

// MessageType distinguishes channel messages from private messages.
type MessageType string

const (
	MessageTypeStream  MessageType = "stream"
	MessageTypePrivate MessageType = "private"
)

// Recipient is one participant of a private message.
type Recipient struct {
	ID       UserID `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Message is the subset of a live message object the unread core reads.
type Message struct {
	ID             MessageID   `json:"id"`
	Type           MessageType `json:"type"`
	SenderID       UserID      `json:"sender_id"`
	SenderEmail    string      `json:"sender_email,omitempty"`
	SenderFullName string      `json:"sender_full_name,omitempty"`

	// StreamID and Topic are set for stream messages.
	StreamID StreamID `json:"stream_id,omitempty"`
	Topic    string   `json:"topic,omitempty"`

	// DisplayRecipient lists every participant of a private message,
	// including the current user.
	DisplayRecipient []Recipient `json:"display_recipient,omitempty"`

	Unread              bool `json:"unread"`
	Mentioned           bool `json:"mentioned"`
	MentionedMeDirectly bool `json:"mentioned_me_directly"`
	Starred             bool `json:"starred"`
}

// IsStream reports whether the message was sent to a stream.
func (m *Message) IsStream() bool {
	return m != nil && m.Type == MessageTypeStream
}

// IsPrivate reports whether the message is a private message.
func (m *Message) IsPrivate() bool {
	return m != nil && m.Type == MessageTypePrivate
}

// RecipientIDs returns the user ids of DisplayRecipient in order.
func (m *Message) RecipientIDs() []UserID {
	if m == nil {
		return nil
	}
	ids := make([]UserID, 0, len(m.DisplayRecipient))
	for _, r := range m.DisplayRecipient {
		ids = append(ids, r.ID)
	}
	return ids
}

// TopicEdit describes a topic change carried by an update_message event.
// A nil Topic means the edit did not touch the topic.
type TopicEdit struct {
	MessageIDs []MessageID `json:"message_ids"`
	Topic      *string     `json:"topic,omitempty"`
}
