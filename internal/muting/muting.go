// Package muting tracks muted topics and muted users for the session user.
package muting

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/tOgg1/tally/internal/dict"
	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
)

// StreamResolver maps stream names to ids.
type StreamResolver interface {
	StreamID(name string) (models.StreamID, bool)
}

// MutedTopic is one muted_topics entry as sent by the server:
// [stream_name, topic, date_muted].
type MutedTopic struct {
	StreamName string
	Topic      string
	DateMuted  time.Time
}

// UnmarshalJSON accepts the server's tuple form. A missing or null
// date_muted leaves DateMuted zero.
func (m *MutedTopic) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode muted topic: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("muted topic needs at least 2 fields, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &m.StreamName); err != nil {
		return fmt.Errorf("failed to decode muted topic stream: %w", err)
	}
	if err := json.Unmarshal(raw[1], &m.Topic); err != nil {
		return fmt.Errorf("failed to decode muted topic name: %w", err)
	}
	m.DateMuted = time.Time{}
	if len(raw) > 2 {
		var secs *float64
		if err := json.Unmarshal(raw[2], &secs); err != nil {
			return fmt.Errorf("failed to decode muted topic date: %w", err)
		}
		if secs != nil {
			m.DateMuted = time.UnixMilli(int64(*secs * 1000))
		}
	}
	return nil
}

// MarshalJSON writes the tuple form.
func (m MutedTopic) MarshalJSON() ([]byte, error) {
	var date any
	if !m.DateMuted.IsZero() {
		date = m.DateMuted.Unix()
	}
	return json.Marshal([]any{m.StreamName, m.Topic, date})
}

// MutedUser is one muted_users entry.
type MutedUser struct {
	ID        models.UserID `json:"id"`
	Timestamp int64         `json:"timestamp"`
}

// TopicEntry is a muted topic resolved to a stream id.
type TopicEntry struct {
	StreamID  models.StreamID
	Topic     string
	DateMuted time.Time
}

// Muter holds mute state. Topic names compare case-insensitively.
type Muter struct {
	diag   logging.Diagnostics
	now    func() time.Time
	topics map[models.StreamID]*dict.FoldDict[time.Time]
	users  map[models.UserID]time.Time
}

// New returns an empty Muter. A nil diag discards diagnostics.
func New(diag logging.Diagnostics) *Muter {
	if diag == nil {
		diag = logging.Nop{}
	}
	return &Muter{
		diag:   diag,
		now:    time.Now,
		topics: make(map[models.StreamID]*dict.FoldDict[time.Time]),
		users:  make(map[models.UserID]time.Time),
	}
}

// AddMutedTopic mutes topic. A zero dateMuted means now.
func (m *Muter) AddMutedTopic(streamID models.StreamID, topic string, dateMuted time.Time) {
	if dateMuted.IsZero() {
		dateMuted = m.now()
	}
	sub, ok := m.topics[streamID]
	if !ok {
		sub = dict.NewFold[time.Time]()
		m.topics[streamID] = sub
	}
	sub.Set(topic, dateMuted)
}

func (m *Muter) RemoveMutedTopic(streamID models.StreamID, topic string) {
	if sub, ok := m.topics[streamID]; ok {
		sub.Del(topic)
	}
}

func (m *Muter) IsTopicMuted(streamID models.StreamID, topic string) bool {
	sub, ok := m.topics[streamID]
	return ok && sub.Has(topic)
}

// GetMutedTopics returns every muted topic ordered by stream id, then by
// mute order within the stream.
func (m *Muter) GetMutedTopics() []TopicEntry {
	streamIDs := make([]models.StreamID, 0, len(m.topics))
	for id := range m.topics {
		streamIDs = append(streamIDs, id)
	}
	sort.Slice(streamIDs, func(i, j int) bool { return streamIDs[i] < streamIDs[j] })

	var out []TopicEntry
	for _, id := range streamIDs {
		m.topics[id].Each(func(topic string, date time.Time) {
			out = append(out, TopicEntry{StreamID: id, Topic: topic, DateMuted: date})
		})
	}
	return out
}

// SetMutedTopics replaces all muted topics. Entries naming unknown streams
// are reported and skipped.
func (m *Muter) SetMutedTopics(entries []MutedTopic, streams StreamResolver) {
	clear(m.topics)
	for _, e := range entries {
		streamID, ok := streams.StreamID(e.StreamName)
		if !ok {
			m.diag.Warn("Unknown stream in set_muted_topics: " + e.StreamName)
			continue
		}
		m.AddMutedTopic(streamID, e.Topic, e.DateMuted)
	}
}

// AddMutedUser mutes userID. A zero at means now.
func (m *Muter) AddMutedUser(userID models.UserID, at time.Time) {
	if at.IsZero() {
		at = m.now()
	}
	m.users[userID] = at
}

func (m *Muter) RemoveMutedUser(userID models.UserID) {
	delete(m.users, userID)
}

func (m *Muter) IsUserMuted(userID models.UserID) bool {
	_, ok := m.users[userID]
	return ok
}

// GetMutedUsers returns muted users ordered by id.
func (m *Muter) GetMutedUsers() []MutedUser {
	out := make([]MutedUser, 0, len(m.users))
	for id, at := range m.users {
		out = append(out, MutedUser{ID: id, Timestamp: at.Unix()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetMutedUsers replaces all muted users.
func (m *Muter) SetMutedUsers(users []MutedUser) {
	clear(m.users)
	for _, u := range users {
		m.AddMutedUser(u.ID, time.Unix(u.Timestamp, 0))
	}
}
