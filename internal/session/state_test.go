package session

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
)

func TestDecodeEvent_Envelope(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"id": 9, "type": "update_message_flags", "operation": "add", "flag": "read"}`))
	require.NoError(t, err)
	require.Equal(t, int64(9), ev.ID)
	require.Equal(t, "add", ev.Op)

	var body flagsEvent
	require.NoError(t, ev.Decode(&body))
	require.Equal(t, "read", body.Flag)

	_, err = DecodeEvent([]byte(`{"id": 1}`))
	require.Error(t, err)
}

func TestEvent_MarshalKeepsBody(t *testing.T) {
	raw := `{"type":"muted_users","muted_users":[{"id":5,"timestamp":10}]}`
	ev, err := DecodeEvent([]byte(raw))
	require.NoError(t, err)

	out, err := json.Marshal(ev)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(out))
}

func TestNewEvent(t *testing.T) {
	ev, err := NewEvent(EventUpdateMessageFlags, map[string]any{
		"op":       "add",
		"flag":     "read",
		"messages": []models.MessageID{1, 2},
	})
	require.NoError(t, err)
	require.Equal(t, EventUpdateMessageFlags, ev.Type)
	require.Equal(t, "add", ev.Op)

	var body flagsEvent
	require.NoError(t, ev.Decode(&body))
	require.Equal(t, []models.MessageID{1, 2}, body.Messages)

	_, err = NewEvent(EventMessage, []int{1})
	require.Error(t, err)
}

func TestReadEvents_ReportsLine(t *testing.T) {
	_, err := ReadEvents(strings.NewReader("{\"type\": \"bankruptcy\"}\n\n{not json}\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
}

func TestApplyFlags(t *testing.T) {
	msg := &models.Message{ID: 1, Unread: false, Mentioned: true}
	applyFlags(msg, []string{"wildcard_mentioned", "starred"})
	require.True(t, msg.Unread)
	require.True(t, msg.Mentioned)
	require.False(t, msg.MentionedMeDirectly)
	require.True(t, msg.Starred)

	applyFlags(msg, []string{"read"})
	require.False(t, msg.Unread)
	require.False(t, msg.Mentioned)
}

func TestDecodeInitialState_Malformed(t *testing.T) {
	_, err := DecodeInitialState([]byte(`{"user_id": "thirty"}`))
	require.Error(t, err)

	// Muted topic tuples need at least a stream and a topic.
	_, err = DecodeInitialState([]byte(`{"muted_topics": [["devel"]]}`))
	require.Error(t, err)
}
