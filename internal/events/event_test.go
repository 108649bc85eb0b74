package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
)

func TestNew_AssignsIDAndPayload(t *testing.T) {
	event, err := New(models.EventTypeCountsChanged, models.EntityTypeSession, "s1", models.CountsChangedPayload{
		Reason:             "mark_as_read",
		HomeUnreadMessages: 3,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(event.ID)
	require.NoError(t, err)
	require.False(t, event.Timestamp.IsZero())

	var payload models.CountsChangedPayload
	require.NoError(t, DecodePayload(event, &payload))
	require.Equal(t, "mark_as_read", payload.Reason)
	require.Equal(t, 3, payload.HomeUnreadMessages)
}

func TestNew_NilPayload(t *testing.T) {
	event, err := New(models.EventTypeBankruptcy, models.EntityTypeSession, "s1", nil)
	require.NoError(t, err)
	require.Empty(t, event.Payload)
	require.Error(t, DecodePayload(event, &models.CountsChangedPayload{}))
}

func TestNew_UnmarshalablePayload(t *testing.T) {
	_, err := New(models.EventTypeWarning, models.EntityTypeSystem, "x", make(chan int))
	require.Error(t, err)
}
