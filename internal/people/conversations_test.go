package people

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
)

func privateMessage(id models.MessageID, userIDs ...models.UserID) *models.Message {
	msg := &models.Message{ID: id, Type: models.MessageTypePrivate}
	for _, uid := range userIDs {
		msg.DisplayRecipient = append(msg.DisplayRecipient, models.Recipient{ID: uid})
	}
	return msg
}

func TestPMReplyKey_OrderIndependent(t *testing.T) {
	idx, _ := newTestIndex(t)

	permutations := [][]models.UserID{
		{30, 101, 102},
		{102, 30, 101},
		{101, 102, 30},
	}
	for _, perm := range permutations {
		key, ok := idx.PMReplyKey(privateMessage(1, perm...))
		require.True(t, ok)
		require.Equal(t, "101,102", key)
	}
}

func TestPMReplyKey_NumericNotLexicalOrder(t *testing.T) {
	idx, _ := newTestIndex(t)
	key, ok := idx.PMReplyKey(privateMessage(1, 30, 9, 10))
	require.True(t, ok)
	require.Equal(t, "9,10", key)
}

func TestPMReplyKey_SelfMessage(t *testing.T) {
	idx, _ := newTestIndex(t)
	key, ok := idx.PMReplyKey(privateMessage(1, 30))
	require.True(t, ok)
	require.Equal(t, "30", key)
}

func TestPMReplyKey_EmptyRecipientsReported(t *testing.T) {
	idx, rec := newTestIndex(t)
	_, ok := idx.PMReplyKey(privateMessage(7))
	require.False(t, ok)
	require.True(t, rec.HasError("Empty recipient list in message 7"))

	_, ok = idx.PMReplyKey(&models.Message{ID: 8, Type: models.MessageTypeStream})
	require.False(t, ok)
}

func TestPMLookupKey(t *testing.T) {
	idx, _ := newTestIndex(t)
	require.Equal(t, "101,102", idx.PMLookupKey("102,30,101"))
	require.Equal(t, "30", idx.PMLookupKey("30"))
	require.Equal(t, "101", idx.PMLookupKey("101"))
}

func TestExtractPeopleFromMessage_ReportsLateAdds(t *testing.T) {
	idx, rec := newTestIndex(t)

	msg := privateMessage(1, 30, 101)
	msg.DisplayRecipient = append(msg.DisplayRecipient, models.Recipient{ID: 500, Email: "late@example.com", FullName: "Late Comer"})
	idx.ExtractPeopleFromMessage(msg)

	p, ok := idx.GetByUserID(500)
	require.True(t, ok)
	require.Equal(t, "Late Comer", p.FullName)
	require.False(t, idx.IsActive(500))
	require.Len(t, rec.Errors(), 1)
	require.Contains(t, rec.Errors()[0], "Added user late: user_id=500")

	stream := &models.Message{ID: 2, Type: models.MessageTypeStream, SenderID: 501, SenderEmail: "s@example.com", SenderFullName: "Streamer"}
	idx.ExtractPeopleFromMessage(stream)
	require.True(t, idx.HasUserID(501))

	// Known people are not re-reported.
	rec.Reset()
	idx.ExtractPeopleFromMessage(stream)
	require.Empty(t, rec.Entries())
}
