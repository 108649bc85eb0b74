package session

import "github.com/tOgg1/tally/internal/models"

// MessageStore holds the message objects loaded this session. It is not
// safe for concurrent use; Session serializes access.
type MessageStore struct {
	byID map[models.MessageID]*models.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{byID: make(map[models.MessageID]*models.Message)}
}

// Add stores msg, replacing any earlier object with the same id.
func (m *MessageStore) Add(msg *models.Message) {
	if msg == nil {
		return
	}
	m.byID[msg.ID] = msg
}

func (m *MessageStore) Get(id models.MessageID) (*models.Message, bool) {
	msg, ok := m.byID[id]
	return msg, ok
}

func (m *MessageStore) Len() int {
	return len(m.byID)
}

// Messages returns every stored message ordered by id.
func (m *MessageStore) Messages() []*models.Message {
	ids := make([]models.MessageID, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	out := make([]*models.Message, 0, len(ids))
	for _, id := range models.SortedIDs(ids) {
		out = append(out, m.byID[id])
	}
	return out
}

func (m *MessageStore) Clear() {
	clear(m.byID)
}
