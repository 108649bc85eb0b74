// Package pmconv tracks private-message conversations: the recency-ordered
// list of participant sets and the set of users we have messaged.
package pmconv

import (
	"sort"

	"github.com/tOgg1/tally/internal/models"
)

// Conversation is one distinct participant set and the newest message in it.
type Conversation struct {
	UserIDsString string           `json:"user_ids_string"`
	MaxMessageID  models.MessageID `json:"max_message_id"`
}

// InitialConversation is one entry of recent_private_conversations.
type InitialConversation struct {
	UserIDs      []models.UserID  `json:"user_ids"`
	MaxMessageID models.MessageID `json:"max_message_id"`
}

// CurrentUser reports who the session user is.
type CurrentUser interface {
	CurrentUserID() models.UserID
}

// Recent keeps conversations ordered by MaxMessageID, newest first.
type Recent struct {
	me        CurrentUser
	byKey     map[string]*Conversation
	orderedBy []*Conversation
}

// NewRecent returns an empty Recent.
func NewRecent(me CurrentUser) *Recent {
	return &Recent{
		me:    me,
		byKey: make(map[string]*Conversation),
	}
}

// Insert records messageID for the conversation with userIDs. An empty
// list means a message to oneself. Existing conversations are never
// moved back to an older message id.
func (r *Recent) Insert(userIDs []models.UserID, messageID models.MessageID) {
	if len(userIDs) == 0 {
		userIDs = []models.UserID{r.me.CurrentUserID()}
	}
	key := models.JoinUserIDs(userIDs)

	conv, ok := r.byKey[key]
	if !ok {
		conv = &Conversation{UserIDsString: key, MaxMessageID: messageID}
		r.byKey[key] = conv
		// New conversations usually belong at the front; the sort below fixes it up if not.
		r.orderedBy = append([]*Conversation{conv}, r.orderedBy...)
	} else {
		if conv.MaxMessageID >= messageID {
			return
		}
		conv.MaxMessageID = messageID
	}

	sort.SliceStable(r.orderedBy, func(i, j int) bool {
		return r.orderedBy[i].MaxMessageID > r.orderedBy[j].MaxMessageID
	})
}

// Get returns copies of the conversations, newest first.
func (r *Recent) Get() []Conversation {
	out := make([]Conversation, len(r.orderedBy))
	for i, c := range r.orderedBy {
		out[i] = *c
	}
	return out
}

// GetStrings returns the conversation keys, newest first.
func (r *Recent) GetStrings() []string {
	out := make([]string, len(r.orderedBy))
	for i, c := range r.orderedBy {
		out[i] = c.UserIDsString
	}
	return out
}

// Initialize inserts every conversation from the register payload.
func (r *Recent) Initialize(conversations []InitialConversation) {
	for _, c := range conversations {
		r.Insert(c.UserIDs, c.MaxMessageID)
	}
}

// Clear forgets every conversation.
func (r *Recent) Clear() {
	clear(r.byKey)
	r.orderedBy = nil
}
