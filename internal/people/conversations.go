package people

import (
	"fmt"

	"github.com/tOgg1/tally/internal/models"
)

// SetCurrentUser records which user this session belongs to.
func (x *Index) SetCurrentUser(userID models.UserID) {
	x.currentUserID = userID
}

// CurrentUserID returns the session user, or 0 if unset.
func (x *Index) CurrentUserID() models.UserID {
	return x.currentUserID
}

func (x *Index) IsMyUserID(userID models.UserID) bool {
	return x.currentUserID != 0 && userID == x.currentUserID
}

// IsCurrentUser reports whether email belongs to the session user.
func (x *Index) IsCurrentUser(email string) bool {
	person, ok := x.byEmail.Get(email)
	return ok && x.IsMyUserID(person.UserID)
}

// SortedOtherUserIDs drops the current user from userIDs unless nobody
// else is left, then sorts numerically.
func (x *Index) SortedOtherUserIDs(userIDs []models.UserID) []models.UserID {
	others := make([]models.UserID, 0, len(userIDs))
	for _, id := range userIDs {
		if !x.IsMyUserID(id) {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		others = []models.UserID{x.currentUserID}
	}
	return models.SortedUserIDs(others)
}

// PMLookupKey normalizes a user id string into a conversation key. The
// server sometimes includes the current user; the key only does so for
// messages to oneself.
func (x *Index) PMLookupKey(userIDsString string) string {
	ids, ok := models.SplitUserIDs(userIDsString)
	if !ok {
		x.diag.Warn("Malformed user_ids_string: " + userIDsString)
	}
	return models.JoinUserIDs(x.SortedOtherUserIDs(ids))
}

// PMWithUserIDs returns the participants of a private message other than
// the current user. It returns false for stream messages and reports an
// error for an empty recipient list.
func (x *Index) PMWithUserIDs(msg *models.Message) ([]models.UserID, bool) {
	if !msg.IsPrivate() {
		return nil, false
	}
	if len(msg.DisplayRecipient) == 0 {
		x.diag.Error(fmt.Sprintf("Empty recipient list in message %d", msg.ID))
		return nil, false
	}
	return x.SortedOtherUserIDs(msg.RecipientIDs()), true
}

// PMReplyKey returns the conversation key for a private message.
func (x *Index) PMReplyKey(msg *models.Message) (string, bool) {
	ids, ok := x.PMWithUserIDs(msg)
	if !ok {
		return "", false
	}
	return models.JoinUserIDs(ids), true
}

// UserIDsString is the conversation key for an arbitrary id list.
func (x *Index) UserIDsString(userIDs []models.UserID) string {
	return models.JoinUserIDs(userIDs)
}

// ExtractPeopleFromMessage adds anyone involved in msg who is not yet known.
// Such late additions are reported because the initial payload should
// already contain everyone.
func (x *Index) ExtractPeopleFromMessage(msg *models.Message) {
	if msg == nil {
		return
	}
	var involved []models.Recipient
	switch msg.Type {
	case models.MessageTypeStream:
		involved = []models.Recipient{{ID: msg.SenderID, Email: msg.SenderEmail, FullName: msg.SenderFullName}}
	case models.MessageTypePrivate:
		involved = msg.DisplayRecipient
	}
	for _, r := range involved {
		if r.ID == 0 || x.HasUserID(r.ID) {
			continue
		}
		x.ReportLateAdd(r.ID, r.Email)
		x.Add(&models.Person{UserID: r.ID, Email: r.Email, FullName: r.FullName})
	}
}

// ReportLateAdd reports a person discovered after initialization.
func (x *Index) ReportLateAdd(userID models.UserID, email string) {
	x.diag.Error(fmt.Sprintf("Added user late: user_id=%d email=%s", userID, email))
}

// InitialPeople is the people portion of the session register payload.
type InitialPeople struct {
	CurrentUserID       models.UserID    `json:"user_id"`
	RealmUsers          []*models.Person `json:"realm_users"`
	RealmNonActiveUsers []*models.Person `json:"realm_non_active_users"`
	CrossRealmBots      []*models.Person `json:"cross_realm_bots"`
}

// Initialize loads the register payload. Invalid records are reported and
// skipped.
func (x *Index) Initialize(init InitialPeople) {
	x.SetCurrentUser(init.CurrentUserID)
	for _, p := range init.RealmUsers {
		if err := p.Validate(); err != nil {
			x.diag.Error("Invalid realm user: " + err.Error())
			continue
		}
		x.AddInRealm(p)
	}
	for _, p := range init.RealmNonActiveUsers {
		if err := p.Validate(); err != nil {
			x.diag.Error("Invalid non-active user: " + err.Error())
			continue
		}
		x.Add(p)
		x.nonActive[p.UserID] = p
	}
	for _, p := range init.CrossRealmBots {
		if err := p.Validate(); err != nil {
			x.diag.Error("Invalid cross-realm bot: " + err.Error())
			continue
		}
		x.AddCrossRealmUser(p)
	}
	if x.currentUserID != 0 && !x.HasUserID(x.currentUserID) {
		x.diag.Warn(fmt.Sprintf("Current user %d missing from realm users", x.currentUserID))
	}
}
