// Package people is the directory of known users.
//
// Persons are indexed by email, full name and user id. Records are never
// deleted; deactivation only removes a person from the active subset.
package people

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tOgg1/tally/internal/dict"
	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
)

// Full names that collide with wildcard mentions always need an id suffix.
var wildcardMentions = []string{"all", "everyone", "stream"}

// Index holds every person seen this session.
type Index struct {
	diag logging.Diagnostics

	byEmail  *dict.FoldDict[*models.Person]
	byName   *dict.FoldDict[*models.Person]
	byUserID map[models.UserID]*models.Person

	active     map[models.UserID]*models.Person
	nonActive  map[models.UserID]*models.Person
	crossRealm map[models.UserID]*models.Person

	// full name -> ids of everyone who has that name
	duplicateNames *dict.FoldDict[map[models.UserID]struct{}]

	currentUserID models.UserID
}

// New returns an empty Index. A nil diag discards diagnostics.
func New(diag logging.Diagnostics) *Index {
	if diag == nil {
		diag = logging.Nop{}
	}
	idx := &Index{diag: diag}
	idx.Clear()
	return idx
}

// Clear drops every record, including the current user.
func (x *Index) Clear() {
	x.byEmail = dict.NewFold[*models.Person]()
	x.byName = dict.NewFold[*models.Person]()
	x.byUserID = make(map[models.UserID]*models.Person)
	x.active = make(map[models.UserID]*models.Person)
	x.nonActive = make(map[models.UserID]*models.Person)
	x.crossRealm = make(map[models.UserID]*models.Person)
	x.duplicateNames = dict.NewFold[map[models.UserID]struct{}]()
	x.currentUserID = 0
}

// Add registers person in every lookup table. It does not mark the person
// active.
func (x *Index) Add(person *models.Person) {
	if person == nil {
		x.diag.Error("people.Add called with nil person")
		return
	}
	if person.UserID != 0 {
		x.byUserID[person.UserID] = person
	} else {
		x.diag.Error("No user_id provided for " + person.Email)
	}
	x.trackDuplicateFullName(person.FullName, person.UserID, "")
	x.byEmail.Set(person.Email, person)
	x.byName.Set(person.FullName, person)
}

// AddInRealm registers person and marks them active.
func (x *Index) AddInRealm(person *models.Person) {
	if person == nil {
		x.diag.Error("people.AddInRealm called with nil person")
		return
	}
	x.active[person.UserID] = person
	x.Add(person)
	delete(x.nonActive, person.UserID)
}

// AddCrossRealmUser registers a system bot that is visible across realms.
func (x *Index) AddCrossRealmUser(person *models.Person) {
	if person == nil {
		return
	}
	if _, ok := x.byUserID[person.UserID]; !ok {
		x.Add(person)
	}
	x.crossRealm[person.UserID] = person
}

// Deactivate removes person from the active subset. Lookups by id, email
// and name keep working.
func (x *Index) Deactivate(person *models.Person) {
	if person == nil {
		return
	}
	delete(x.active, person.UserID)
	x.nonActive[person.UserID] = person
}

func (x *Index) IsActive(userID models.UserID) bool {
	_, ok := x.active[userID]
	return ok
}

// UpdateEmail rebinds a person's email. The old email key is left in place
// and still resolves to the same (updated) person.
func (x *Index) UpdateEmail(userID models.UserID, newEmail string) {
	person, ok := x.byUserID[userID]
	if !ok {
		x.diag.Error(fmt.Sprintf("Unknown user_id in update_email: %d", userID))
		return
	}
	person.Email = newEmail
	x.byEmail.Set(newEmail, person)
}

// SetFullName moves person from the old name's duplicate bucket to the new
// one and rebinds the name lookup.
func (x *Index) SetFullName(person *models.Person, newFullName string) {
	if person == nil {
		return
	}
	oldFullName := person.FullName
	if existing, ok := x.byName.Get(oldFullName); ok && existing == person {
		x.byName.Del(oldFullName)
	}
	x.trackDuplicateFullName(newFullName, person.UserID, oldFullName)
	x.byName.Set(newFullName, person)
	person.FullName = newFullName

	// Someone else may still carry the old name.
	if ids, ok := x.duplicateNames.Get(oldFullName); ok && !x.byName.Has(oldFullName) {
		var next models.UserID
		for id := range ids {
			if next == 0 || id < next {
				next = id
			}
		}
		if other, ok := x.byUserID[next]; ok {
			x.byName.Set(other.FullName, other)
		}
	}
}

func (x *Index) trackDuplicateFullName(fullName string, userID models.UserID, oldFullName string) {
	if ids, ok := x.duplicateNames.Get(oldFullName); ok && oldFullName != "" {
		delete(ids, userID)
		if len(ids) == 0 {
			x.duplicateNames.Del(oldFullName)
		}
	}
	ids, ok := x.duplicateNames.Get(fullName)
	if !ok {
		ids = make(map[models.UserID]struct{})
		x.duplicateNames.Set(fullName, ids)
	}
	if userID != 0 {
		ids[userID] = struct{}{}
	}
}

// IsDuplicateFullName reports whether more than one person has fullName.
func (x *Index) IsDuplicateFullName(fullName string) bool {
	ids, ok := x.duplicateNames.Get(fullName)
	return ok && len(ids) > 1
}

// GetMentionSyntax renders a mention, appending the user id when the name
// alone would be ambiguous.
func (x *Index) GetMentionSyntax(fullName string, userID models.UserID, silent bool) string {
	mention := "@**"
	if silent {
		mention = "@_**"
	}
	if userID == 0 {
		x.diag.Warn("get_mention_syntax called without user_id.")
	}
	if userID != 0 && (x.IsDuplicateFullName(fullName) || matchesWildcard(fullName)) {
		mention += fullName + "|" + strconv.FormatInt(int64(userID), 10)
	} else {
		mention += fullName
	}
	return mention + "**"
}

func matchesWildcard(fullName string) bool {
	folded := dict.FoldKey(fullName)
	for _, w := range wildcardMentions {
		if folded == w {
			return true
		}
	}
	return false
}

// GetByEmail looks a person up by any email they have ever had. Unknown
// emails are not an error. Lookups through an obsolete email warn.
func (x *Index) GetByEmail(email string) (*models.Person, bool) {
	person, ok := x.byEmail.Get(email)
	if !ok {
		return nil, false
	}
	if dict.FoldKey(person.Email) != dict.FoldKey(email) {
		x.diag.Warn("Obsolete email passed to get_by_email: " + email + " new email = " + person.Email)
	}
	return person, true
}

// GetByUserID returns the person with userID. Unknown ids are reported.
func (x *Index) GetByUserID(userID models.UserID) (*models.Person, bool) {
	person, ok := x.byUserID[userID]
	if !ok {
		x.diag.Error(fmt.Sprintf("Unknown user_id in get_by_user_id: %d", userID))
		return nil, false
	}
	return person, true
}

// GetPersonFromUserID is an alias of GetByUserID.
func (x *Index) GetPersonFromUserID(userID models.UserID) (*models.Person, bool) {
	return x.GetByUserID(userID)
}

// HasUserID reports whether userID is known, without diagnostics.
func (x *Index) HasUserID(userID models.UserID) bool {
	_, ok := x.byUserID[userID]
	return ok
}

// GetByName returns the person most recently registered under fullName.
func (x *Index) GetByName(fullName string) (*models.Person, bool) {
	person, ok := x.byName.Get(fullName)
	if !ok {
		x.diag.Error("Unknown full name in get_by_name: " + fullName)
		return nil, false
	}
	return person, true
}

// GetRealmPersons returns active persons sorted by user id.
func (x *Index) GetRealmPersons() []*models.Person {
	return sortedPersons(x.active)
}

// GetNonActivePersons returns deactivated persons sorted by user id.
func (x *Index) GetNonActivePersons() []*models.Person {
	return sortedPersons(x.nonActive)
}

// GetActiveHumans returns active persons that are not bots.
func (x *Index) GetActiveHumans() []*models.Person {
	var out []*models.Person
	for _, p := range sortedPersons(x.active) {
		if !p.IsBot {
			out = append(out, p)
		}
	}
	return out
}

// GetActiveUserIDs returns the ids of active persons, ascending.
func (x *Index) GetActiveUserIDs() []models.UserID {
	ids := make([]models.UserID, 0, len(x.active))
	for id := range x.active {
		ids = append(ids, id)
	}
	return models.SortedUserIDs(ids)
}

// RealmCount is the number of active humans.
func (x *Index) RealmCount() int {
	return len(x.GetActiveHumans())
}

// IsCrossRealmEmail reports whether email belongs to a cross-realm bot.
func (x *Index) IsCrossRealmEmail(email string) bool {
	person, ok := x.byEmail.Get(email)
	if !ok {
		return false
	}
	_, ok = x.crossRealm[person.UserID]
	return ok
}

// GetBotOwner returns the owner of a bot, if any.
func (x *Index) GetBotOwner(bot *models.Person) (*models.Person, bool) {
	if bot == nil || bot.BotOwnerID == nil {
		return nil, false
	}
	return x.GetByUserID(*bot.BotOwnerID)
}

func sortedPersons(m map[models.UserID]*models.Person) []*models.Person {
	out := make([]*models.Person, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// EmailsToUserIDsString maps a comma-separated email list to a conversation
// key. It returns false if any email is unknown.
func (x *Index) EmailsToUserIDsString(emails string) (string, bool) {
	var ids []models.UserID
	for _, email := range strings.Split(emails, ",") {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		person, ok := x.byEmail.Get(email)
		if !ok {
			x.diag.Warn("Unknown email: " + email)
			return "", false
		}
		ids = append(ids, person.UserID)
	}
	return models.JoinUserIDs(ids), true
}

// UserIDsStringToEmails maps a conversation key back to a sorted
// comma-separated email list.
func (x *Index) UserIDsStringToEmails(userIDsString string) (string, bool) {
	ids, ok := models.SplitUserIDs(userIDsString)
	if !ok {
		x.diag.Warn("Malformed user_ids_string: " + userIDsString)
		return "", false
	}
	emails := make([]string, 0, len(ids))
	for _, id := range ids {
		person, ok := x.GetByUserID(id)
		if !ok {
			return "", false
		}
		emails = append(emails, strings.ToLower(person.Email))
	}
	sort.Strings(emails)
	return strings.Join(emails, ","), true
}
