package people

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/testutil"
)

var (
	me      = &models.Person{UserID: 30, Email: "me@example.com", FullName: "Me Myself"}
	alice   = &models.Person{UserID: 101, Email: "alice@example.com", FullName: "Alice Smith"}
	bob     = &models.Person{UserID: 102, Email: "bob@example.com", FullName: "Bob"}
	welcome = &models.Person{UserID: 5, Email: "welcome-bot@zulip.com", FullName: "Welcome Bot", IsBot: true}
)

func newTestIndex(t *testing.T) (*Index, *testutil.Recorder) {
	t.Helper()
	rec := testutil.NewRecorder()
	idx := New(rec)
	// copies so tests can mutate freely
	m, a, b := *me, *alice, *bob
	idx.AddInRealm(&m)
	idx.AddInRealm(&a)
	idx.AddInRealm(&b)
	idx.SetCurrentUser(me.UserID)
	return idx, rec
}

func TestIndex_LookupsAllResolveSamePerson(t *testing.T) {
	idx, rec := newTestIndex(t)

	byID, ok := idx.GetByUserID(101)
	require.True(t, ok)
	byEmail, ok := idx.GetByEmail("ALICE@example.com")
	require.True(t, ok)
	byName, ok := idx.GetByName("alice smith")
	require.True(t, ok)

	require.Same(t, byID, byEmail)
	require.Same(t, byID, byName)
	require.Empty(t, rec.Entries())
}

func TestIndex_UnknownLookupsReportAndDegrade(t *testing.T) {
	idx, rec := newTestIndex(t)

	p, ok := idx.GetByUserID(9999)
	require.False(t, ok)
	require.Nil(t, p)
	require.True(t, rec.HasError("Unknown user_id in get_by_user_id: 9999"))

	_, ok = idx.GetByName("Nobody")
	require.False(t, ok)
	require.True(t, rec.HasError("Unknown full name"))

	// Unknown email is an expected-absent lookup.
	rec.Reset()
	_, ok = idx.GetByEmail("nobody@example.com")
	require.False(t, ok)
	require.Empty(t, rec.Entries())
}

func TestIndex_DeactivateKeepsLookups(t *testing.T) {
	idx, _ := newTestIndex(t)
	bobRecord, _ := idx.GetByUserID(102)

	idx.Deactivate(bobRecord)

	require.False(t, idx.IsActive(102))
	for _, p := range idx.GetRealmPersons() {
		require.NotEqual(t, models.UserID(102), p.UserID)
	}
	still, ok := idx.GetPersonFromUserID(102)
	require.True(t, ok)
	require.Same(t, bobRecord, still)
	require.Equal(t, []*models.Person{bobRecord}, idx.GetNonActivePersons())

	idx.AddInRealm(bobRecord)
	require.True(t, idx.IsActive(102))
	require.Empty(t, idx.GetNonActivePersons())
}

func TestIndex_UpdateEmailKeepsLegacyKey(t *testing.T) {
	idx, rec := newTestIndex(t)

	idx.UpdateEmail(30, "new@x.com")

	byNew, ok := idx.GetByEmail("new@x.com")
	require.True(t, ok)
	byID, _ := idx.GetPersonFromUserID(30)
	require.Same(t, byID, byNew)
	require.Equal(t, "new@x.com", byID.Email)

	byOld, ok := idx.GetByEmail("me@example.com")
	require.True(t, ok)
	require.Same(t, byID, byOld)
	require.Len(t, rec.Warnings(), 1)
	require.Contains(t, rec.Warnings()[0], "Obsolete email")

	idx.UpdateEmail(4242, "ghost@x.com")
	require.True(t, rec.HasError("Unknown user_id in update_email"))
}

func TestIndex_DuplicateFullNames(t *testing.T) {
	idx, rec := newTestIndex(t)
	otherBob := &models.Person{UserID: 103, Email: "bob2@example.com", FullName: "Bob"}
	idx.AddInRealm(otherBob)

	require.True(t, idx.IsDuplicateFullName("bob"))
	require.False(t, idx.IsDuplicateFullName("Alice Smith"))
	require.Equal(t, "@**Bob|103**", idx.GetMentionSyntax("Bob", 103, false))
	require.Equal(t, "@_**Alice Smith**", idx.GetMentionSyntax("Alice Smith", 101, true))

	idx.SetFullName(otherBob, "Robert")
	require.False(t, idx.IsDuplicateFullName("Bob"))
	require.Equal(t, "Robert", otherBob.FullName)

	byName, ok := idx.GetByName("Robert")
	require.True(t, ok)
	require.Same(t, otherBob, byName)

	// The remaining Bob still resolves by name.
	remaining, ok := idx.GetByName("Bob")
	require.True(t, ok)
	require.Equal(t, models.UserID(102), remaining.UserID)
	require.Empty(t, rec.Errors())
}

func TestIndex_WildcardNamesAlwaysDisambiguate(t *testing.T) {
	idx, rec := newTestIndex(t)
	require.Equal(t, "@**all|77**", idx.GetMentionSyntax("all", 77, false))
	require.Equal(t, "@**Everyone**", idx.GetMentionSyntax("Everyone", 0, false))
	require.Len(t, rec.Warnings(), 1)
}

func TestIndex_CrossRealmAndHumans(t *testing.T) {
	idx, _ := newTestIndex(t)
	bot := *welcome
	idx.AddCrossRealmUser(&bot)

	require.True(t, idx.IsCrossRealmEmail("welcome-bot@zulip.com"))
	require.False(t, idx.IsCrossRealmEmail("alice@example.com"))
	require.Equal(t, 3, idx.RealmCount())
	require.Equal(t, []models.UserID{30, 101, 102}, idx.GetActiveUserIDs())
}

func TestIndex_EmailConversions(t *testing.T) {
	idx, _ := newTestIndex(t)

	key, ok := idx.EmailsToUserIDsString("bob@example.com, alice@example.com")
	require.True(t, ok)
	require.Equal(t, "101,102", key)

	emails, ok := idx.UserIDsStringToEmails("102,101")
	require.True(t, ok)
	require.Equal(t, "alice@example.com,bob@example.com", emails)

	_, ok = idx.EmailsToUserIDsString("nobody@example.com")
	require.False(t, ok)
}

func TestIndex_BotOwner(t *testing.T) {
	idx, _ := newTestIndex(t)
	owner := models.UserID(101)
	bot := &models.Person{UserID: 200, Email: "bot@example.com", FullName: "Helper", IsBot: true, BotOwnerID: &owner}
	idx.AddInRealm(bot)

	got, ok := idx.GetBotOwner(bot)
	require.True(t, ok)
	require.Equal(t, "Alice Smith", got.FullName)

	_, ok = idx.GetBotOwner(alice)
	require.False(t, ok)
}

func TestIndex_Initialize(t *testing.T) {
	rec := testutil.NewRecorder()
	idx := New(rec)
	m, a, b, w := *me, *alice, *bob, *welcome

	idx.Initialize(InitialPeople{
		CurrentUserID:       30,
		RealmUsers:          []*models.Person{&m, &a, {UserID: 0, Email: "", FullName: ""}},
		RealmNonActiveUsers: []*models.Person{&b},
		CrossRealmBots:      []*models.Person{&w},
	})

	require.Equal(t, models.UserID(30), idx.CurrentUserID())
	require.True(t, idx.IsActive(101))
	require.False(t, idx.IsActive(102))
	require.True(t, idx.HasUserID(102))
	require.True(t, idx.IsCrossRealmEmail("welcome-bot@zulip.com"))
	require.True(t, idx.IsCurrentUser("me@example.com"))
	require.Len(t, rec.Errors(), 1)
	require.Contains(t, rec.Errors()[0], "Invalid realm user")
}
