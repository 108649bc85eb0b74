package unread

import (
	"testing"

	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/muting"
	"github.com/tOgg1/tally/internal/people"
	"github.com/tOgg1/tally/internal/streams"
	"github.com/tOgg1/tally/internal/testutil"
)

const (
	me    models.UserID = 30
	alice models.UserID = 101
	bob   models.UserID = 102
	carol models.UserID = 103

	devel     models.StreamID = 100
	social    models.StreamID = 101
	gossip    models.StreamID = 102
	noisy     models.StreamID = 200
	abandoned models.StreamID = 300
)

type messageStore map[models.MessageID]*models.Message

func (m messageStore) Get(id models.MessageID) (*models.Message, bool) {
	msg, ok := m[id]
	return msg, ok
}

type testEnv struct {
	people  *people.Index
	streams *streams.Registry
	muter   *muting.Muter
	rec     *testutil.Recorder
	store   messageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rec := testutil.NewRecorder()

	idx := people.New(rec)
	for _, p := range []*models.Person{
		{UserID: me, Email: "me@example.com", FullName: "Me"},
		{UserID: alice, Email: "alice@example.com", FullName: "Alice"},
		{UserID: bob, Email: "bob@example.com", FullName: "Bob"},
		{UserID: carol, Email: "carol@example.com", FullName: "Carol"},
	} {
		idx.AddInRealm(p)
	}
	idx.SetCurrentUser(me)

	reg := streams.NewRegistry()
	reg.Initialize(
		[]streams.Sub{
			{StreamID: devel, Name: "devel"},
			{StreamID: social, Name: "social"},
			{StreamID: gossip, Name: "gossip"},
			{StreamID: noisy, Name: "noisy", IsMuted: true},
		},
		[]streams.Sub{{StreamID: abandoned, Name: "abandoned"}},
	)

	return &testEnv{
		people:  idx,
		streams: reg,
		muter:   muting.New(rec),
		rec:     rec,
		store:   make(messageStore),
	}
}

func (e *testEnv) service(opts Options) *Service {
	opts.People = e.people
	opts.Streams = e.streams
	opts.Muting = e.muter
	if opts.Messages == nil {
		opts.Messages = e.store
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = e.rec
	}
	return New(opts)
}

func (e *testEnv) streamMsg(id models.MessageID, streamID models.StreamID, topic string) *models.Message {
	msg := &models.Message{
		ID:       id,
		Type:     models.MessageTypeStream,
		SenderID: alice,
		StreamID: streamID,
		Topic:    topic,
		Unread:   true,
	}
	e.store[id] = msg
	return msg
}

func (e *testEnv) privateMsg(id models.MessageID, participants ...models.UserID) *models.Message {
	msg := &models.Message{ID: id, Type: models.MessageTypePrivate, SenderID: participants[0], Unread: true}
	for _, uid := range participants {
		msg.DisplayRecipient = append(msg.DisplayRecipient, models.Recipient{ID: uid})
	}
	e.store[id] = msg
	return msg
}
