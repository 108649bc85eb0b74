// Package session wires the per-session indices together and feeds them
// the register payload and live server events.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tOgg1/tally/internal/config"
	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/muting"
	"github.com/tOgg1/tally/internal/people"
	"github.com/tOgg1/tally/internal/pmconv"
	"github.com/tOgg1/tally/internal/streams"
	"github.com/tOgg1/tally/internal/unread"
)

var (
	// ErrUnknownEventType is returned by Apply for event types it does not
	// handle.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrNotInitialized is returned by Apply before Initialize.
	ErrNotInitialized = errors.New("session not initialized")
)

// Config holds session settings.
type Config struct {
	// Policy selects what the notifiable count includes.
	Policy unread.NotifiablePolicy

	// EchoWindow is how long muted_topics events are ignored after a local
	// mute change.
	EchoWindow time.Duration

	// CurrentUserID overrides the register payload's user_id when set.
	CurrentUserID models.UserID

	// ID identifies the session on published events. Empty means a new uuid.
	ID string
}

// ConfigFrom derives session settings from the application config.
func ConfigFrom(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	return Config{
		Policy:        cfg.NotifiablePolicy(),
		EchoWindow:    cfg.Muting.EchoWindow,
		CurrentUserID: models.UserID(cfg.Session.CurrentUserID),
	}
}

// Deps are the session's outside collaborators. All are optional.
type Deps struct {
	Diagnostics logging.Diagnostics
	Publisher   unread.Publisher
	Now         func() time.Time
}

// Session owns one user's view of a realm.
type Session struct {
	mu sync.Mutex

	id     string
	cfg    Config
	diag   logging.Diagnostics
	now    func() time.Time
	logger zerolog.Logger

	people   *people.Index
	streams  *streams.Registry
	muter    *muting.Muter
	echo     *muting.EchoGuard
	recent   *pmconv.Recent
	partners *pmconv.Partners
	messages *MessageStore
	unread   *unread.Service

	initialized bool
}

// New returns an uninitialized session.
func New(cfg Config, deps Deps) *Session {
	if deps.Diagnostics == nil {
		deps.Diagnostics = logging.ComponentDiagnostics("session")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	id := cfg.ID
	if id == "" {
		id = uuid.New().String()
	}

	s := &Session{
		id:       id,
		cfg:      cfg,
		diag:     deps.Diagnostics,
		now:      deps.Now,
		logger:   logging.Component("session").With().Str("session_id", id).Logger(),
		people:   people.New(deps.Diagnostics),
		streams:  streams.NewRegistry(),
		muter:    muting.New(deps.Diagnostics),
		echo:     muting.NewEchoGuard(cfg.EchoWindow),
		partners: pmconv.NewPartners(),
		messages: NewMessageStore(),
	}
	s.recent = pmconv.NewRecent(s.people)
	s.unread = unread.New(unread.Options{
		People:      s.people,
		Streams:     s.streams,
		Muting:      s.muter,
		Messages:    s.messages,
		Diagnostics: deps.Diagnostics,
		Publisher:   deps.Publisher,
		Policy:      cfg.Policy,
		SessionID:   id,
	})
	return s
}

// ID returns the session id used on published events.
func (s *Session) ID() string {
	return s.id
}

// Initialize loads the register payload. Order matters: people and streams
// must be known before the unread snapshot is keyed against them.
func (s *Session) Initialize(state InitialState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := state.UserID
	if s.cfg.CurrentUserID != 0 {
		userID = s.cfg.CurrentUserID
	}

	s.people.Initialize(people.InitialPeople{
		CurrentUserID:       userID,
		RealmUsers:          state.RealmUsers,
		RealmNonActiveUsers: state.RealmNonActiveUsers,
		CrossRealmBots:      state.CrossRealmBots,
	})
	s.streams.Initialize(state.Subscriptions, state.Unsubscribed)
	s.muter.SetMutedTopics(state.MutedTopics, s.streams)
	s.muter.SetMutedUsers(state.MutedUsers)
	s.recent.Initialize(state.RecentPrivateConversations)
	s.unread.Initialize(state.UnreadMsgs)

	for _, msg := range state.Messages {
		s.addMessage(msg)
	}
	s.unread.ProcessLoadedMessages(state.Messages)

	s.initialized = true
	s.logger.Debug().
		Int64("user_id", int64(userID)).
		Int("realm_users", len(state.RealmUsers)).
		Int("subscriptions", len(state.Subscriptions)).
		Int("unread", len(s.unread.GetAllMsgIDs())).
		Msg("session initialized")
}

// Initialized reports whether Initialize has run.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// addMessage stores msg and records its people and conversation.
func (s *Session) addMessage(msg *models.Message) {
	if msg == nil {
		return
	}
	s.people.ExtractPeopleFromMessage(msg)
	s.messages.Add(msg)
	if !msg.IsPrivate() {
		return
	}
	others, ok := s.people.PMWithUserIDs(msg)
	if !ok {
		return
	}
	s.recent.Insert(others, msg.ID)
	if s.people.IsMyUserID(msg.SenderID) {
		for _, id := range others {
			s.partners.SetPartner(id)
		}
	}
}

// Counts returns the current unread counts.
func (s *Session) Counts() unread.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread.GetCounts()
}

// NotifiableCount applies the configured badge policy.
func (s *Session) NotifiableCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread.GetNotifiableCount()
}

// MarkAsRead marks ids read on behalf of the local user.
func (s *Session) MarkAsRead(ids []models.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread.MarkManyAsRead(ids)
}

// MuteTopic mutes a topic locally. The server's echo of this change is
// ignored for the configured echo window.
func (s *Session) MuteTopic(streamID models.StreamID, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.muter.AddMutedTopic(streamID, topic, now)
	s.echo.MarkLocalUpdate(now)
	s.unread.NotifyCountsChanged("mute_topic")
}

// UnmuteTopic reverses MuteTopic.
func (s *Session) UnmuteTopic(streamID models.StreamID, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muter.RemoveMutedTopic(streamID, topic)
	s.echo.MarkLocalUpdate(s.now())
	s.unread.NotifyCountsChanged("unmute_topic")
}

// The accessors below hand out the underlying indices. Callers that share
// a session across goroutines must not use them concurrently with Apply.

func (s *Session) Unread() *unread.Service {
	return s.unread
}

func (s *Session) People() *people.Index {
	return s.people
}

func (s *Session) Recent() *pmconv.Recent {
	return s.recent
}

func (s *Session) Partners() *pmconv.Partners {
	return s.partners
}

func (s *Session) Streams() *streams.Registry {
	return s.streams
}

func (s *Session) Muting() *muting.Muter {
	return s.muter
}

func (s *Session) Messages() *MessageStore {
	return s.messages
}
