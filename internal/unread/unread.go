// Package unread tracks which messages the session user has not read yet.
//
// Three indices are kept over one flat set of unread ids: private messages
// by conversation key, stream messages by stream and topic, and mentions.
// A message id lives in at most one of the first two and may also be in
// the mentions set. Service is the only entry point callers should use.
package unread

import (
	"context"

	"github.com/tOgg1/tally/internal/events"
	"github.com/tOgg1/tally/internal/ids"
	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
)

// MessageLookup finds loaded message objects.
type MessageLookup interface {
	Get(id models.MessageID) (*models.Message, bool)
}

// Publisher receives a notification after each mutation that changed
// counts. *events.InMemoryPublisher implements it.
type Publisher interface {
	Publish(ctx context.Context, event *models.Event)
}

// State is the lifecycle stage of a Service.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateBankrupt
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateBankrupt:
		return "bankrupt"
	default:
		return "uninitialized"
	}
}

// Options wires a Service to its collaborators. People, Streams and
// Muting are required.
type Options struct {
	People  ConversationKeyer
	Streams Streams
	Muting  TopicMuter

	// Messages lets MarkAsRead clear the Unread flag on loaded messages.
	Messages    MessageLookup
	Diagnostics logging.Diagnostics
	Publisher   Publisher
	Policy      NotifiablePolicy
	// SessionID is the entity id on published events.
	SessionID string
}

// Service is the unread façade.
type Service struct {
	muter     TopicMuter
	messages  MessageLookup
	diag      logging.Diagnostics
	publisher Publisher
	policy    NotifiablePolicy
	sessionID string

	pms       *PMCounter
	topics    *TopicCounter
	mentions  *ids.Set
	unreadIDs *ids.Set
	state     State
}

func New(opts Options) *Service {
	if opts.Diagnostics == nil {
		opts.Diagnostics = logging.Nop{}
	}
	if opts.Policy == "" {
		opts.Policy = PolicyNotifiable
	}
	if opts.SessionID == "" {
		opts.SessionID = "local"
	}
	return &Service{
		muter:     opts.Muting,
		messages:  opts.Messages,
		diag:      opts.Diagnostics,
		publisher: opts.Publisher,
		policy:    opts.Policy,
		sessionID: opts.SessionID,
		pms:       NewPMCounter(opts.People),
		topics:    NewTopicCounter(opts.Streams, opts.Muting),
		mentions:  ids.New(),
		unreadIDs: ids.New(),
	}
}

func (s *Service) State() State {
	return s.state
}

// Initialize bulk-loads the server snapshot. It is meant to run once per
// session; a second call without DeclareBankruptcy warns and adds to the
// existing state.
func (s *Service) Initialize(snapshot models.UnreadSnapshot) {
	if s.state == StateInitialized {
		s.diag.Warn("unread initialized twice without declaring bankruptcy")
	}
	s.pms.SetHuddles(snapshot.Huddles)
	s.pms.SetPMs(snapshot.PMs)
	s.topics.SetStreams(snapshot.Streams)
	s.mentions.AddMany(snapshot.Mentions)
	s.unreadIDs.AddMany(snapshot.AllIDs())
	s.state = StateInitialized
	s.publishCounts("initialize")
}

// ProcessLoadedMessages indexes every message flagged unread.
func (s *Service) ProcessLoadedMessages(msgs []*models.Message) {
	changed := false
	for _, msg := range msgs {
		if msg == nil || !msg.Unread {
			continue
		}
		s.unreadIDs.Add(msg.ID)
		switch msg.Type {
		case models.MessageTypePrivate:
			s.pms.Add(msg)
		case models.MessageTypeStream:
			s.topics.Add(msg.StreamID, msg.Topic, msg.ID)
		}
		s.updateMessageForMention(msg)
		changed = true
	}
	if changed {
		s.publishCounts("process_loaded_messages")
	}
}

// UpdateMessageForMention re-evaluates whether msg belongs in the mentions
// set, typically after an edit.
func (s *Service) UpdateMessageForMention(msg *models.Message) {
	if msg == nil {
		return
	}
	had := s.mentions.Has(msg.ID)
	s.updateMessageForMention(msg)
	if had != s.mentions.Has(msg.ID) {
		s.publishCounts("update_message_for_mention")
	}
}

// A mention counts if it names the user directly, or is a stream mention
// outside a muted topic.
func (s *Service) updateMessageForMention(msg *models.Message) {
	if !msg.Unread {
		s.mentions.Del(msg.ID)
		return
	}
	unmutedMention := msg.IsStream() && msg.Mentioned &&
		!s.muter.IsTopicMuted(msg.StreamID, msg.Topic)
	if unmutedMention || msg.MentionedMeDirectly {
		s.mentions.Add(msg.ID)
	} else {
		s.mentions.Del(msg.ID)
	}
}

// MarkAsRead removes id from every index. Marking an id twice is a no-op.
func (s *Service) MarkAsRead(id models.MessageID) {
	if s.markAsRead(id) {
		s.publishCounts("mark_as_read")
	}
}

// MarkManyAsRead marks each id read and publishes once.
func (s *Service) MarkManyAsRead(list []models.MessageID) {
	changed := false
	for _, id := range list {
		if s.markAsRead(id) {
			changed = true
		}
	}
	if changed {
		s.publishCounts("mark_as_read")
	}
}

func (s *Service) markAsRead(id models.MessageID) bool {
	was := s.unreadIDs.Has(id)
	s.pms.Del(id)
	s.topics.Del(id)
	s.mentions.Del(id)
	s.unreadIDs.Del(id)

	if s.messages != nil {
		if msg, ok := s.messages.Get(id); ok {
			msg.Unread = false
		}
	}
	return was
}

// UpdateUnreadTopics moves an unread stream message to the topic named by
// edit. Edits without a topic, private messages and messages not tracked
// as unread are ignored.
func (s *Service) UpdateUnreadTopics(msg *models.Message, edit models.TopicEdit) {
	if msg == nil || edit.Topic == nil || !msg.IsStream() {
		return
	}
	if !s.unreadIDs.Has(msg.ID) {
		return
	}
	s.topics.Del(msg.ID)
	s.topics.Add(msg.StreamID, *edit.Topic, msg.ID)
	s.publishCounts("update_unread_topics")
}

// DeclareBankruptcy drops all unread state.
func (s *Service) DeclareBankruptcy() {
	s.pms.Clear()
	s.topics.Clear()
	s.mentions.Clear()
	s.unreadIDs.Clear()
	s.state = StateBankrupt
	s.publish(models.EventTypeBankruptcy, nil)
	s.publishCounts("declare_bankruptcy")
}

// NotifyCountsChanged publishes the current counts after a change outside
// the unread indices, such as a mute or subscription update, that shifts
// what they include.
func (s *Service) NotifyCountsChanged(reason string) {
	s.publishCounts(reason)
}

// GetCounts aggregates all three indices.
func (s *Service) GetCounts() Counts {
	topicCounts := s.topics.GetCounts()
	pmCounts := s.pms.GetCounts()
	return Counts{
		PrivateMessageCount:   pmCounts.TotalCount,
		MentionedMessageCount: s.mentions.Count(),
		HomeUnreadMessages:    topicCounts.StreamUnreadMessages + pmCounts.TotalCount,
		StreamCount:           topicCounts.StreamCount,
		TopicCount:            topicCounts.TopicCount,
		PMCount:               pmCounts.PMDict,
	}
}

// GetNotifiableCount applies the configured policy to GetCounts.
func (s *Service) GetNotifiableCount() int {
	return CalculateNotifiableCount(s.GetCounts(), s.policy)
}

func (s *Service) NumUnreadForStream(streamID models.StreamID) int {
	return s.topics.GetStreamCount(streamID)
}

func (s *Service) NumUnreadForTopic(streamID models.StreamID, topic string) int {
	return s.topics.Get(streamID, topic)
}

func (s *Service) TopicHasAnyUnread(streamID models.StreamID, topic string) bool {
	return s.topics.TopicHasAnyUnread(streamID, topic)
}

func (s *Service) NumUnreadForPerson(userIDsString string) int {
	return s.pms.NumUnread(userIDsString)
}

func (s *Service) NumUnreadMentions() int {
	return s.mentions.Count()
}

func (s *Service) GetMissingTopics(streamID models.StreamID, known []string) []MissingTopic {
	return s.topics.GetMissingTopics(streamID, known)
}

func (s *Service) GetMsgIDsForStream(streamID models.StreamID) []models.MessageID {
	return s.topics.GetMsgIDsForStream(streamID)
}

func (s *Service) GetMsgIDsForTopic(streamID models.StreamID, topic string) []models.MessageID {
	return s.topics.GetMsgIDsForTopic(streamID, topic)
}

func (s *Service) GetMsgIDsForPerson(userIDsString string) []models.MessageID {
	return s.pms.GetMsgIDsForPerson(userIDsString)
}

func (s *Service) GetMsgIDsForPrivate() []models.MessageID {
	return s.pms.GetMsgIDs()
}

func (s *Service) GetMsgIDsForMentions() []models.MessageID {
	return models.SortedIDs(s.mentions.Members())
}

// GetMsgIDsForStarred is always empty; starred messages are not tracked.
func (s *Service) GetMsgIDsForStarred() []models.MessageID {
	return []models.MessageID{}
}

// GetAllMsgIDs returns the flat unread set, ascending.
func (s *Service) GetAllMsgIDs() []models.MessageID {
	return models.SortedIDs(s.unreadIDs.Members())
}

func (s *Service) IDFlaggedAsUnread(id models.MessageID) bool {
	return s.unreadIDs.Has(id)
}

// MessageUnread reports the message object's own flag.
func (s *Service) MessageUnread(msg *models.Message) bool {
	return msg != nil && msg.Unread
}

// GetUnreadMessageIDs filters list down to tracked unread ids, keeping
// order.
func (s *Service) GetUnreadMessageIDs(list []models.MessageID) []models.MessageID {
	out := []models.MessageID{}
	for _, id := range list {
		if s.unreadIDs.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// GetUnreadMessages filters msgs down to tracked unread messages.
func (s *Service) GetUnreadMessages(msgs []*models.Message) []*models.Message {
	out := []*models.Message{}
	for _, msg := range msgs {
		if msg != nil && s.unreadIDs.Has(msg.ID) {
			out = append(out, msg)
		}
	}
	return out
}

func (s *Service) publishCounts(reason string) {
	if s.publisher == nil {
		return
	}
	counts := s.GetCounts()
	s.publish(models.EventTypeCountsChanged, models.CountsChangedPayload{
		Reason:                reason,
		HomeUnreadMessages:    counts.HomeUnreadMessages,
		PrivateMessageCount:   counts.PrivateMessageCount,
		MentionedMessageCount: counts.MentionedMessageCount,
	})
}

func (s *Service) publish(eventType models.EventType, payload any) {
	if s.publisher == nil {
		return
	}
	event, err := events.New(eventType, models.EntityTypeSession, s.sessionID, payload)
	if err != nil {
		s.diag.Error("failed to build " + string(eventType) + " event: " + err.Error())
		return
	}
	s.publisher.Publish(context.Background(), event)
}
