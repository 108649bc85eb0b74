package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
)

// Event types Apply understands.
const (
	EventMessage            = "message"
	EventUpdateMessageFlags = "update_message_flags"
	EventUpdateMessage      = "update_message"
	EventMutedTopics        = "muted_topics"
	EventMutedUsers         = "muted_users"
	EventSubscription       = "subscription"
	EventRealmUser          = "realm_user"
	EventBankruptcy         = "bankruptcy"
)

// Apply feeds one server event into the session. Malformed events return
// an error and leave the session unchanged. Unknown event types are
// reported and return ErrUnknownEventType.
func (s *Session) Apply(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	logger := logging.FromContext(ctx).With().
		Str("session_id", s.id).
		Str("event_type", ev.Type).
		Int64("event_id", ev.ID).
		Logger()

	var err error
	switch ev.Type {
	case EventMessage:
		err = s.applyMessage(ev)
	case EventUpdateMessageFlags:
		err = s.applyUpdateMessageFlags(ev)
	case EventUpdateMessage:
		err = s.applyUpdateMessage(ev)
	case EventMutedTopics:
		err = s.applyMutedTopics(ev)
	case EventMutedUsers:
		err = s.applyMutedUsers(ev)
	case EventSubscription:
		err = s.applySubscription(ev)
	case EventRealmUser:
		err = s.applyRealmUser(ev)
	case EventBankruptcy:
		s.unread.DeclareBankruptcy()
	default:
		s.diag.Warn("Unknown event type: " + ev.Type)
		return fmt.Errorf("%w: %s", ErrUnknownEventType, ev.Type)
	}
	if err != nil {
		return err
	}

	logger.Debug().Str("op", ev.Op).Msg("event applied")
	return nil
}

func (s *Session) applyMessage(ev Event) error {
	var body messageEvent
	if err := ev.Decode(&body); err != nil {
		return err
	}
	if body.Message == nil {
		return fmt.Errorf("message event %d has no message", ev.ID)
	}
	msg := body.Message
	if body.Flags != nil {
		applyFlags(msg, *body.Flags)
	}
	s.addMessage(msg)
	s.unread.ProcessLoadedMessages([]*models.Message{msg})
	return nil
}

func (s *Session) applyUpdateMessageFlags(ev Event) error {
	var body flagsEvent
	if err := ev.Decode(&body); err != nil {
		return err
	}

	switch body.Flag {
	case "read":
	case "starred":
		for _, id := range body.Messages {
			if msg, ok := s.messages.Get(id); ok {
				msg.Starred = ev.Op == "add"
			}
		}
		return nil
	default:
		return nil
	}

	switch ev.Op {
	case "add":
		if body.All {
			s.unread.DeclareBankruptcy()
			return nil
		}
		s.unread.MarkManyAsRead(body.Messages)
	case "remove":
		s.diag.Warn("Marking messages unread is not supported")
	default:
		return fmt.Errorf("update_message_flags event %d has unknown op %q", ev.ID, ev.Op)
	}
	return nil
}

func (s *Session) applyUpdateMessage(ev Event) error {
	var body updateMessageEvent
	if err := ev.Decode(&body); err != nil {
		return err
	}
	topic := body.Topic
	if topic == nil {
		topic = body.Subject
	}

	// The flags describe the edited message itself, not the other
	// messages a topic move carried along.
	if body.Flags != nil {
		if msg, ok := s.messages.Get(body.MessageID); ok {
			applyFlags(msg, *body.Flags)
			s.unread.UpdateMessageForMention(msg)
		}
	}

	if topic == nil {
		return nil
	}
	ids := body.MessageIDs
	if len(ids) == 0 && body.MessageID != 0 {
		ids = []models.MessageID{body.MessageID}
	}
	edit := models.TopicEdit{MessageIDs: ids, Topic: topic}
	for _, id := range ids {
		msg, loaded := s.messages.Get(id)
		if !loaded {
			if body.StreamID == 0 {
				continue
			}
			// Unread ids from the snapshot have no loaded message.
			msg = &models.Message{ID: id, Type: models.MessageTypeStream, StreamID: body.StreamID}
		}
		s.unread.UpdateUnreadTopics(msg, edit)
		msg.Topic = *topic
		if loaded {
			// The destination topic may be muted.
			s.unread.UpdateMessageForMention(msg)
		}
	}
	return nil
}

func (s *Session) applyMutedTopics(ev Event) error {
	var body mutedTopicsEvent
	if err := ev.Decode(&body); err != nil {
		return err
	}
	arrival := ev.ReceivedAt
	if arrival.IsZero() {
		arrival = s.now()
	}
	if !s.echo.ShouldApply(arrival) {
		s.logger.Debug().Int64("event_id", ev.ID).Msg("ignoring muted_topics echo of local change")
		return nil
	}
	s.muter.SetMutedTopics(body.MutedTopics, s.streams)
	s.unread.NotifyCountsChanged("muted_topics")
	return nil
}

func (s *Session) applyMutedUsers(ev Event) error {
	var body mutedUsersEvent
	if err := ev.Decode(&body); err != nil {
		return err
	}
	s.muter.SetMutedUsers(body.MutedUsers)
	return nil
}

func (s *Session) applySubscription(ev Event) error {
	var body subscriptionEvent
	if err := ev.Decode(&body); err != nil {
		return err
	}

	switch ev.Op {
	case "add":
		for _, sub := range body.Subscriptions {
			sub.Subscribed = true
			s.streams.Add(sub)
		}
	case "remove":
		for _, sub := range body.Subscriptions {
			if !s.streams.Unsubscribe(sub.StreamID) {
				s.diag.Warn("Unknown stream in subscription remove: " + strconv.FormatInt(int64(sub.StreamID), 10))
			}
		}
	case "update":
		return s.applySubscriptionUpdate(ev, body)
	default:
		return fmt.Errorf("subscription event %d has unknown op %q", ev.ID, ev.Op)
	}
	s.unread.NotifyCountsChanged("subscription")
	return nil
}

func (s *Session) applySubscriptionUpdate(ev Event, body subscriptionEvent) error {
	var muted bool
	switch body.Property {
	case "is_muted":
		if err := json.Unmarshal(body.Value, &muted); err != nil {
			return fmt.Errorf("subscription event %d: bad is_muted value: %w", ev.ID, err)
		}
	case "in_home_view":
		var inHome bool
		if err := json.Unmarshal(body.Value, &inHome); err != nil {
			return fmt.Errorf("subscription event %d: bad in_home_view value: %w", ev.ID, err)
		}
		muted = !inHome
	case "name":
		var name string
		if err := json.Unmarshal(body.Value, &name); err != nil {
			return fmt.Errorf("subscription event %d: bad name value: %w", ev.ID, err)
		}
		sub, ok := s.streams.GetByID(body.StreamID)
		if !ok {
			s.diag.Warn("Unknown stream in subscription update: " + strconv.FormatInt(int64(body.StreamID), 10))
			return nil
		}
		sub.Name = name
		s.streams.Add(sub)
		return nil
	default:
		return nil
	}

	if !s.streams.SetMuted(body.StreamID, muted) {
		s.diag.Warn("Unknown stream in subscription update: " + strconv.FormatInt(int64(body.StreamID), 10))
		return nil
	}
	s.unread.NotifyCountsChanged("subscription")
	return nil
}

func (s *Session) applyRealmUser(ev Event) error {
	var body realmUserEvent
	if err := ev.Decode(&body); err != nil {
		return err
	}
	p := body.Person

	switch ev.Op {
	case "add":
		person := p.Person
		if err := person.Validate(); err != nil {
			s.diag.Error("Invalid realm user in realm_user add: " + err.Error())
			return nil
		}
		if s.people.HasUserID(person.UserID) {
			existing, _ := s.people.GetByUserID(person.UserID)
			s.people.AddInRealm(existing)
			return nil
		}
		s.people.AddInRealm(&person)
	case "remove":
		existing, ok := s.lookupPerson(p.UserID)
		if !ok {
			return nil
		}
		s.people.Deactivate(existing)
	case "update":
		existing, ok := s.lookupPerson(p.UserID)
		if !ok {
			return nil
		}
		if p.NewEmail != "" {
			s.people.UpdateEmail(p.UserID, p.NewEmail)
		}
		if p.FullName != "" && p.FullName != existing.FullName {
			s.people.SetFullName(existing, p.FullName)
		}
	default:
		return fmt.Errorf("realm_user event %d has unknown op %q", ev.ID, ev.Op)
	}
	return nil
}

// lookupPerson returns the known person with userID. Unknown ids are
// reported.
func (s *Session) lookupPerson(userID models.UserID) (*models.Person, bool) {
	if userID == 0 {
		s.diag.Error("realm_user event without user_id")
		return nil, false
	}
	return s.people.GetByUserID(userID)
}
