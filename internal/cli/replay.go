package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/tOgg1/tally/internal/events"
	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
	"github.com/tOgg1/tally/internal/session"
	"github.com/tOgg1/tally/internal/unread"
)

// replayInput is an initial state plus the events to apply to it.
type replayInput struct {
	State  []byte
	Events []session.Event
}

// replayResult is what counts and fixture replay print.
type replayResult struct {
	SessionID       string                  `json:"session_id"`
	UserID          models.UserID           `json:"user_id"`
	Policy          unread.NotifiablePolicy `json:"policy"`
	NotifiableCount int                     `json:"notifiable_count"`
	Counts          unread.Counts           `json:"counts"`
	Applied         int                     `json:"applied"`
	Skipped         int                     `json:"skipped"`

	sess *session.Session
}

// readInputFiles loads a state file and an optional JSONL events file.
func readInputFiles(statePath, eventsPath string) (replayInput, error) {
	var in replayInput
	if statePath == "" {
		return in, fmt.Errorf("--state is required")
	}
	data, err := os.ReadFile(statePath)
	if err != nil {
		return in, fmt.Errorf("failed to read state file: %w", err)
	}
	in.State = data

	in.Events, err = readEventsFile(eventsPath)
	return in, err
}

// readEventsFile parses a JSONL events file. An empty path means no events.
func readEventsFile(path string) ([]session.Event, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	defer f.Close()
	return session.ReadEvents(f)
}

// replayOptions tune a replay. The zero value replays as the state's own
// user without journaling or tracing.
type replayOptions struct {
	UserID  models.UserID
	Journal events.Repository
	// Trace prints every count change to errOut as it happens.
	Trace bool
}

const traceSubscription = "trace"

// replay builds a session from in. Events of unknown type are skipped and
// counted; any other bad event stops the replay.
func (a *app) replay(ctx context.Context, in replayInput, opts replayOptions) (*replayResult, error) {
	state, err := session.DecodeInitialState(in.State)
	if err != nil {
		return nil, err
	}

	cfg := session.ConfigFrom(a.cfg)
	if opts.UserID != 0 {
		cfg.CurrentUserID = opts.UserID
	}

	var pubOpts []events.PublisherOption
	if opts.Journal != nil {
		pubOpts = append(pubOpts,
			events.WithRepository(opts.Journal),
			events.WithErrorHandler(func(err error) {
				logging.Warn().Err(err).Msg("failed to journal event")
			}),
		)
	}
	publisher := events.NewInMemoryPublisher(pubOpts...)
	sess := session.New(cfg, session.Deps{
		Diagnostics: logging.ComponentDiagnostics("session"),
		Publisher:   publisher,
	})

	if opts.Trace {
		filter := events.Filter{
			EventTypes: []models.EventType{models.EventTypeCountsChanged, models.EventTypeBankruptcy},
			EntityID:   sess.ID(),
		}
		if err := publisher.Subscribe(traceSubscription, filter, a.traceEvent); err != nil {
			return nil, err
		}
		defer func() { _ = publisher.Unsubscribe(traceSubscription) }()
	}

	sess.Initialize(*state)

	res := &replayResult{sess: sess}
	for _, ev := range in.Events {
		err := sess.Apply(ctx, ev)
		if errors.Is(err, session.ErrUnknownEventType) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", ev.ID, ev.Type, err)
		}
		res.Applied++
	}

	res.SessionID = sess.ID()
	res.UserID = sess.People().CurrentUserID()
	res.Policy = a.cfg.NotifiablePolicy()
	res.NotifiableCount = sess.NotifiableCount()
	res.Counts = sess.Counts()
	return res, nil
}

func (a *app) traceEvent(ev *models.Event) {
	detail := describeJournalEvent(ev)
	if detail == "" {
		detail = string(ev.Type)
	}
	fmt.Fprintln(a.errOut, a.styles().Muted("trace "+detail))
}

// printResult writes res as JSON or as summary lines plus stream and
// conversation tables.
func (a *app) printResult(res *replayResult) error {
	if a.isJSON() {
		return writeJSON(a.out, res)
	}

	st := a.styles()
	c := res.Counts
	summary := [][]string{
		{"Home", st.Count(c.HomeUnreadMessages)},
		{"Private", st.Count(c.PrivateMessageCount)},
		{"Mentions", st.Count(c.MentionedMessageCount)},
		{"Notifiable (" + string(res.Policy) + ")", st.Count(res.NotifiableCount)},
	}
	if err := writeTable(a.out, nil, summary); err != nil {
		return err
	}
	if res.Skipped > 0 {
		fmt.Fprintln(a.out, st.Muted(fmt.Sprintf("%d events applied, %d of unknown type skipped", res.Applied, res.Skipped)))
	}

	if rows := a.streamRows(res); len(rows) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, st.Heading("Streams"))
		if err := writeTable(a.out, []string{"STREAM", "ID", "UNREAD", "TOPICS"}, rows); err != nil {
			return err
		}
	}

	if rows := a.conversationRows(res); len(rows) > 0 {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, st.Heading("Private messages"))
		if err := writeTable(a.out, []string{"CONVERSATION", "UNREAD"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) streamRows(res *replayResult) [][]string {
	st := a.styles()
	ids := make([]models.StreamID, 0, len(res.Counts.TopicCount))
	for id := range res.Counts.TopicCount {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		name := strconv.FormatInt(int64(id), 10)
		if sub, ok := res.sess.Streams().GetByID(id); ok {
			name = sub.Name
		}
		if !res.sess.Streams().InHomeView(id) {
			name += " " + st.Muted("(muted)")
		}
		topics := res.Counts.TopicCount[id]
		rows = append(rows, []string{
			name,
			strconv.FormatInt(int64(id), 10),
			st.Count(res.Counts.StreamCount[id]),
			itoa(len(topics)),
		})
	}
	return rows
}

func (a *app) conversationRows(res *replayResult) [][]string {
	st := a.styles()
	keys := make([]string, 0, len(res.Counts.PMCount))
	for key := range res.Counts.PMCount {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		label := key
		if emails, ok := res.sess.People().UserIDsStringToEmails(key); ok {
			label = emails
		}
		rows = append(rows, []string{label, st.Count(res.Counts.PMCount[key])})
	}
	return rows
}
