package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/tally/internal/models"
)

func countsEvent(sessionID string) *models.Event {
	return &models.Event{
		ID:         "ev-" + sessionID,
		Type:       models.EventTypeCountsChanged,
		EntityType: models.EntityTypeSession,
		EntityID:   sessionID,
	}
}

func TestFilter_Matches(t *testing.T) {
	bankrupt := &models.Event{Type: models.EventTypeBankruptcy, EntityType: models.EntityTypeSession, EntityID: "s1"}

	tests := []struct {
		name   string
		filter Filter
		event  *models.Event
		want   bool
	}{
		{"empty filter", Filter{}, countsEvent("s1"), true},
		{"nil event", Filter{}, nil, false},
		{"type match", Filter{EventTypes: []models.EventType{models.EventTypeCountsChanged}}, countsEvent("s1"), true},
		{"type mismatch", Filter{EventTypes: []models.EventType{models.EventTypeCountsChanged}}, bankrupt, false},
		{"any listed type", Filter{EventTypes: []models.EventType{models.EventTypeCountsChanged, models.EventTypeBankruptcy}}, bankrupt, true},
		{"session match", Filter{EntityID: "s1"}, countsEvent("s1"), true},
		{"other session", Filter{EntityID: "s1"}, countsEvent("s2"), false},
		{"type and session", Filter{EventTypes: []models.EventType{models.EventTypeBankruptcy}, EntityID: "s2"}, bankrupt, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(tt.event))
		})
	}
}

func TestInMemoryPublisher_SubscribeErrors(t *testing.T) {
	pub := NewInMemoryPublisher()
	noop := func(*models.Event) {}

	require.NoError(t, pub.Subscribe("trace", Filter{}, noop))
	require.ErrorIs(t, pub.Subscribe("trace", Filter{}, noop), ErrSubscriptionExists)
	require.ErrorIs(t, pub.Subscribe("", Filter{}, noop), ErrInvalidSubscriptionID)
	require.ErrorIs(t, pub.Subscribe("other", Filter{}, nil), ErrNilHandler)

	require.NoError(t, pub.Unsubscribe("trace"))
	require.ErrorIs(t, pub.Unsubscribe("trace"), ErrSubscriptionNotFound)
}

func TestInMemoryPublisher_DeliversToMatchingSubscribers(t *testing.T) {
	pub := NewInMemoryPublisher()
	ctx := context.Background()

	var mine, all []string
	require.NoError(t, pub.Subscribe("mine", Filter{EntityID: "s1"}, func(ev *models.Event) {
		mine = append(mine, ev.EntityID)
	}))
	require.NoError(t, pub.Subscribe("all", Filter{}, func(ev *models.Event) {
		all = append(all, ev.EntityID)
	}))

	pub.Publish(ctx, countsEvent("s1"))
	pub.Publish(ctx, countsEvent("s2"))
	pub.Publish(ctx, nil)

	require.Equal(t, []string{"s1"}, mine)
	require.ElementsMatch(t, []string{"s1", "s2"}, all)

	require.NoError(t, pub.Unsubscribe("mine"))
	pub.Publish(ctx, countsEvent("s1"))
	require.Len(t, mine, 1)
	require.Len(t, all, 3)
}

func TestInMemoryPublisher_HandlerMayUnsubscribe(t *testing.T) {
	pub := NewInMemoryPublisher()
	calls := 0
	require.NoError(t, pub.Subscribe("once", Filter{}, func(*models.Event) {
		calls++
		require.NoError(t, pub.Unsubscribe("once"))
	}))

	pub.Publish(context.Background(), countsEvent("s1"))
	pub.Publish(context.Background(), countsEvent("s1"))
	require.Equal(t, 1, calls)
}

func TestInMemoryPublisher_ConcurrentPublish(t *testing.T) {
	pub := NewInMemoryPublisher()
	var count int64
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, pub.Subscribe(id, Filter{}, func(*models.Event) {
			atomic.AddInt64(&count, 1)
		}))
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub.Publish(context.Background(), countsEvent("s1"))
		}()
	}
	wg.Wait()
	require.Equal(t, int64(150), atomic.LoadInt64(&count))
}

type memoryJournal struct {
	mu     sync.Mutex
	events []*models.Event
	err    error
}

func (m *memoryJournal) Create(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func TestInMemoryPublisher_WithRepository(t *testing.T) {
	journal := &memoryJournal{}
	pub := NewInMemoryPublisher(WithRepository(journal))

	pub.Publish(context.Background(), countsEvent("s1"))

	require.Len(t, journal.events, 1)
	require.Equal(t, "ev-s1", journal.events[0].ID)
}

func TestInMemoryPublisher_RepositoryErrorReported(t *testing.T) {
	var reported error
	pub := NewInMemoryPublisher(
		WithRepository(&memoryJournal{err: errors.New("disk full")}),
		WithErrorHandler(func(err error) { reported = err }),
	)

	delivered := false
	require.NoError(t, pub.Subscribe("trace", Filter{}, func(*models.Event) { delivered = true }))
	pub.Publish(context.Background(), countsEvent("s1"))

	require.True(t, delivered, "handler runs even when journaling fails")
	require.EqualError(t, reported, "disk full")
}
