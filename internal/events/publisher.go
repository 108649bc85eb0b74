// Package events fans unread notifications out to in-process subscribers.
package events

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/tOgg1/tally/internal/models"
)

// Errors returned by Subscribe and Unsubscribe.
var (
	ErrInvalidSubscriptionID = errors.New("subscription id is required")
	ErrNilHandler            = errors.New("handler cannot be nil")
	ErrSubscriptionExists    = errors.New("subscription already exists")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// EventHandler is called synchronously for each matching event.
type EventHandler func(event *models.Event)

// Filter selects events by type and by the session or stream they belong
// to. Zero fields match everything.
type Filter struct {
	EventTypes []models.EventType
	EntityID   string
}

// Matches reports whether event passes the filter.
func (f Filter) Matches(event *models.Event) bool {
	if event == nil {
		return false
	}
	if len(f.EventTypes) > 0 && !slices.Contains(f.EventTypes, event.Type) {
		return false
	}
	return f.EntityID == "" || event.EntityID == f.EntityID
}

// Repository persists published events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

type subscription struct {
	filter  Filter
	handler EventHandler
}

// InMemoryPublisher delivers events to subscribers in the publishing
// goroutine and optionally journals them.
type InMemoryPublisher struct {
	mu            sync.RWMutex
	subscriptions map[string]subscription
	repo          Repository
	onError       func(error)
}

// PublisherOption configures an InMemoryPublisher.
type PublisherOption func(*InMemoryPublisher)

// WithRepository journals every published event to repo.
func WithRepository(repo Repository) PublisherOption {
	return func(p *InMemoryPublisher) {
		p.repo = repo
	}
}

// WithErrorHandler sets a callback for repository failures. Publishing
// never fails because of them.
func WithErrorHandler(fn func(error)) PublisherOption {
	return func(p *InMemoryPublisher) {
		p.onError = fn
	}
}

func NewInMemoryPublisher(opts ...PublisherOption) *InMemoryPublisher {
	p := &InMemoryPublisher{subscriptions: make(map[string]subscription)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish journals event, then hands it to every matching subscriber.
func (p *InMemoryPublisher) Publish(ctx context.Context, event *models.Event) {
	if event == nil {
		return
	}

	if p.repo != nil {
		if err := p.repo.Create(ctx, event); err != nil && p.onError != nil {
			p.onError(err)
		}
	}

	p.mu.RLock()
	var handlers []EventHandler
	for _, sub := range p.subscriptions {
		if sub.filter.Matches(event) {
			handlers = append(handlers, sub.handler)
		}
	}
	p.mu.RUnlock()

	// Handlers may subscribe or unsubscribe, so they run unlocked.
	for _, handler := range handlers {
		handler(event)
	}
}

// Subscribe registers handler under id.
func (p *InMemoryPublisher) Subscribe(id string, filter Filter, handler EventHandler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}
	p.subscriptions[id] = subscription{filter: filter, handler: handler}
	return nil
}

func (p *InMemoryPublisher) Unsubscribe(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}
	delete(p.subscriptions, id)
	return nil
}
