// Package streams tracks the session user's stream subscriptions.
package streams

import (
	"github.com/tOgg1/tally/internal/dict"
	"github.com/tOgg1/tally/internal/models"
)

// Sub is the per-stream subscription state the unread counters consult.
type Sub struct {
	StreamID   models.StreamID `json:"stream_id"`
	Name       string          `json:"name"`
	Subscribed bool            `json:"subscribed"`
	// IsMuted hides the stream from the home view.
	IsMuted bool `json:"is_muted"`
}

// Registry indexes subscriptions by id and case-insensitive name.
type Registry struct {
	byID   map[models.StreamID]*Sub
	byName *dict.FoldDict[*Sub]
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[models.StreamID]*Sub),
		byName: dict.NewFold[*Sub](),
	}
}

// Add registers or replaces a stream.
func (r *Registry) Add(sub Sub) {
	if old, ok := r.byID[sub.StreamID]; ok && old.Name != sub.Name {
		r.byName.Del(old.Name)
	}
	s := sub
	r.byID[sub.StreamID] = &s
	r.byName.Set(sub.Name, &s)
}

// Initialize loads subscribed and previously-subscribed streams.
func (r *Registry) Initialize(subscriptions, unsubscribed []Sub) {
	for _, s := range subscriptions {
		s.Subscribed = true
		r.Add(s)
	}
	for _, s := range unsubscribed {
		s.Subscribed = false
		r.Add(s)
	}
}

func (r *Registry) GetByID(id models.StreamID) (Sub, bool) {
	s, ok := r.byID[id]
	if !ok {
		return Sub{}, false
	}
	return *s, true
}

func (r *Registry) GetByName(name string) (Sub, bool) {
	s, ok := r.byName.Get(name)
	if !ok {
		return Sub{}, false
	}
	return *s, true
}

// StreamID resolves a stream name; ok is false for unknown names.
func (r *Registry) StreamID(name string) (models.StreamID, bool) {
	s, ok := r.byName.Get(name)
	if !ok {
		return 0, false
	}
	return s.StreamID, true
}

// HasSub reports whether the stream is known at all.
func (r *Registry) HasSub(id models.StreamID) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) IsSubscribed(id models.StreamID) bool {
	s, ok := r.byID[id]
	return ok && s.Subscribed
}

func (r *Registry) IsMuted(id models.StreamID) bool {
	s, ok := r.byID[id]
	return ok && s.IsMuted
}

// InHomeView reports whether a known stream is not muted.
func (r *Registry) InHomeView(id models.StreamID) bool {
	s, ok := r.byID[id]
	return ok && !s.IsMuted
}

// Subscribe marks a known stream subscribed. It returns false for unknown
// streams.
func (r *Registry) Subscribe(id models.StreamID) bool {
	s, ok := r.byID[id]
	if ok {
		s.Subscribed = true
	}
	return ok
}

func (r *Registry) Unsubscribe(id models.StreamID) bool {
	s, ok := r.byID[id]
	if ok {
		s.Subscribed = false
	}
	return ok
}

func (r *Registry) SetMuted(id models.StreamID, muted bool) bool {
	s, ok := r.byID[id]
	if ok {
		s.IsMuted = muted
	}
	return ok
}

// Subscribed returns the subscribed streams in insertion order.
func (r *Registry) Subscribed() []Sub {
	var out []Sub
	r.byName.Each(func(_ string, s *Sub) {
		if s.Subscribed {
			out = append(out, *s)
		}
	})
	return out
}

func (r *Registry) Clear() {
	clear(r.byID)
	r.byName.Clear()
}
