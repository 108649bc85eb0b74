// Package ids provides a set of message ids.
package ids

import "github.com/tOgg1/tally/internal/models"

// Set is an unordered set of message ids. The zero value is not usable;
// call New.
type Set struct {
	members map[models.MessageID]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{members: make(map[models.MessageID]struct{})}
}

// Add inserts id.
func (s *Set) Add(id models.MessageID) {
	s.members[id] = struct{}{}
}

// AddMany inserts every id in list.
func (s *Set) AddMany(list []models.MessageID) {
	for _, id := range list {
		s.members[id] = struct{}{}
	}
}

// Del removes id. Removing an absent id is a no-op.
func (s *Set) Del(id models.MessageID) {
	delete(s.members, id)
}

func (s *Set) Has(id models.MessageID) bool {
	_, ok := s.members[id]
	return ok
}

func (s *Set) Count() int {
	return len(s.members)
}

func (s *Set) IsEmpty() bool {
	return len(s.members) == 0
}

// Members returns the ids in no particular order.
func (s *Set) Members() []models.MessageID {
	out := make([]models.MessageID, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	return out
}

// Max returns the largest id; ok is false when the set is empty.
func (s *Set) Max() (max models.MessageID, ok bool) {
	for id := range s.members {
		if !ok || id > max {
			max = id
			ok = true
		}
	}
	return max, ok
}

func (s *Set) Clear() {
	clear(s.members)
}
