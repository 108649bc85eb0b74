package pmconv

import "github.com/tOgg1/tally/internal/models"

// Partners is the set of users the session user has exchanged private
// messages with.
type Partners struct {
	ids map[models.UserID]struct{}
}

func NewPartners() *Partners {
	return &Partners{ids: make(map[models.UserID]struct{})}
}

func (p *Partners) SetPartner(userID models.UserID) {
	p.ids[userID] = struct{}{}
}

func (p *Partners) IsPartner(userID models.UserID) bool {
	_, ok := p.ids[userID]
	return ok
}

func (p *Partners) Clear() {
	clear(p.ids)
}
