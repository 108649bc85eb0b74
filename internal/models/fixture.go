package models

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrMissingFixtureName = errors.New("fixture name is required")

// Fixture is a saved session: an initial state payload plus an ordered
// list of live events that can be replayed against it.
type Fixture struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
}

func (f *Fixture) Validate() error {
	errs := &ValidationErrors{}
	if f.Name == "" {
		errs.Add("name", ErrMissingFixtureName)
	}
	if len(f.State) == 0 {
		errs.AddMessage("state", "initial state is required")
	} else if !json.Valid(f.State) {
		errs.AddMessage("state", "initial state is not valid JSON")
	}
	return errs.Err()
}

// FixtureEvent is one recorded server event. Seq orders events within a
// fixture starting at 1.
type FixtureEvent struct {
	ID        string          `json:"id"`
	FixtureID string          `json:"fixture_id"`
	Seq       int             `json:"seq"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
