package models

import (
	"errors"
	"strings"
)

// Person validation errors.
var (
	ErrMissingUserID   = errors.New("user_id is required")
	ErrMissingEmail    = errors.New("email is required")
	ErrMissingFullName = errors.New("full_name is required")
)

// Person is a known user record.
//
// Email can change over a person's lifetime; UserID cannot.
type Person struct {
	UserID   UserID `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`

	IsBot   bool `json:"is_bot"`
	IsAdmin bool `json:"is_admin"`
	IsGuest bool `json:"is_guest"`

	AvatarURL     string  `json:"avatar_url,omitempty"`
	Timezone      string  `json:"timezone,omitempty"`
	DeliveryEmail string  `json:"delivery_email,omitempty"`
	BotOwnerID    *UserID `json:"bot_owner_id,omitempty"`
}

// Validate checks that the identifying fields are present.
func (p *Person) Validate() error {
	var verrs ValidationErrors
	if p == nil {
		verrs.AddMessage("person", "is nil")
		return verrs.Err()
	}
	if p.UserID <= 0 {
		verrs.Add("user_id", ErrMissingUserID)
	}
	if strings.TrimSpace(p.Email) == "" {
		verrs.Add("email", ErrMissingEmail)
	}
	if strings.TrimSpace(p.FullName) == "" {
		verrs.Add("full_name", ErrMissingFullName)
	}
	return verrs.Err()
}
