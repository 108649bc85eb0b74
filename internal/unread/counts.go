package unread

import (
	"fmt"

	"github.com/tOgg1/tally/internal/models"
)

// Counts is the aggregate snapshot read by badge renderers.
type Counts struct {
	PrivateMessageCount   int                                `json:"private_message_count"`
	MentionedMessageCount int                                `json:"mentioned_message_count"`
	HomeUnreadMessages    int                                `json:"home_unread_messages"`
	StreamCount           map[models.StreamID]int            `json:"stream_count"`
	TopicCount            map[models.StreamID]map[string]int `json:"topic_count"`
	PMCount               map[string]int                     `json:"pm_count"`
}

// NotifiablePolicy selects what the desktop badge counts.
type NotifiablePolicy string

const (
	// PolicyNotifiable counts mentions and private messages.
	PolicyNotifiable NotifiablePolicy = "notifiable"
	PolicyNone       NotifiablePolicy = "none"
	// PolicyAll counts every home unread message once.
	PolicyAll NotifiablePolicy = "all"
)

// ParseNotifiablePolicy validates a configured policy name. The empty
// string selects PolicyNotifiable.
func ParseNotifiablePolicy(s string) (NotifiablePolicy, error) {
	switch NotifiablePolicy(s) {
	case "":
		return PolicyNotifiable, nil
	case PolicyNotifiable, PolicyNone, PolicyAll:
		return NotifiablePolicy(s), nil
	}
	return "", fmt.Errorf("unknown notifiable count policy %q (want notifiable, none or all)", s)
}

// CalculateNotifiableCount derives the badge number from counts.
// Unknown policies count nothing.
func CalculateNotifiableCount(counts Counts, policy NotifiablePolicy) int {
	switch policy {
	case PolicyNotifiable:
		return counts.MentionedMessageCount + counts.PrivateMessageCount
	case PolicyAll:
		return counts.HomeUnreadMessages
	default:
		return 0
	}
}
