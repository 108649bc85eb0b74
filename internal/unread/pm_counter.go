package unread

import (
	"strconv"

	"github.com/tOgg1/tally/internal/bucketer"
	"github.com/tOgg1/tally/internal/ids"
	"github.com/tOgg1/tally/internal/models"
)

// ConversationKeyer computes private-message conversation keys.
// *people.Index implements it.
type ConversationKeyer interface {
	PMReplyKey(msg *models.Message) (string, bool)
	PMLookupKey(userIDsString string) string
}

// PMCounts is the PM portion of the aggregate counts.
type PMCounts struct {
	TotalCount int
	// PMDict maps conversation key to unread count.
	PMDict map[string]int
}

// PMCounter buckets unread private messages by conversation key.
type PMCounter struct {
	keyer   ConversationKeyer
	buckets *bucketer.Bucketer[string, *ids.Set]
}

func NewPMCounter(keyer ConversationKeyer) *PMCounter {
	return &PMCounter{
		keyer:   keyer,
		buckets: bucketer.New[string](ids.New),
	}
}

func (c *PMCounter) Clear() {
	c.buckets.Clear()
}

// SetPMs loads one-on-one conversations, keyed by sender.
func (c *PMCounter) SetPMs(pms []models.UnreadPM) {
	for _, obj := range pms {
		key := strconv.FormatInt(int64(obj.SenderID), 10)
		c.setMessageIDs(key, obj.UnreadMessageIDs)
	}
}

// SetHuddles loads group conversations. Keys are normalized first.
func (c *PMCounter) SetHuddles(huddles []models.UnreadHuddle) {
	for _, obj := range huddles {
		key := c.keyer.PMLookupKey(obj.UserIDsString)
		c.setMessageIDs(key, obj.UnreadMessageIDs)
	}
}

func (c *PMCounter) setMessageIDs(key string, messageIDs []models.MessageID) {
	for _, id := range messageIDs {
		c.buckets.Add(key, id, nil)
	}
}

// Add buckets msg under its conversation key. Messages whose key cannot
// be computed are ignored.
func (c *PMCounter) Add(msg *models.Message) {
	key, ok := c.keyer.PMReplyKey(msg)
	if !ok {
		return
	}
	c.buckets.Add(key, msg.ID, nil)
}

func (c *PMCounter) Del(id models.MessageID) {
	c.buckets.Del(id)
}

func (c *PMCounter) GetCounts() PMCounts {
	counts := PMCounts{PMDict: make(map[string]int)}
	c.buckets.Each(func(bucket *ids.Set, key string) {
		n := bucket.Count()
		counts.PMDict[key] = n
		counts.TotalCount += n
	})
	return counts
}

// NumUnread returns the unread count for a user id string, which is
// normalized before lookup.
func (c *PMCounter) NumUnread(userIDsString string) int {
	if userIDsString == "" {
		return 0
	}
	bucket, ok := c.buckets.GetBucket(c.keyer.PMLookupKey(userIDsString))
	if !ok {
		return 0
	}
	return bucket.Count()
}

// GetMsgIDs returns every unread private message id, ascending.
func (c *PMCounter) GetMsgIDs() []models.MessageID {
	var out []models.MessageID
	c.buckets.Each(func(bucket *ids.Set, _ string) {
		out = append(out, bucket.Members()...)
	})
	return models.SortedIDs(out)
}

// GetMsgIDsForPerson returns unread ids for one conversation, ascending.
func (c *PMCounter) GetMsgIDsForPerson(userIDsString string) []models.MessageID {
	if userIDsString == "" {
		return []models.MessageID{}
	}
	bucket, ok := c.buckets.GetBucket(c.keyer.PMLookupKey(userIDsString))
	if !ok {
		return []models.MessageID{}
	}
	return models.SortedIDs(bucket.Members())
}
