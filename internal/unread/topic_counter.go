package unread

import (
	"github.com/tOgg1/tally/internal/bucketer"
	"github.com/tOgg1/tally/internal/dict"
	"github.com/tOgg1/tally/internal/ids"
	"github.com/tOgg1/tally/internal/models"
)

// Streams answers subscription questions. *streams.Registry implements it.
type Streams interface {
	HasSub(id models.StreamID) bool
	IsSubscribed(id models.StreamID) bool
	InHomeView(id models.StreamID) bool
}

// TopicMuter reports muted topics. *muting.Muter implements it.
type TopicMuter interface {
	IsTopicMuted(streamID models.StreamID, topic string) bool
}

type topicBucketer = bucketer.Bucketer[string, *ids.Set]

// TopicCounts is the stream portion of the aggregate counts.
type TopicCounts struct {
	// StreamUnreadMessages counts unmuted topics of unmuted streams.
	StreamUnreadMessages int
	// StreamCount excludes muted topics.
	StreamCount map[models.StreamID]int
	// TopicCount includes muted topics.
	TopicCount map[models.StreamID]map[string]int
}

// MissingTopic is a topic with unread messages absent from a caller's
// topic list.
type MissingTopic struct {
	PrettyName string           `json:"pretty_name"`
	MessageID  models.MessageID `json:"message_id"`
}

// TopicCounter indexes unread stream messages by stream, then topic.
// Topic names compare case-insensitively.
type TopicCounter struct {
	streams Streams
	muter   TopicMuter
	buckets *bucketer.Bucketer[models.StreamID, *topicBucketer]
}

func NewTopicCounter(streams Streams, muter TopicMuter) *TopicCounter {
	return &TopicCounter{
		streams: streams,
		muter:   muter,
		buckets: bucketer.New[models.StreamID](func() *topicBucketer {
			return bucketer.NewFolded(ids.New)
		}),
	}
}

func (c *TopicCounter) Clear() {
	c.buckets.Clear()
}

func (c *TopicCounter) SetStreams(objs []models.UnreadStream) {
	for _, obj := range objs {
		for _, id := range obj.UnreadMessageIDs {
			c.Add(obj.StreamID, obj.Topic, id)
		}
	}
}

func (c *TopicCounter) Add(streamID models.StreamID, topic string, id models.MessageID) {
	c.buckets.Add(streamID, id, func(perStream *topicBucketer, id models.MessageID) {
		perStream.Add(topic, id, nil)
	})
}

func (c *TopicCounter) Del(id models.MessageID) {
	c.buckets.Del(id)
}

func (c *TopicCounter) GetCounts() TopicCounts {
	res := TopicCounts{
		StreamCount: make(map[models.StreamID]int),
		TopicCount:  make(map[models.StreamID]map[string]int),
	}
	c.buckets.Each(func(perStream *topicBucketer, streamID models.StreamID) {
		// Unsubscribed streams keep their buckets but are not counted.
		if !c.streams.HasSub(streamID) || !c.streams.IsSubscribed(streamID) {
			return
		}
		topics := make(map[string]int)
		streamCount := 0
		perStream.Each(func(msgs *ids.Set, topic string) {
			n := msgs.Count()
			topics[topic] = n
			if !c.muter.IsTopicMuted(streamID, topic) {
				streamCount += n
			}
		})
		res.TopicCount[streamID] = topics
		res.StreamCount[streamID] = streamCount
		if c.streams.InHomeView(streamID) {
			res.StreamUnreadMessages += streamCount
		}
	})
	return res
}

// GetStreamCount counts unread messages in unmuted topics of a stream.
func (c *TopicCounter) GetStreamCount(streamID models.StreamID) int {
	perStream, ok := c.buckets.GetBucket(streamID)
	if !ok || !c.streams.HasSub(streamID) {
		return 0
	}
	count := 0
	perStream.Each(func(msgs *ids.Set, topic string) {
		if !c.muter.IsTopicMuted(streamID, topic) {
			count += msgs.Count()
		}
	})
	return count
}

// Get returns the unread count for a topic regardless of mute state.
func (c *TopicCounter) Get(streamID models.StreamID, topic string) int {
	msgs, ok := c.topicBucket(streamID, topic)
	if !ok {
		return 0
	}
	return msgs.Count()
}

// TopicHasAnyUnread ignores mute state.
func (c *TopicCounter) TopicHasAnyUnread(streamID models.StreamID, topic string) bool {
	msgs, ok := c.topicBucket(streamID, topic)
	return ok && !msgs.IsEmpty()
}

// GetMissingTopics returns topics of streamID that have unread messages
// but are not in known. The comparison ignores case.
func (c *TopicCounter) GetMissingTopics(streamID models.StreamID, known []string) []MissingTopic {
	perStream, ok := c.buckets.GetBucket(streamID)
	if !ok {
		return []MissingTopic{}
	}
	seen := dict.NewFold[struct{}]()
	for _, topic := range known {
		seen.Set(topic, struct{}{})
	}
	result := []MissingTopic{}
	perStream.Each(func(msgs *ids.Set, topic string) {
		if seen.Has(topic) {
			return
		}
		maxID, ok := msgs.Max()
		if !ok {
			return
		}
		result = append(result, MissingTopic{PrettyName: topic, MessageID: maxID})
	})
	return result
}

// GetMsgIDsForStream returns unread ids in unmuted topics, ascending.
func (c *TopicCounter) GetMsgIDsForStream(streamID models.StreamID) []models.MessageID {
	perStream, ok := c.buckets.GetBucket(streamID)
	if !ok {
		return []models.MessageID{}
	}
	var out []models.MessageID
	perStream.Each(func(msgs *ids.Set, topic string) {
		if !c.muter.IsTopicMuted(streamID, topic) {
			out = append(out, msgs.Members()...)
		}
	})
	return models.SortedIDs(out)
}

// GetMsgIDsForTopic returns every unread id in a topic, ascending.
func (c *TopicCounter) GetMsgIDsForTopic(streamID models.StreamID, topic string) []models.MessageID {
	msgs, ok := c.topicBucket(streamID, topic)
	if !ok {
		return []models.MessageID{}
	}
	return models.SortedIDs(msgs.Members())
}

func (c *TopicCounter) topicBucket(streamID models.StreamID, topic string) (*ids.Set, bool) {
	perStream, ok := c.buckets.GetBucket(streamID)
	if !ok {
		return nil, false
	}
	return perStream.GetBucket(topic)
}
