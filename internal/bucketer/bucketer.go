// Package bucketer groups item ids into keyed buckets and remembers which
// bucket each item lives in, so items can be removed by id alone.
//
// A bucket can itself be a Bucketer, which is how the two-level
// stream -> topic index is built.
package bucketer

import (
	"github.com/tOgg1/tally/internal/dict"
	"github.com/tOgg1/tally/internal/models"
)

// Bucket is anything an item can be removed from.
type Bucket interface {
	Del(id models.MessageID)
}

// Adder is implemented by buckets that accept items directly.
type Adder interface {
	Add(id models.MessageID)
}

// AddFunc places an item into a bucket. It is used for nested bucketers,
// where adding needs more context than the id.
type AddFunc[B Bucket] func(bucket B, id models.MessageID)

type keyStore[K comparable, B any] interface {
	Get(key K) (B, bool)
	Set(key K, bucket B)
	Keys() []K
	Each(fn func(key K, bucket B))
	Clear()
}

// Bucketer maps keys to buckets plus a reverse index from item id to bucket.
type Bucketer[K comparable, B Bucket] struct {
	keyToBucket   keyStore[K, B]
	reverseLookup map[models.MessageID]B
	makeBucket    func() B
}

// New returns a Bucketer with exact key matching.
func New[K comparable, B Bucket](makeBucket func() B) *Bucketer[K, B] {
	return &Bucketer[K, B]{
		keyToBucket:   dict.New[K, B](),
		reverseLookup: make(map[models.MessageID]B),
		makeBucket:    makeBucket,
	}
}

// NewFolded returns a string-keyed Bucketer whose keys compare
// case-insensitively. The first-seen casing is reported by Each and Keys.
func NewFolded[B Bucket](makeBucket func() B) *Bucketer[string, B] {
	return &Bucketer[string, B]{
		keyToBucket:   dict.NewFold[B](),
		reverseLookup: make(map[models.MessageID]B),
		makeBucket:    makeBucket,
	}
}

// Add puts id into the bucket for key, creating the bucket if needed.
// When add is nil the bucket must implement Adder.
//
// The reverse mapping is always overwritten. Moving an item between keys
// without calling Del first leaves it counted in the old bucket.
func (b *Bucketer[K, B]) Add(key K, id models.MessageID, add AddFunc[B]) {
	bucket, ok := b.keyToBucket.Get(key)
	if !ok {
		bucket = b.makeBucket()
		b.keyToBucket.Set(key, bucket)
	}
	if add != nil {
		add(bucket, id)
	} else if adder, ok := any(bucket).(Adder); ok {
		adder.Add(id)
	}
	b.reverseLookup[id] = bucket
}

// Del removes id from whichever bucket holds it.
func (b *Bucketer[K, B]) Del(id models.MessageID) {
	bucket, ok := b.reverseLookup[id]
	if !ok {
		return
	}
	bucket.Del(id)
	delete(b.reverseLookup, id)
}

// GetBucket returns the bucket for key, if one was ever created.
func (b *Bucketer[K, B]) GetBucket(key K) (B, bool) {
	return b.keyToBucket.Get(key)
}

// Each visits every bucket in insertion order.
func (b *Bucketer[K, B]) Each(fn func(bucket B, key K)) {
	b.keyToBucket.Each(func(key K, bucket B) {
		fn(bucket, key)
	})
}

func (b *Bucketer[K, B]) Keys() []K {
	return b.keyToBucket.Keys()
}

func (b *Bucketer[K, B]) Clear() {
	b.keyToBucket.Clear()
	clear(b.reverseLookup)
}
