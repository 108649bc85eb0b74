package dict

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldDict is a string-keyed Dict that compares keys case-insensitively.
// The casing used the first time a key is set is kept as its display form.
type FoldDict[V any] struct {
	inner *Dict[string, foldEntry[V]]
}

type foldEntry[V any] struct {
	key   string
	value V
}

// NewFold returns an empty FoldDict.
func NewFold[V any]() *FoldDict[V] {
	return &FoldDict[V]{inner: New[string, foldEntry[V]]()}
}

// FoldKey returns the normalized comparison form of key: its
// locale-independent lowercase. Keys that only match under full case
// folding, such as "Straße" and "STRASSE", stay distinct.
func FoldKey(key string) string {
	return cases.Lower(language.Und).String(key)
}

func (d *FoldDict[V]) Get(key string) (V, bool) {
	e, ok := d.inner.Get(FoldKey(key))
	return e.value, ok
}

func (d *FoldDict[V]) Has(key string) bool {
	return d.inner.Has(FoldKey(key))
}

// Set stores value under key. If an equivalent key already exists its
// original casing is retained.
func (d *FoldDict[V]) Set(key string, value V) {
	folded := FoldKey(key)
	if e, ok := d.inner.Get(folded); ok {
		e.value = value
		d.inner.Set(folded, e)
		return
	}
	d.inner.Set(folded, foldEntry[V]{key: key, value: value})
}

func (d *FoldDict[V]) Del(key string) {
	d.inner.Del(FoldKey(key))
}

// CanonicalKey returns the first-seen casing of key.
func (d *FoldDict[V]) CanonicalKey(key string) (string, bool) {
	e, ok := d.inner.Get(FoldKey(key))
	return e.key, ok
}

func (d *FoldDict[V]) Len() int {
	return d.inner.Len()
}

// Keys returns the canonical keys in insertion order.
func (d *FoldDict[V]) Keys() []string {
	out := make([]string, 0, d.inner.Len())
	d.inner.Each(func(_ string, e foldEntry[V]) {
		out = append(out, e.key)
	})
	return out
}

// Each calls fn with canonical keys in insertion order.
func (d *FoldDict[V]) Each(fn func(key string, value V)) {
	d.inner.Each(func(_ string, e foldEntry[V]) {
		fn(e.key, e.value)
	})
}

func (d *FoldDict[V]) Clear() {
	d.inner.Clear()
}
