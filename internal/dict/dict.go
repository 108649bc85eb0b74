// Package dict provides insertion-ordered maps, including a case-insensitive
// string-keyed variant.
package dict

// Dict is a map that iterates in insertion order. Deleting and re-adding
// a key moves it to the end.
type Dict[K comparable, V any] struct {
	keys   []K
	index  map[K]int
	values map[K]V
}

// New returns an empty Dict.
func New[K comparable, V any]() *Dict[K, V] {
	return &Dict[K, V]{
		index:  make(map[K]int),
		values: make(map[K]V),
	}
}

func (d *Dict[K, V]) Get(key K) (V, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict[K, V]) Has(key K) bool {
	_, ok := d.values[key]
	return ok
}

func (d *Dict[K, V]) Set(key K, value V) {
	if _, ok := d.values[key]; !ok {
		d.index[key] = len(d.keys)
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Dict[K, V]) Del(key K) {
	pos, ok := d.index[key]
	if !ok {
		return
	}
	d.keys = append(d.keys[:pos], d.keys[pos+1:]...)
	for i := pos; i < len(d.keys); i++ {
		d.index[d.keys[i]] = i
	}
	delete(d.index, key)
	delete(d.values, key)
}

func (d *Dict[K, V]) Len() int {
	return len(d.keys)
}

// Keys returns a copy of the keys in insertion order.
func (d *Dict[K, V]) Keys() []K {
	out := make([]K, len(d.keys))
	copy(out, d.keys)
	return out
}

// Each calls fn for every entry in insertion order. fn must not mutate d.
func (d *Dict[K, V]) Each(fn func(key K, value V)) {
	for _, k := range d.keys {
		fn(k, d.values[k])
	}
}

func (d *Dict[K, V]) Clear() {
	d.keys = nil
	clear(d.index)
	clear(d.values)
}
