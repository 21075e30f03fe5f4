package types

// DefaultMap wraps a map and lazily initializes missing keys with a
// user-supplied constructor, so callers never deal with the two-value
// lookup form.
//
//	m := NewDefaultMap[string](func() Set[string] { return NewSet[string]() })
//	m.Get("addr").Add("txid")
type DefaultMap[K comparable, V any] struct {
	data        map[K]V
	defaultFunc func() V
}

// NewDefaultMap builds an empty DefaultMap whose missing keys are
// initialized by defaultFunc.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get returns the value stored under key. If the key is absent, a default
// value is created, stored and returned.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if !ok {
		val = d.defaultFunc()
		d.data[key] = val
	}
	return val
}

// Set assigns val to key, replacing any existing entry.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// Delete removes key from the map if present.
func (d *DefaultMap[K, V]) Delete(key K) {
	delete(d.data, key)
}

// ToMap exposes the underlying map for iteration or bulk operations.
func (d *DefaultMap[K, V]) ToMap() map[K]V {
	return d.data
}
