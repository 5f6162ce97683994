package bencode

import "sort"

// Dict is a string-keyed mapping that remembers insertion order. Encoding
// ignores that order and always emits keys in ascending byte order.
type Dict struct {
	keys  []string
	vals  []Value
	index map[string]int
}

func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set stores v under key. An existing key keeps its position.
func (d *Dict) Set(key string, v Value) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.vals[i] = v
		return
	}
	d.index[key] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, v)
}

func (d *Dict) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return Value{}, false
	}
	return d.vals[i], true
}

func (d *Dict) Delete(key string) {
	if d == nil || d.index == nil {
		return
	}
	i, ok := d.index[key]
	if !ok {
		return
	}
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.vals = append(d.vals[:i], d.vals[i+1:]...)
	delete(d.index, key)
	for j := i; j < len(d.keys); j++ {
		d.index[d.keys[j]] = j
	}
}

func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// SortedKeys returns the keys in canonical (ascending byte) order.
func (d *Dict) SortedKeys() []string {
	keys := d.Keys()
	sort.Strings(keys)
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (d *Dict) Range(fn func(key string, v Value) bool) {
	if d == nil {
		return
	}
	for i, key := range d.keys {
		if !fn(key, d.vals[i]) {
			return
		}
	}
}
