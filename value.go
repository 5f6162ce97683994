package bencode

import "bytes"

// Value holds one decoded value. The zero Value has kind Invalid.
type Value struct {
	kind Kind
	str  []byte
	num  int64
	list []Value
	dict *Dict
}

func BytesValue(b []byte) Value { return Value{kind: ByteString, str: b} }

func StringValue(s string) Value { return Value{kind: ByteString, str: []byte(s)} }

func IntValue(n int64) Value { return Value{kind: Integer, num: n} }

func ListValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: List, list: items}
}

func DictValue(d *Dict) Value {
	if d == nil {
		d = NewDict()
	}
	return Value{kind: Dictionary, dict: d}
}

func (v Value) Kind() Kind { return v.kind }

// Bytes returns the payload of a byte-string, or nil for other kinds.
func (v Value) Bytes() []byte {
	if v.kind != ByteString {
		return nil
	}
	return v.str
}

// Text returns a byte-string payload as a string.
func (v Value) Text() string {
	if v.kind != ByteString {
		return ""
	}
	return string(v.str)
}

func (v Value) Int() int64 {
	if v.kind != Integer {
		return 0
	}
	return v.num
}

func (v Value) List() []Value {
	if v.kind != List {
		return nil
	}
	return v.list
}

func (v Value) Dict() *Dict {
	if v.kind != Dictionary {
		return nil
	}
	return v.dict
}

// Interface converts v into plain Go values: string, int64, []any and
// map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case ByteString:
		return string(v.str)
	case Integer:
		return v.num
	case List:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case Dictionary:
		out := make(map[string]any, v.dict.Len())
		v.dict.Range(func(key string, item Value) bool {
			out[key] = item.Interface()
			return true
		})
		return out
	}
	return nil
}

// Equal reports whether v and o hold the same data. Dictionary order is
// ignored.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ByteString:
		return bytes.Equal(v.str, o.str)
	case Integer:
		return v.num == o.num
	case List:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case Dictionary:
		if v.dict.Len() != o.dict.Len() {
			return false
		}
		equal := true
		v.dict.Range(func(key string, item Value) bool {
			other, ok := o.dict.Get(key)
			equal = ok && item.Equal(other)
			return equal
		})
		return equal
	}
	return true
}
