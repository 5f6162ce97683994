package bencode

import (
	"fmt"
	"io"
	"reflect"
	"sort"

	"github.com/rawbytedev/bencode/internal/common"
)

// Encoder writes encoded values to an io.Writer. Each value is built in a
// reusable buffer and written with a single Write call.
type Encoder struct {
	w   io.Writer
	buf []byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the canonical encoding of v.
func (e *Encoder) Encode(v any) error {
	buf, err := appendAny(e.buf[:0], v)
	if err != nil {
		return err
	}
	e.buf = buf
	if _, err := e.w.Write(e.buf); err != nil {
		return fmt.Errorf("bencode: write: %w", err)
	}
	return nil
}

func appendBytes(dst, b []byte) []byte {
	dst = common.AppendLength(dst, len(b))
	return append(dst, b...)
}

func appendString(dst []byte, s string) []byte {
	dst = common.AppendLength(dst, len(s))
	return append(dst, s...)
}

func appendInt(dst []byte, n int64) []byte {
	dst = append(dst, tokenInteger)
	dst = common.AppendDecimal(dst, n)
	return append(dst, tokenEnd)
}

func appendFloat(dst []byte, f float64) ([]byte, error) {
	n, ok := common.TruncateFloat(f)
	if !ok {
		return dst, fmt.Errorf("%w: %v", ErrMalformedNumber, f)
	}
	return appendInt(dst, n), nil
}

// appendValue encodes a decoded Value.
func appendValue(dst []byte, v Value) ([]byte, error) {
	switch v.kind {
	case ByteString:
		return appendBytes(dst, v.str), nil
	case Integer:
		return appendInt(dst, v.num), nil
	case List:
		var err error
		dst = append(dst, tokenList)
		for i, item := range v.list {
			if dst, err = appendValue(dst, item); err != nil {
				return dst, fmt.Errorf("list element %d: %w", i, err)
			}
		}
		return append(dst, tokenEnd), nil
	case Dictionary:
		return appendDict(dst, v.dict)
	}
	return dst, fmt.Errorf("%w: value of kind %s", ErrMissingArgument, v.kind)
}

func appendDict(dst []byte, d *Dict) ([]byte, error) {
	var err error
	dst = append(dst, tokenDictionary)
	for _, key := range d.SortedKeys() {
		item, _ := d.Get(key)
		dst = appendString(dst, key)
		if dst, err = appendValue(dst, item); err != nil {
			return dst, fmt.Errorf("dictionary key %q: %w", key, err)
		}
	}
	return append(dst, tokenEnd), nil
}

// appendAny dispatches on the runtime shape of v: raw bytes, text,
// integral number, ordered sequence or string-keyed mapping. Values
// outside that set are encoded as text using their fmt.Sprint form.
func appendAny(dst []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return dst, ErrMissingArgument
	case Value:
		return appendValue(dst, x)
	case *Value:
		if x == nil {
			return dst, ErrMissingArgument
		}
		return appendValue(dst, *x)
	case *Dict:
		if x == nil {
			return dst, ErrMissingArgument
		}
		return appendDict(dst, x)
	case []byte:
		return appendBytes(dst, x), nil
	case string:
		return appendString(dst, x), nil
	case int:
		return appendInt(dst, int64(x)), nil
	case int8:
		return appendInt(dst, int64(x)), nil
	case int16:
		return appendInt(dst, int64(x)), nil
	case int32:
		return appendInt(dst, int64(x)), nil
	case int64:
		return appendInt(dst, x), nil
	case uint:
		return appendInt(dst, common.SaturateUint(uint64(x))), nil
	case uint8:
		return appendInt(dst, int64(x)), nil
	case uint16:
		return appendInt(dst, int64(x)), nil
	case uint32:
		return appendInt(dst, int64(x)), nil
	case uint64:
		return appendInt(dst, common.SaturateUint(x)), nil
	case float32:
		return appendFloat(dst, float64(x))
	case float64:
		return appendFloat(dst, x)
	case []Value:
		return appendValue(dst, Value{kind: List, list: x})
	case []any:
		return appendSeq(dst, len(x), func(i int) any { return x[i] })
	case []string:
		return appendSeq(dst, len(x), func(i int) any { return x[i] })
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		return appendMap(dst, keys, func(k string) any { return x[k] })
	}
	return appendReflect(dst, reflect.ValueOf(v))
}

func appendSeq(dst []byte, n int, at func(int) any) ([]byte, error) {
	var err error
	dst = append(dst, tokenList)
	for i := 0; i < n; i++ {
		if dst, err = appendAny(dst, at(i)); err != nil {
			return dst, fmt.Errorf("list element %d: %w", i, err)
		}
	}
	return append(dst, tokenEnd), nil
}

// appendMap writes entries in ascending key order; keys is sorted in place.
func appendMap(dst []byte, keys []string, at func(string) any) ([]byte, error) {
	var err error
	sort.Strings(keys)
	dst = append(dst, tokenDictionary)
	for _, k := range keys {
		dst = appendString(dst, k)
		if dst, err = appendAny(dst, at(k)); err != nil {
			return dst, fmt.Errorf("dictionary key %q: %w", k, err)
		}
	}
	return append(dst, tokenEnd), nil
}

// appendReflect covers named types and containers the type switch in
// appendAny does not list.
func appendReflect(dst []byte, rv reflect.Value) ([]byte, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return dst, ErrMissingArgument
		}
		return appendAny(dst, rv.Elem().Interface())
	case reflect.String:
		return appendString(dst, rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendInt(dst, rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return appendInt(dst, common.SaturateUint(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return appendFloat(dst, rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return appendBytes(dst, b), nil
		}
		return appendSeq(dst, rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			keys := make([]string, 0, rv.Len())
			byName := make(map[string]reflect.Value, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				k := iter.Key().String()
				keys = append(keys, k)
				byName[k] = iter.Value()
			}
			return appendMap(dst, keys, func(k string) any { return byName[k].Interface() })
		}
	}
	return appendString(dst, fmt.Sprint(rv.Interface())), nil
}
