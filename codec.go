package bencode

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	valueType   = reflect.TypeOf(Value{})
	dictPtrType = reflect.TypeOf((*Dict)(nil))
)

// Codec maps Go structs to dictionaries and back. Field names come from
// the `bencode:"name,omitempty"` tag or the Go field name; "-" skips a
// field. Per-type field plans are cached, so reuse one Codec. The zero
// Codec is ready to use.
type Codec struct {
	Opts Options
	plan map[reflect.Type]*structPlan
	mu   sync.RWMutex
}

type structPlan struct {
	fields []fieldInfo // ascending by name
	byName map[string]int
}

type fieldInfo struct {
	idx       int
	name      string
	omitEmpty bool
}

func NewCodec(opts Options) *Codec {
	return &Codec{
		Opts: opts,
		plan: make(map[reflect.Type]*structPlan),
	}
}

func (c *Codec) Name() string { return "bencode" }

func (c *Codec) getPlan(t reflect.Type) *structPlan {
	c.mu.RLock()
	if plan, ok := c.plan[t]; ok {
		c.mu.RUnlock()
		return plan
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check
	if plan, ok := c.plan[t]; ok {
		return plan
	}
	if c.plan == nil {
		c.plan = make(map[reflect.Type]*structPlan)
	}

	plan := &structPlan{byName: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("bencode"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if _, dup := plan.byName[name]; dup {
			continue
		}
		plan.byName[name] = i
		plan.fields = append(plan.fields, fieldInfo{
			idx:       i,
			name:      name,
			omitEmpty: opts == "omitempty",
		})
	}
	sort.Slice(plan.fields, func(i, j int) bool { return plan.fields[i].name < plan.fields[j].name })

	c.plan[t] = plan
	return plan
}

// Marshal encodes v. Structs become dictionaries and bools become 0 or 1;
// everything else follows Encode.
func (c *Codec) Marshal(v any) ([]byte, error) {
	out, err := c.marshal(nil, reflect.ValueOf(v))
	if err != nil {
		return nil, wrap("marshal", err)
	}
	return out, nil
}

func (c *Codec) marshal(dst []byte, rv reflect.Value) ([]byte, error) {
	if !rv.IsValid() {
		return dst, ErrMissingArgument
	}
	switch rv.Type() {
	case valueType:
		return appendValue(dst, rv.Interface().(Value))
	case dictPtrType:
		if rv.IsNil() {
			return dst, ErrMissingArgument
		}
		return appendDict(dst, rv.Interface().(*Dict))
	}

	var err error
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return dst, ErrMissingArgument
		}
		return c.marshal(dst, rv.Elem())
	case reflect.Struct:
		plan := c.getPlan(rv.Type())
		dst = append(dst, tokenDictionary)
		for _, field := range plan.fields {
			fv := rv.Field(field.idx)
			if (field.omitEmpty && fv.IsZero()) || isNilRef(fv) {
				continue
			}
			dst = appendString(dst, field.name)
			if dst, err = c.marshal(dst, fv); err != nil {
				return dst, fmt.Errorf("field %s: %w", field.name, err)
			}
		}
		return append(dst, tokenEnd), nil
	case reflect.Bool:
		if rv.Bool() {
			return appendInt(dst, 1), nil
		}
		return appendInt(dst, 0), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return appendReflect(dst, rv)
		}
		dst = append(dst, tokenList)
		for i := 0; i < rv.Len(); i++ {
			if dst, err = c.marshal(dst, rv.Index(i)); err != nil {
				return dst, fmt.Errorf("list element %d: %w", i, err)
			}
		}
		return append(dst, tokenEnd), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return dst, fmt.Errorf("%w: map key %s", ErrUnsupported, rv.Type().Key())
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		dst = append(dst, tokenDictionary)
		for _, k := range keys {
			dst = appendString(dst, k.String())
			if dst, err = c.marshal(dst, rv.MapIndex(k)); err != nil {
				return dst, fmt.Errorf("dictionary key %q: %w", k.String(), err)
			}
		}
		return append(dst, tokenEnd), nil
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return appendReflect(dst, rv)
	}
	return dst, fmt.Errorf("%w: %s", ErrUnsupported, rv.Type())
}

func isNilRef(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Unmarshal decodes the first value in data into out, which must be a
// non-nil pointer. Unknown dictionary keys are ignored.
func (c *Codec) Unmarshal(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return wrap("unmarshal", fmt.Errorf("%w: need a non-nil pointer, got %T", ErrUnsupported, out))
	}
	if data == nil {
		return wrap("unmarshal", ErrMissingArgument)
	}
	v, err := NewReader(bytes.NewReader(data), c.Opts).ReadValue()
	if err != nil {
		return wrap("unmarshal", err)
	}
	return wrap("unmarshal", c.assign(rv.Elem(), v))
}

func (c *Codec) assign(dst reflect.Value, v Value) error {
	switch dst.Type() {
	case valueType:
		dst.Set(reflect.ValueOf(v))
		return nil
	case dictPtrType:
		if v.kind != Dictionary {
			return mismatch(dst, v)
		}
		dst.Set(reflect.ValueOf(v.dict))
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return c.assign(dst.Elem(), v)
	case reflect.Interface:
		if dst.NumMethod() != 0 {
			return fmt.Errorf("%w: %s", ErrUnsupported, dst.Type())
		}
		dst.Set(reflect.ValueOf(v.Interface()))
		return nil
	case reflect.String:
		if v.kind != ByteString {
			return mismatch(dst, v)
		}
		dst.SetString(string(v.str))
		return nil
	case reflect.Bool:
		if v.kind != Integer {
			return mismatch(dst, v)
		}
		dst.SetBool(v.num != 0)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.kind != Integer {
			return mismatch(dst, v)
		}
		if dst.OverflowInt(v.num) {
			return fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, v.num, dst.Type())
		}
		dst.SetInt(v.num)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.kind != Integer {
			return mismatch(dst, v)
		}
		if v.num < 0 || dst.OverflowUint(uint64(v.num)) {
			return fmt.Errorf("%w: %d overflows %s", ErrTypeMismatch, v.num, dst.Type())
		}
		dst.SetUint(uint64(v.num))
		return nil
	case reflect.Float32, reflect.Float64:
		if v.kind != Integer {
			return mismatch(dst, v)
		}
		dst.SetFloat(float64(v.num))
		return nil
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			if v.kind != ByteString {
				return mismatch(dst, v)
			}
			b := reflect.MakeSlice(dst.Type(), len(v.str), len(v.str))
			setBytes(b, v.str)
			dst.Set(b)
			return nil
		}
		if v.kind != List {
			return mismatch(dst, v)
		}
		slice := reflect.MakeSlice(dst.Type(), len(v.list), len(v.list))
		for i, item := range v.list {
			if err := c.assign(slice.Index(i), item); err != nil {
				return fmt.Errorf("list element %d: %w", i, err)
			}
		}
		dst.Set(slice)
		return nil
	case reflect.Array:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			if v.kind != ByteString {
				return mismatch(dst, v)
			}
			setBytes(dst, v.str)
			return nil
		}
		if v.kind != List {
			return mismatch(dst, v)
		}
		for i := 0; i < dst.Len() && i < len(v.list); i++ {
			if err := c.assign(dst.Index(i), v.list[i]); err != nil {
				return fmt.Errorf("list element %d: %w", i, err)
			}
		}
		return nil
	case reflect.Map:
		t := dst.Type()
		if t.Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key %s", ErrUnsupported, t.Key())
		}
		if v.kind != Dictionary {
			return mismatch(dst, v)
		}
		m := reflect.MakeMapWithSize(t, v.dict.Len())
		var err error
		v.dict.Range(func(key string, item Value) bool {
			elem := reflect.New(t.Elem()).Elem()
			if err = c.assign(elem, item); err != nil {
				err = fmt.Errorf("dictionary key %q: %w", key, err)
				return false
			}
			m.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
			return true
		})
		if err != nil {
			return err
		}
		dst.Set(m)
		return nil
	case reflect.Struct:
		if v.kind != Dictionary {
			return mismatch(dst, v)
		}
		plan := c.getPlan(dst.Type())
		var err error
		v.dict.Range(func(key string, item Value) bool {
			idx, ok := plan.byName[key]
			if !ok {
				return true
			}
			if err = c.assign(dst.Field(idx), item); err != nil {
				err = fmt.Errorf("field %s: %w", key, err)
				return false
			}
			return true
		})
		return err
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, dst.Type())
}

// setBytes copies b element-wise so named byte types work too.
func setBytes(dst reflect.Value, b []byte) {
	for i := 0; i < dst.Len() && i < len(b); i++ {
		dst.Index(i).SetUint(uint64(b[i]))
	}
}

func mismatch(dst reflect.Value, v Value) error {
	return fmt.Errorf("%w: cannot store %s in %s", ErrTypeMismatch, v.kind, dst.Type())
}
