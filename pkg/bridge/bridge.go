// Package bridge converts decoded bencode values to and from other
// self-describing formats.
//
// Byte-strings that hold valid UTF-8 become text on the other side; any
// other byte-string stays binary (a CBOR byte string, or a YAML !!binary
// scalar). Dictionaries always come out in canonical key order.
package bridge

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"github.com/rawbytedev/bencode"
	"github.com/rawbytedev/bencode/internal/common"
	"gopkg.in/yaml.v3"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2), so equal
// values always produce identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bridge: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("bridge: CBOR decoder initialization failed: " + err.Error())
	}
}

// ToCBOR transcodes v to deterministic CBOR.
func ToCBOR(v bencode.Value) ([]byte, error) {
	if v.Kind() == bencode.Invalid {
		return nil, bencode.ErrMissingArgument
	}
	return encMode.Marshal(native(v))
}

// FromCBOR transcodes one CBOR item into a Value. Booleans become 0 or 1
// and floats are truncated toward zero; null and tagged items other than
// plain data are rejected.
func FromCBOR(data []byte) (bencode.Value, error) {
	var x any
	if err := decMode.Unmarshal(data, &x); err != nil {
		return bencode.Value{}, fmt.Errorf("bridge: cbor: %w", err)
	}
	return fromNative(x)
}

// ToYAML renders v as a YAML document, mostly for diagnostics.
func ToYAML(v bencode.Value) ([]byte, error) {
	if v.Kind() == bencode.Invalid {
		return nil, bencode.ErrMissingArgument
	}
	return yaml.Marshal(yamlNode(v))
}

func native(v bencode.Value) any {
	switch v.Kind() {
	case bencode.ByteString:
		if utf8.Valid(v.Bytes()) {
			return v.Text()
		}
		return v.Bytes()
	case bencode.Integer:
		return v.Int()
	case bencode.List:
		out := make([]any, 0, len(v.List()))
		for _, item := range v.List() {
			out = append(out, native(item))
		}
		return out
	case bencode.Dictionary:
		d := v.Dict()
		out := make(map[string]any, d.Len())
		d.Range(func(key string, item bencode.Value) bool {
			out[key] = native(item)
			return true
		})
		return out
	}
	return nil
}

func fromNative(x any) (bencode.Value, error) {
	switch t := x.(type) {
	case string:
		return bencode.StringValue(t), nil
	case []byte:
		return bencode.BytesValue(t), nil
	case int64:
		return bencode.IntValue(t), nil
	case uint64:
		return bencode.IntValue(common.SaturateUint(t)), nil
	case bool:
		if t {
			return bencode.IntValue(1), nil
		}
		return bencode.IntValue(0), nil
	case float64:
		n, ok := common.TruncateFloat(t)
		if !ok {
			return bencode.Value{}, fmt.Errorf("bridge: %w: %v", bencode.ErrMalformedNumber, t)
		}
		return bencode.IntValue(n), nil
	case []any:
		items := make([]bencode.Value, 0, len(t))
		for i, elem := range t {
			item, err := fromNative(elem)
			if err != nil {
				return bencode.Value{}, fmt.Errorf("list element %d: %w", i, err)
			}
			items = append(items, item)
		}
		return bencode.ListValue(items...), nil
	case map[string]any:
		d := bencode.NewDict()
		for key, elem := range t {
			item, err := fromNative(elem)
			if err != nil {
				return bencode.Value{}, fmt.Errorf("dictionary key %q: %w", key, err)
			}
			d.Set(key, item)
		}
		return bencode.DictValue(d), nil
	}
	return bencode.Value{}, fmt.Errorf("bridge: %w: %T", bencode.ErrUnsupported, x)
}

func yamlNode(v bencode.Value) *yaml.Node {
	switch v.Kind() {
	case bencode.ByteString:
		if utf8.Valid(v.Bytes()) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Text()}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(v.Bytes())}
	case bencode.Integer:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int(), 10)}
	case bencode.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.List() {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case bencode.Dictionary:
		d := v.Dict()
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range d.SortedKeys() {
			item, _ := d.Get(key)
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				yamlNode(item))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
