// Package bencode decodes and encodes the four-kind bencode format:
// byte-strings, integers, lists and dictionaries.
//
// The package-level functions are stateless and safe for concurrent use.
// Every failure they return is an *Error whose cause is one of the Err*
// sentinels (or a *TokenError), so callers can write
//
//	v, err := bencode.Decode(buf)
//	if errors.Is(err, bencode.ErrEndOfInput) { ... }
//
// For streams, options, or several values back to back, use NewReader and
// NewEncoder directly; those return the specific errors unwrapped.
package bencode

import "bytes"

func newBufReader(buf []byte) *Reader {
	return NewReader(bytes.NewReader(buf), Options{})
}

// TypeOf reports the kind of the first value in buf without consuming it.
// An unrecognized leading byte yields Invalid and no error.
func TypeOf(buf []byte) (Kind, error) {
	if buf == nil {
		return Invalid, wrap("type detection", ErrMissingArgument)
	}
	kind, err := newBufReader(buf).NextKind()
	return kind, wrap("type detection", err)
}

func DecodeBytes(buf []byte) ([]byte, error) {
	v, err := DecodeKind(ByteString, buf)
	return v.Bytes(), err
}

func DecodeString(buf []byte) (string, error) {
	v, err := DecodeKind(ByteString, buf)
	return v.Text(), err
}

func DecodeInt(buf []byte) (int64, error) {
	v, err := DecodeKind(Integer, buf)
	return v.Int(), err
}

func DecodeList(buf []byte) ([]Value, error) {
	v, err := DecodeKind(List, buf)
	return v.List(), err
}

func DecodeDict(buf []byte) (*Dict, error) {
	v, err := DecodeKind(Dictionary, buf)
	return v.Dict(), err
}

// DecodeKind decodes the first value in buf, which must be of the given
// kind. Bytes after that value are ignored.
func DecodeKind(kind Kind, buf []byte) (Value, error) {
	if buf == nil || kind == Invalid {
		return Value{}, wrap("decoding", ErrMissingArgument)
	}
	v, err := newBufReader(buf).ReadKind(kind)
	if err != nil {
		return Value{}, wrap("decoding", err)
	}
	return v, nil
}

// Decode decodes the first value in buf as whatever kind it announces.
func Decode(buf []byte) (Value, error) {
	if buf == nil {
		return Value{}, wrap("decoding", ErrMissingArgument)
	}
	v, err := newBufReader(buf).ReadValue()
	if err != nil {
		return Value{}, wrap("decoding", err)
	}
	return v, nil
}

// Encode returns the canonical encoding of v, which may be a Value or
// *Dict, []byte, a string, any integer or float kind, a slice or array, or
// a map with string keys. Floats are truncated toward zero. Anything else
// is encoded as the text fmt.Sprint produces for it; new code should not
// rely on that fallback.
func Encode(v any) ([]byte, error) {
	out, err := appendAny(nil, v)
	if err != nil {
		return nil, wrap("encoding", err)
	}
	return out, nil
}

func EncodeString(s string) []byte {
	return appendString(nil, s)
}

func EncodeInt(n int64) []byte {
	return appendInt(nil, n)
}

func EncodeList(items []any) ([]byte, error) {
	if items == nil {
		return nil, wrap("encoding", ErrMissingArgument)
	}
	return Encode(items)
}

func EncodeDict(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, wrap("encoding", ErrMissingArgument)
	}
	return Encode(m)
}
