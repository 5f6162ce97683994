package bencode

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/rawbytedev/bencode/internal/common"
)

// payloads up to this size are read into a single exact allocation; larger
// ones grow with the data actually present.
const smallPayload = 64 << 10

// ReadBytes decodes a byte-string.
func (r *Reader) ReadBytes() ([]byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if !common.IsDigit(b) {
		return nil, r.reject(ByteString, b)
	}
	var scratch [20]byte
	digits := scratch[:0]
	for b != tokenSeparator {
		if !common.IsDigit(b) {
			return nil, r.reject(ByteString, b)
		}
		digits = append(digits, b)
		if b, err = r.ReadByte(); err != nil {
			return nil, err
		}
	}
	n, ok := common.ParseLength(digits)
	if !ok {
		return nil, fmt.Errorf("%w: byte-string length %q", ErrMalformedNumber, digits)
	}
	return r.readPayload(n)
}

func (r *Reader) readPayload(n int) ([]byte, error) {
	if n <= smallPayload {
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, eof(err)
		}
		return payload, nil
	}
	var buf bytes.Buffer
	got, err := io.CopyN(&buf, r, int64(n))
	if got < int64(n) {
		if err == nil || eof(err) == ErrEndOfInput {
			return nil, ErrEndOfInput
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadString decodes a byte-string and returns it as text.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadInt decodes an integer.
func (r *Reader) ReadInt() (int64, error) {
	if err := r.expect(Integer, tokenInteger); err != nil {
		return 0, err
	}
	var scratch [24]byte
	text := scratch[:0]
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == tokenEnd {
			break
		}
		text = append(text, b)
	}
	return r.parseInt(string(text))
}

func (r *Reader) parseInt(s string) (int64, error) {
	if r.Opts.StrictIntegers {
		if !common.IsCanonicalInteger(s) {
			return 0, fmt.Errorf("%w: non-canonical integer %q", ErrMalformedNumber, s)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: integer %q out of range", ErrMalformedNumber, s)
		}
		return n, nil
	}
	n, ok := common.ParseInteger(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	return n, nil
}

// ReadList decodes a list.
func (r *Reader) ReadList() ([]Value, error) {
	if err := r.expect(List, tokenList); err != nil {
		return nil, err
	}
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	list := []Value{}
	for {
		b, err := r.PeekByte()
		if err != nil {
			return nil, err
		}
		if b == tokenEnd {
			r.skip()
			return list, nil
		}
		v, err := r.readValue(List)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
}

// ReadDict decodes a dictionary. Keys keep their first-seen position and
// a repeated key replaces the earlier value.
func (r *Reader) ReadDict() (*Dict, error) {
	if err := r.expect(Dictionary, tokenDictionary); err != nil {
		return nil, err
	}
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	d := NewDict()
	for {
		b, err := r.PeekByte()
		if err != nil {
			return nil, err
		}
		if b == tokenEnd {
			r.skip()
			return d, nil
		}
		if Classify(b) != ByteString {
			return nil, r.tokenError(Dictionary, b)
		}
		key, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := r.readValue(Dictionary)
		if err != nil {
			return nil, fmt.Errorf("dictionary key %q: %w", key, err)
		}
		d.Set(key, v)
	}
}

// ReadValue decodes whichever kind the next byte announces.
func (r *Reader) ReadValue() (Value, error) {
	return r.readValue(Invalid)
}

// readValue is ReadValue inside a container of kind ctx, which is reported
// when the next byte begins no value.
func (r *Reader) readValue(ctx Kind) (Value, error) {
	b, err := r.PeekByte()
	if err != nil {
		return Value{}, err
	}
	kind := Classify(b)
	if kind == Invalid {
		return Value{}, r.tokenError(ctx, b)
	}
	return r.ReadKind(kind)
}

// ReadKind decodes a value that must be of the given kind.
func (r *Reader) ReadKind(kind Kind) (Value, error) {
	switch kind {
	case ByteString:
		b, err := r.ReadBytes()
		if err != nil {
			return Value{}, err
		}
		return BytesValue(b), nil
	case Integer:
		n, err := r.ReadInt()
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case List:
		l, err := r.ReadList()
		if err != nil {
			return Value{}, err
		}
		return ListValue(l...), nil
	case Dictionary:
		d, err := r.ReadDict()
		if err != nil {
			return Value{}, err
		}
		return DictValue(d), nil
	}
	return Value{}, fmt.Errorf("%w: kind %s", ErrMissingArgument, kind)
}

func (r *Reader) expect(kind Kind, token byte) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b != token {
		return r.reject(kind, b)
	}
	return nil
}

// reject pushes a consumed byte back and reports it.
func (r *Reader) reject(kind Kind, b byte) error {
	_ = r.UnreadByte(b)
	return r.tokenError(kind, b)
}

func (r *Reader) tokenError(kind Kind, b byte) error {
	return &TokenError{Kind: kind, Token: b, Offset: r.offset}
}

// skip drops a byte previously returned by PeekByte.
func (r *Reader) skip() {
	r.hasPend = false
	r.offset++
}

func (r *Reader) enter() error {
	r.depth++
	if limit := r.Opts.maxDepth(); limit > 0 && r.depth > limit {
		r.depth--
		return fmt.Errorf("%w: limit %d", ErrDepthExceeded, limit)
	}
	return nil
}

func (r *Reader) leave() { r.depth-- }
