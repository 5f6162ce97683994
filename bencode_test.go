package bencode

import (
	"bytes"
	"errors"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	s, err := DecodeString([]byte("12:Hello World!"))
	require.NoError(t, err)
	require.Equal(t, "Hello World!", s)
}

func TestDecodeInteger(t *testing.T) {
	n, err := DecodeInt([]byte("i123456e"))
	require.NoError(t, err)
	require.Equal(t, int64(123456), n)
}

func TestDecodeListOfText(t *testing.T) {
	list, err := DecodeList([]byte("l5:Hello6:World!e"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Hello", list[0].Text())
	assert.Equal(t, "World!", list[1].Text())
}

func TestEncodeDictCanonicalOrder(t *testing.T) {
	out, err := EncodeDict(map[string]any{"foo": 1, "bar": 2})
	require.NoError(t, err)
	require.Equal(t, "d3:bari2e3:fooi1ee", string(out))
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := Decode([]byte{})
	require.ErrorIs(t, err, ErrEndOfInput)

	var codecErr *Error
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, "decoding", codecErr.Op)
}

func TestDecodeBadLengthPrefix(t *testing.T) {
	_, err := Decode([]byte("1c3:Testing"))
	require.ErrorIs(t, err, ErrInvalidToken)

	var tokErr *TokenError
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, byte('c'), tokErr.Token)
	assert.Equal(t, ByteString, tokErr.Kind)
	assert.Equal(t, int64(1), tokErr.Offset)
}

func TestDecodeGeneric(t *testing.T) {
	v, err := Decode([]byte("d4:infod6:lengthi42e4:name4:spamee4:listli1ei-2e0:ee"))
	require.NoError(t, err)
	require.Equal(t, Dictionary, v.Kind())

	info, ok := v.Dict().Get("info")
	require.True(t, ok)
	length, _ := info.Dict().Get("length")
	assert.Equal(t, int64(42), length.Int())

	list, _ := v.Dict().Get("list")
	assert.Equal(t, []any{int64(1), int64(-2), ""}, list.Interface())
}

func TestDecodeKindMismatch(t *testing.T) {
	_, err := DecodeInt([]byte("4:spam"))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = DecodeList([]byte("i1e"))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = DecodeDict([]byte("le"))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = DecodeBytes([]byte("i1e"))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingArgument(t *testing.T) {
	_, err := Decode(nil)
	require.ErrorIs(t, err, ErrMissingArgument)

	_, err = DecodeKind(Invalid, []byte("i1e"))
	require.ErrorIs(t, err, ErrMissingArgument)

	_, err = TypeOf(nil)
	require.ErrorIs(t, err, ErrMissingArgument)

	_, err = Encode(nil)
	require.ErrorIs(t, err, ErrMissingArgument)

	_, err = EncodeList(nil)
	require.ErrorIs(t, err, ErrMissingArgument)

	_, err = EncodeDict(nil)
	require.ErrorIs(t, err, ErrMissingArgument)
}

func TestTypeOf(t *testing.T) {
	cases := map[string]Kind{
		"4:spam": ByteString,
		"i3e":    Integer,
		"le":     List,
		"de":     Dictionary,
		"x":      Invalid,
		"e":      Invalid,
	}
	for in, want := range cases {
		got, err := TypeOf([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := TypeOf([]byte{})
	require.ErrorIs(t, err, ErrEndOfInput)
}

func TestUnrecognizedLeadingByte(t *testing.T) {
	for _, in := range []string{"x", "e", ":", "li1exe", "d3:fooze"} {
		_, err := Decode([]byte(in))
		require.ErrorIs(t, err, ErrInvalidToken, in)
	}
}

func TestUnrecognizedElementReportsContainer(t *testing.T) {
	cases := map[string]Kind{
		"x":         Invalid,
		"li1exe":    List,
		"d3:fooze":  Dictionary,
		"lld1:axee": Dictionary,
	}
	for in, want := range cases {
		_, err := Decode([]byte(in))
		var tokErr *TokenError
		require.ErrorAs(t, err, &tokErr, in)
		assert.Equal(t, want, tokErr.Kind, in)
		assert.Equal(t, byte('x'), tokErr.Token, in)
	}
}

func TestDictKeyMustBeByteString(t *testing.T) {
	_, err := Decode([]byte("di1ei2ee"))
	require.ErrorIs(t, err, ErrInvalidToken)

	var tokErr *TokenError
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, Dictionary, tokErr.Kind)
}

func TestDuplicateKeyLastWins(t *testing.T) {
	d, err := DecodeDict([]byte("d1:ai1e1:bi2e1:ai3ee"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.Keys())
	a, _ := d.Get("a")
	assert.Equal(t, int64(3), a.Int())

	out, err := Encode(d)
	require.NoError(t, err)
	assert.Equal(t, "d1:ai3e1:bi2ee", string(out))
}

func TestTruncationIsEndOfInput(t *testing.T) {
	docs := []string{
		"12:Hello World!",
		"i-123456e",
		"l5:Hello6:World!e",
		"d3:bari2e3:fooli1e3:bazee",
	}
	for _, doc := range docs {
		for i := 1; i < len(doc); i++ {
			_, err := Decode([]byte(doc[:i]))
			require.ErrorIs(t, err, ErrEndOfInput, "prefix %q", doc[:i])
		}
		_, err := Decode([]byte(doc))
		require.NoError(t, err, doc)
	}
}

func TestLenientIntegers(t *testing.T) {
	n, err := DecodeInt([]byte("i-2.9155148901435E+18e"))
	require.NoError(t, err)
	assert.Equal(t, int64(-2915514890143500000), n)

	n, err = DecodeInt([]byte("i7.99e"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = DecodeInt([]byte("i1E999999999e"))
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), n)

	n, err = DecodeInt([]byte("i-1E999999999e"))
	require.NoError(t, err)
	assert.Equal(t, int64(-9223372036854775808), n)

	_, err = DecodeInt([]byte("iInfe"))
	require.ErrorIs(t, err, ErrMalformedNumber)

	_, err = DecodeInt([]byte("iabce"))
	require.ErrorIs(t, err, ErrMalformedNumber)

	_, err = DecodeInt([]byte("ie"))
	require.ErrorIs(t, err, ErrMalformedNumber)
}

func TestTrailingBytesIgnored(t *testing.T) {
	n, err := DecodeInt([]byte("i5ei6e"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestByteStringRoundTrip(t *testing.T) {
	condition := func(b []byte) bool {
		out, err := Decode(EncodeString(string(b)))
		require.NoError(t, err)
		return bytes.Equal(b, out.Bytes())
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func TestIntegerRoundTrip(t *testing.T) {
	condition := func(n int64) bool {
		out, err := DecodeInt(EncodeInt(n))
		require.NoError(t, err)
		return n == out
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func TestDictInsertionOrderIndependent(t *testing.T) {
	condition := func(m map[string]int64) bool {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		forward, backward := NewDict(), NewDict()
		for _, k := range keys {
			forward.Set(k, IntValue(m[k]))
		}
		for i := len(keys) - 1; i >= 0; i-- {
			backward.Set(keys[i], IntValue(m[keys[i]]))
		}
		a, err := Encode(forward)
		require.NoError(t, err)
		b, err := Encode(backward)
		require.NoError(t, err)
		c, err := Encode(m)
		require.NoError(t, err)
		return bytes.Equal(a, b) && bytes.Equal(a, c)
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func TestTypeOfDoesNotConsume(t *testing.T) {
	for _, doc := range []string{"12:Hello World!", "i42e", "l5:Helloe", "d1:ai1ee"} {
		buf := []byte(doc)
		r := NewReader(bytes.NewReader(buf), Options{})
		kind, err := r.NextKind()
		require.NoError(t, err)
		peeked, err := r.ReadValue()
		require.NoError(t, err)

		direct, err := Decode(buf)
		require.NoError(t, err)
		assert.True(t, direct.Equal(peeked), doc)
		assert.Equal(t, kind, direct.Kind())
	}
}

func TestEncodeDecodeSymmetry(t *testing.T) {
	inputs := []any{"text", []byte{0, 1, 2}, 12, int8(-3), uint16(9), []any{"a", 1}, map[string]any{"k": "v"}}
	for _, in := range inputs {
		out, err := Encode(in)
		require.NoError(t, err)
		v, err := Decode(out)
		require.NoError(t, err)
		assert.Equal(t, Classify(out[0]), v.Kind())

		again, err := Encode(v)
		require.NoError(t, err)
		assert.Equal(t, out, again)
	}
}

func TestErrorWrapsCause(t *testing.T) {
	_, err := Decode([]byte("i12"))
	var codecErr *Error
	require.True(t, errors.As(err, &codecErr))
	assert.ErrorIs(t, codecErr.Err, ErrEndOfInput)
	assert.Contains(t, err.Error(), "decoding failed")
}

func FuzzDecode(f *testing.F) {
	for _, seed := range []string{"12:Hello World!", "i123456e", "l5:Hello6:World!e", "d3:bari2e3:fooi1ee", "1c3:Testing", ""} {
		f.Add([]byte(seed))
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Decode(data)
		if err != nil {
			var codecErr *Error
			require.ErrorAs(t, err, &codecErr)
			return
		}
		out, err := Encode(v)
		require.NoError(t, err)
		again, err := Decode(out)
		require.NoError(t, err)
		require.True(t, v.Equal(again))
	})
}
