package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	n, ok := ParseLength([]byte("12"))
	require.True(t, ok)
	require.Equal(t, 12, n)

	_, ok = ParseLength(nil)
	assert.False(t, ok)
	_, ok = ParseLength([]byte("1a"))
	assert.False(t, ok)
	_, ok = ParseLength([]byte("99999999999999999999999"))
	assert.False(t, ok)
}

func TestParseInteger(t *testing.T) {
	cases := map[string]int64{
		"0":                     0,
		"-42":                   -42,
		"123456":                123456,
		"1.9":                   1,
		"-1.9":                  -1,
		"-2.9155148901435E+18":  -2915514890143500000,
		"99999999999999999999":  math.MaxInt64,
		"-99999999999999999999": math.MinInt64,
		"1E999999999":           math.MaxInt64,
		"-1E999999999":          math.MinInt64,
		"1E-999999999":          0,
	}
	for in, want := range cases {
		got, ok := ParseInteger(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "abc", "1-2", "Inf", "-inf", "+Inf", "--1"} {
		_, ok := ParseInteger(bad)
		assert.False(t, ok, bad)
	}
}

func TestIsCanonicalInteger(t *testing.T) {
	for _, s := range []string{"0", "7", "-7", "1024"} {
		assert.True(t, IsCanonicalInteger(s), s)
	}
	for _, s := range []string{"", "-", "-0", "03", "1.5", "+1", "1e3"} {
		assert.False(t, IsCanonicalInteger(s), s)
	}
}

func TestTruncateFloat(t *testing.T) {
	n, ok := TruncateFloat(-3.99)
	require.True(t, ok)
	assert.Equal(t, int64(-3), n)

	n, ok = TruncateFloat(1e300)
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), n)

	_, ok = TruncateFloat(math.NaN())
	assert.False(t, ok)
	_, ok = TruncateFloat(math.Inf(-1))
	assert.False(t, ok)
}

func TestAppendHelpers(t *testing.T) {
	assert.Equal(t, "5:", string(AppendLength(nil, 5)))
	assert.Equal(t, "-12", string(AppendDecimal(nil, -12)))
	assert.Equal(t, int64(math.MaxInt64), SaturateUint(math.MaxUint64))
}
