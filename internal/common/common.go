package common

import (
	"math"
	"math/big"
	"strconv"
)

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// AppendDecimal appends the base-10 text of x to dst.
func AppendDecimal(dst []byte, x int64) []byte {
	return strconv.AppendInt(dst, x, 10)
}

// AppendLength appends a byte-string length prefix ("<n>:") to dst.
func AppendLength(dst []byte, n int) []byte {
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, ':')
}

// ParseLength decodes an ASCII digit run. It reports false on an empty run,
// a non-digit, or a value that does not fit in an int.
func ParseLength(digits []byte) (int, bool) {
	if len(digits) == 0 {
		return 0, false
	}
	var x uint64
	for _, c := range digits {
		if !IsDigit(c) || x > math.MaxInt/10 {
			return 0, false
		}
		x = x*10 + uint64(c-'0')
		if x > math.MaxInt {
			return 0, false
		}
	}
	return int(x), true
}

// IsCanonicalInteger reports whether s is "0" or an optionally negative
// decimal without leading zeros and without "-0".
func IsCanonicalInteger(s string) bool {
	if s == "0" {
		return true
	}
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	if len(s) == 0 || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsDigit(s[i]) {
			return false
		}
	}
	return true
}

// ParseInteger converts integer text to int64. Plain decimals take the
// fast path; anything else is parsed as an arbitrary-precision decimal
// (fractions, exponents) and truncated toward zero, saturating at the
// int64 bounds. Exponents too large to represent saturate the same way.
// It reports false when s has no numeric meaning, including the "Inf"
// spellings.
func ParseInteger(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, _, err := big.ParseFloat(s, 10, 256, big.ToZero)
	if err != nil {
		return 0, false
	}
	if f.IsInf() {
		if !hasDigit(s) {
			return 0, false
		}
		if f.Signbit() {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	n, _ := f.Int64()
	return n, true
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if IsDigit(s[i]) {
			return true
		}
	}
	return false
}

// TruncateFloat truncates f toward zero, saturating at the int64 bounds.
// It reports false for NaN and infinities.
func TruncateFloat(f float64) (int64, bool) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(f), true
}

// SaturateUint narrows u to int64, clamping at math.MaxInt64.
func SaturateUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}
