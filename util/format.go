package util

import (
	"strconv"
	"strings"
	"time"
)

// NumberFormat controls FormatNumber.
type NumberFormat struct {
	Base    int     // Radix, 2 to 36. Zero means 10.
	Pad     int     // Minimum digit count
	PadChar rune    // Zero means '0'
	Prefix  *string // Nil selects the conventional prefix for the base
}

// defaultPrefixes are used when NumberFormat.Prefix is nil.
var defaultPrefixes = map[int]string{
	2:  "b",
	8:  "0",
	16: "0x",
}

// FormatNumber renders n in the requested base, padded to a minimum width
// and prefixed. A negative sign goes before the prefix.
func FormatNumber(n int64, f NumberFormat) string {
	base := f.Base
	if base < 2 || base > 36 {
		base = 10
	}
	padChar := f.PadChar
	if padChar == 0 {
		padChar = '0'
	}
	prefix := defaultPrefixes[base]
	if f.Prefix != nil {
		prefix = *f.Prefix
	}

	u := uint64(n)
	sign := ""
	if n < 0 {
		u = uint64(-n)
		sign = "-"
	}
	digits := strconv.FormatUint(u, base)

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(prefix)
	for i := len(digits); i < f.Pad; i++ {
		b.WriteRune(padChar)
	}
	b.WriteString(digits)
	return b.String()
}

// FormatTime renders t as HH:MM:SS. The zero time formats the current clock.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	two := NumberFormat{Pad: 2}
	return FormatNumber(int64(t.Hour()), two) + ":" +
		FormatNumber(int64(t.Minute()), two) + ":" +
		FormatNumber(int64(t.Second()), two)
}

const hexDigits = "0123456789abcdef"

// EscapeString rewrites control characters and bytes outside printable
// ASCII as escape sequences. Backslashes are left alone, so an escaped
// string is not escaped twice.
func EscapeString(s string) string {
	i := 0
	for i < len(s) && !needsEscape(s[i]) {
		i++
	}
	if i == len(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:i])
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\v':
			b.WriteString(`\v`)
		case needsEscape(c):
			b.WriteString(`\x`)
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func needsEscape(c byte) bool {
	return c < 0x20 || c >= 0x7f
}
