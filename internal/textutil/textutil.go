// Package textutil holds the small string-handling helpers the cell
// emitters and stream protocol share: whitespace stripping, quoting,
// CSV-style escaping, and display-width measurement for fixed-width
// formats such as IPAC.
package textutil

import (
	"strings"

	"golang.org/x/text/width"
)

// Strip trims leading and trailing ASCII spaces, matching FITS fixed-width
// string field padding (FITS pads with spaces, never tabs or other
// whitespace).
func Strip(s string) string {
	return strings.Trim(s, " ")
}

// Quote wraps s in quote and returns it unmodified otherwise (no embedded
// quote escaping).
func Quote(s string, quote byte) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	b.WriteString(s)
	b.WriteByte(quote)
	return b.String()
}

// QuoteEscape wraps s in quote, doubling any embedded quote character.
func QuoteEscape(s string, quote byte) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		c := s[i]
		b.WriteByte(c)
		if c == quote {
			b.WriteByte(quote)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// DisplayWidth measures the rendered column width of s the way a
// fixed-width terminal/table layout would: most runes count for one
// column, East-Asian wide/fullwidth runes count for two. FITS table
// strings are conventionally ASCII, for which this is identical to
// len(s), but this keeps IPAC padding correct for any UTF-8 content a
// column legitimately carries.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// PadRight right-pads s with spaces until its DisplayWidth reaches w. If s
// is already at least w columns wide, it is returned unchanged.
func PadRight(s string, w int) string {
	n := DisplayWidth(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
