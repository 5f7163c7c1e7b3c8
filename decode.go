// Package charref decodes character references (&amp;, &#169;, &#xA9;) in
// text, leaving everything else alone. References that are unknown,
// malformed, or unterminated are copied through unchanged, so decoding never
// fails.
package charref

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// A Decoder replaces character references with the characters they refer
// to. Named references are resolved with its Table. A Decoder is safe for
// concurrent use.
type Decoder struct {
	table Table
}

// NewDecoder returns a Decoder that resolves named references with t.
// If t is nil, it uses HTML5.
func NewDecoder(t Table) *Decoder {
	if t == nil {
		t = HTML5
	}
	return &Decoder{table: t}
}

// Table returns the table d uses for named references.
func (d *Decoder) Table() Table {
	return d.table
}

var defaultDecoder = NewDecoder(HTML5)

// Decode decodes the character references in s, using the HTML5 table for
// named references.
func Decode(s string) string {
	return defaultDecoder.Decode(s)
}

// scanState is the position of the scanner within a possible reference.
type scanState int

const (
	plain   scanState = iota // not in a reference
	opened                   // just after '&'
	named                    // "&" followed by a letter and maybe more letters and digits
	numeric                  // "&#"
	decimal                  // "&#" followed by digits
	hex                      // "&#x" followed by hex digits
)

// Decode returns s with its character references decoded.
func (d *Decoder) Decode(s string) string {
	if strings.IndexByte(s, '&') == -1 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	state := plain
	start := 0 // offset of the '&' that opened the current reference

	for i := 0; i < len(s); {
		c, size := utf8.DecodeRuneInString(s[i:])
		end := i + size

		switch state {
		case plain:
			if c == '&' {
				state, start = opened, i
			} else {
				b.WriteString(s[i:end])
			}

		case opened:
			switch {
			case isLetter(c):
				state = named
			case c == '#':
				state = numeric
			case c == '&':
				b.WriteString(s[start:i])
				start = i
			default:
				b.WriteString(s[start:end])
				state = plain
			}

		case named:
			switch {
			case isLetter(c) || isDigit(c):
			case c == '&':
				b.WriteString(s[start:i])
				start = i
				state = opened
			case c == ';' && i > start+2:
				if v, ok := d.table.Lookup(s[start+1 : i]); ok {
					b.WriteString(v)
				} else {
					b.WriteString(s[start:end])
				}
				state = plain
			default:
				b.WriteString(s[start:end])
				state = plain
			}

		case numeric:
			switch {
			case isDigit(c):
				state = decimal
			case c == 'x' || c == 'X':
				state = hex
			case c == '&':
				b.WriteString(s[start:i])
				start = i
				state = opened
			default:
				b.WriteString(s[start:end])
				state = plain
			}

		case decimal:
			switch {
			case isDigit(c):
			case c == '&':
				b.WriteString(s[start:i])
				start = i
				state = opened
			case c == ';' && i >= start+3:
				writeNumeric(&b, s[start:end], s[start+2:i], 10)
				state = plain
			default:
				b.WriteString(s[start:end])
				state = plain
			}

		case hex:
			switch {
			case isHexDigit(c):
			case c == '&':
				b.WriteString(s[start:i])
				start = i
				state = opened
			case c == ';' && i >= start+4:
				writeNumeric(&b, s[start:end], s[start+3:i], 16)
				state = plain
			default:
				b.WriteString(s[start:end])
				state = plain
			}
		}

		i = end
	}

	if state != plain {
		// An unterminated reference is never resolved.
		b.WriteString(s[start:])
	}

	return b.String()
}

// DecodeBytes is like Decode, but for a byte slice. The result never shares
// memory with b.
func (d *Decoder) DecodeBytes(b []byte) []byte {
	return []byte(d.Decode(string(b)))
}

// writeNumeric writes the character whose code point is digits, in the given
// base. If digits doesn't represent a Unicode scalar value (a surrogate, or
// something past U+10FFFF), it writes ref instead.
func writeNumeric(b *strings.Builder, ref, digits string, base int) {
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil || n > utf8.MaxRune || !utf8.ValidRune(rune(n)) {
		b.WriteString(ref)
		return
	}
	b.WriteRune(rune(n))
}
