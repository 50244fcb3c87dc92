// Package pattern searches a bytesource.Source forward and backward for byte patterns that may contain wildcards.
//
// None of the search functions ever fail: an invalid range or an absent match is reported as NotFound (or false), and
// read errors from the source are treated as a mismatch at that position.
package pattern

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Wildcard is the token that matches any byte.
//
// The value lies outside of 0-255 so it cannot collide with any byte read from a source.
const Wildcard = math.MinInt32

// NotFound is returned by the search functions when there is no match.
const NotFound int64 = -1

// Pattern is an ordered sequence of tokens, each either an unsigned byte value 0-255 or Wildcard.
type Pattern []int

// Literal returns the exact pattern that matches the given bytes.
func Literal(b []byte) Pattern {
	p := make(Pattern, len(b))
	for i, v := range b {
		p[i] = int(v)
	}

	return p
}

// Parse parses a pattern from whitespace-separated hex tokens where "??" is a wildcard.
//
// For example, "50 4B ?? 06" matches "PK" followed by any byte then 0x06.
func Parse(s string) (Pattern, error) {
	fields := strings.Fields(s)
	p := make(Pattern, 0, len(fields))
	for i, f := range fields {
		if f == "??" {
			p = append(p, Wildcard)
			continue
		}

		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("parse token %d (%q) error: %w", i, f, err)
		}

		p = append(p, int(v))
	}

	return p, nil
}

// MustParse is a variant of Parse that panics on error.
func MustParse(s string) Pattern {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return p
}

// Word returns the pattern of the given 2-byte little-endian value.
func Word(v uint16) Pattern {
	return Pattern{int(v & 0xFF), int(v >> 8)}
}

// Quad returns the pattern of the given 4-byte little-endian value.
func Quad(v uint32) Pattern {
	return Pattern{int(v & 0xFF), int(v >> 8 & 0xFF), int(v >> 16 & 0xFF), int(v >> 24)}
}

// HasWildcard returns true if the pattern contains at least one Wildcard.
func (p Pattern) HasWildcard() bool {
	for _, t := range p {
		if t == Wildcard {
			return true
		}
	}

	return false
}

// exact returns the little-endian value of the pattern if every token is an exact byte.
func (p Pattern) exact() (v uint32, ok bool) {
	for i := len(p) - 1; i >= 0; i-- {
		t := p[i]
		if t < 0 || t > 0xFF {
			return 0, false
		}

		v = v<<8 | uint32(t)
	}

	return v, true
}

// String returns the pattern in the format understood by Parse.
func (p Pattern) String() string {
	var sb strings.Builder
	for i, t := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}

		switch {
		case t == Wildcard:
			sb.WriteString("??")
		case t >= 0 && t <= 0xFF:
			_, _ = fmt.Fprintf(&sb, "%02X", t)
		default:
			_, _ = fmt.Fprintf(&sb, "<%d>", t)
		}
	}

	return sb.String()
}
