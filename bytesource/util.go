package bytesource

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// chunkSize is the buffer size used when comparing or hashing content.
const chunkSize = 32 * 1024

// NewReader returns an io.SectionReader over the entire Source.
func NewReader(s Source) *io.SectionReader {
	return io.NewSectionReader(s, 0, s.Len())
}

// Bytes returns a copy of the content of the Source.
func Bytes(s Source) ([]byte, error) {
	n := s.Len()
	if n == 0 {
		return []byte{}, nil
	}
	if n > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("content too large: %d bytes", n)
	}

	b := make([]byte, n)
	if err := s.CopyInto(0, b, 0, len(b)); err != nil {
		return nil, err
	}

	return b, nil
}

// String returns the content of the Source as a string.
func String(s Source) (string, error) {
	b, err := Bytes(s)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Equal reports whether both sources have the same length and content.
//
// A nil Source is only equal to another nil Source. Content is compared in chunks so neither side is materialised in
// full; a read error on either side makes them compare unequal.
func Equal(a, b Source) bool {
	switch {
	case a == nil || b == nil:
		return a == nil && b == nil
	case a == b:
		return true
	case a.Len() != b.Len():
		return false
	}

	var (
		n          = a.Len()
		bufA, bufB = make([]byte, min(n, chunkSize)), make([]byte, min(n, chunkSize))
	)

	for off := int64(0); off < n; {
		m := int(min(n-off, chunkSize))
		if a.CopyInto(off, bufA, 0, m) != nil || b.CopyInto(off, bufB, 0, m) != nil {
			return false
		}
		if !bytes.Equal(bufA[:m], bufB[:m]) {
			return false
		}

		off += int64(m)
	}

	return true
}

// Hash returns the 64-bit xxHash of the content of the Source.
//
// Two sources that are Equal have the same Hash regardless of their backing storage.
func Hash(s Source) (uint64, error) {
	d := xxhash.New()
	if _, err := io.CopyBuffer(d, NewReader(s), make([]byte, chunkSize)); err != nil {
		return 0, fmt.Errorf("hash content error: %w", err)
	}

	return d.Sum64(), nil
}
