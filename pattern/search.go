package pattern

import (
	"github.com/nguyengg/zipscan/bytesource"
)

// StartsWith returns true if the bytes at [off, off+len(p)) of src match p token by token.
//
// Wildcards always match. Returns false if off < 0 or the span exceeds src.Len().
func StartsWith(src bytesource.Source, off int64, p Pattern) bool {
	if src == nil || off < 0 || src.Len()-off < int64(len(p)) {
		return false
	}

	for i, t := range p {
		if t == Wildcard {
			continue
		}

		b, err := src.ByteAt(off + int64(i))
		if err != nil || int(b) != t {
			return false
		}
	}

	return true
}

// IndexOf returns the first offset at or after from where p matches, or NotFound.
//
// A negative from starts the search at 0. Exact 2- and 4-byte patterns are dispatched to IndexOfWord and IndexOfQuad.
func IndexOf(src bytesource.Source, from int64, p Pattern) int64 {
	if src == nil || src.Len() < int64(len(p)) || from >= src.Len() {
		return NotFound
	}

	if v, ok := p.exact(); ok {
		switch len(p) {
		case 2:
			return IndexOfWord(src, from, uint16(v))
		case 4:
			return IndexOfQuad(src, from, v)
		}
	}

	for i, limit := max(from, 0), src.Len()-int64(len(p)); i <= limit; i++ {
		if StartsWith(src, i, p) {
			return i
		}
	}

	return NotFound
}

// LastIndexOf returns the last offset at or before from where p matches, or NotFound.
//
// The search starts at min(from, src.Len()-len(p)) and moves backward down to 0. Exact 2- and 4-byte patterns are
// dispatched to LastIndexOfWord and LastIndexOfQuad.
func LastIndexOf(src bytesource.Source, from int64, p Pattern) int64 {
	if src == nil || src.Len() < int64(len(p)) || from < 0 {
		return NotFound
	}

	if v, ok := p.exact(); ok {
		switch len(p) {
		case 2:
			return LastIndexOfWord(src, from, uint16(v))
		case 4:
			return LastIndexOfQuad(src, from, v)
		}
	}

	for i := min(from, src.Len()-int64(len(p))); i >= 0; i-- {
		if StartsWith(src, i, p) {
			return i
		}
	}

	return NotFound
}

// Last returns the rightmost offset where p matches, or NotFound.
func Last(src bytesource.Source, p Pattern) int64 {
	if src == nil {
		return NotFound
	}

	return LastIndexOf(src, src.Len()-int64(len(p)), p)
}

// StartsWithWord returns true if the 2-byte little-endian value at off equals v.
func StartsWithWord(src bytesource.Source, off int64, v uint16) bool {
	if src == nil || off < 0 || src.Len()-off < 2 {
		return false
	}

	w, err := src.WordAt(off)
	return err == nil && w == v
}

// StartsWithQuad returns true if the 4-byte little-endian value at off equals v.
func StartsWithQuad(src bytesource.Source, off int64, v uint32) bool {
	if src == nil || off < 0 || src.Len()-off < 4 {
		return false
	}

	q, err := src.QuadAt(off)
	return err == nil && q == v
}

// IndexOfWord is the 2-byte fast path of IndexOf.
func IndexOfWord(src bytesource.Source, from int64, v uint16) int64 {
	if src == nil || src.Len() < 2 || from >= src.Len() {
		return NotFound
	}

	for i, limit := max(from, 0), src.Len()-2; i <= limit; i++ {
		if StartsWithWord(src, i, v) {
			return i
		}
	}

	return NotFound
}

// IndexOfQuad is the 4-byte fast path of IndexOf.
func IndexOfQuad(src bytesource.Source, from int64, v uint32) int64 {
	if src == nil || src.Len() < 4 || from >= src.Len() {
		return NotFound
	}

	for i, limit := max(from, 0), src.Len()-4; i <= limit; i++ {
		if StartsWithQuad(src, i, v) {
			return i
		}
	}

	return NotFound
}

// LastIndexOfWord is the 2-byte fast path of LastIndexOf.
func LastIndexOfWord(src bytesource.Source, from int64, v uint16) int64 {
	if src == nil || src.Len() < 2 || from < 0 {
		return NotFound
	}

	for i := min(from, src.Len()-2); i >= 0; i-- {
		if StartsWithWord(src, i, v) {
			return i
		}
	}

	return NotFound
}

// LastIndexOfQuad is the 4-byte fast path of LastIndexOf.
func LastIndexOfQuad(src bytesource.Source, from int64, v uint32) int64 {
	if src == nil || src.Len() < 4 || from < 0 {
		return NotFound
	}

	for i := min(from, src.Len()-4); i >= 0; i-- {
		if StartsWithQuad(src, i, v) {
			return i
		}
	}

	return NotFound
}
