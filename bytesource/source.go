// Package bytesource provides immutable random-access views over a range of bytes.
//
// Every Source is a (backing, start, length) triple. Slicing a Source returns a new view over the same backing storage
// so no content is ever duplicated; as a consequence, the backing storage (a heap slice, a memory-mapped file, or a
// remote io.ReaderAt) must outlive every view derived from it.
package bytesource

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrOutOfRange is returned (wrapped) by any operation whose offset or length violates the bounds of a Source.
var ErrOutOfRange = errors.New("out of range")

// Source is a read-only, length-known, randomly addressable range of bytes.
//
// Multi-byte reads are little-endian. All offset-taking methods except ReadAt fail with an error wrapping
// ErrOutOfRange if off < 0, off >= Len(), or the requested span exceeds Len(); values are never clamped. ReadAt
// follows io.ReaderAt instead so that a Source can feed an io.SectionReader.
type Source interface {
	io.ReaderAt

	// Len returns the number of bytes in the view.
	Len() int64

	// ByteAt returns the byte at the given offset.
	ByteAt(off int64) (byte, error)

	// WordAt returns the unsigned 2-byte little-endian value at the given offset.
	WordAt(off int64) (uint16, error)

	// QuadAt returns the unsigned 4-byte little-endian value at the given offset.
	QuadAt(off int64) (uint32, error)

	// CopyInto copies n bytes starting at off into dst[dstOff:dstOff+n].
	CopyInto(off int64, dst []byte, dstOff, n int) error

	// Slice returns a view of [start, end) that shares the same backing storage.
	//
	// Slice is O(1). It fails if start > end or either bound lies outside [0, Len()].
	Slice(start, end int64) (Source, error)
}

// backing is the storage shared by all views created from the same root.
//
// Offsets passed to backing are absolute and have already been bounds-checked by the view.
type backing interface {
	readAt(p []byte, off int64) error
	byteAt(off int64) (byte, error)
}

// view is the only Source implementation; the backing differs by constructor.
type view struct {
	b     backing
	start int64
	n     int64
}

func outOfRange(op string, off, n, size int64) error {
	return fmt.Errorf("%s %d byte(s) at offset %d of %d: %w", op, n, off, size, ErrOutOfRange)
}

func (v *view) check(op string, off, n int64) error {
	if off < 0 || n < 0 || off >= v.n || n > v.n-off {
		return outOfRange(op, off, n, v.n)
	}

	return nil
}

func (v *view) Len() int64 {
	return v.n
}

func (v *view) ByteAt(off int64) (byte, error) {
	if err := v.check("read", off, 1); err != nil {
		return 0, err
	}

	return v.b.byteAt(v.start + off)
}

func (v *view) WordAt(off int64) (uint16, error) {
	if err := v.check("read", off, 2); err != nil {
		return 0, err
	}

	var buf [2]byte
	if err := v.b.readAt(buf[:], v.start+off); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (v *view) QuadAt(off int64) (uint32, error) {
	if err := v.check("read", off, 4); err != nil {
		return 0, err
	}

	var buf [4]byte
	if err := v.b.readAt(buf[:], v.start+off); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (v *view) CopyInto(off int64, dst []byte, dstOff, n int) error {
	if dstOff < 0 || n < 0 || dstOff > len(dst) || n > len(dst)-dstOff {
		return outOfRange("copy into buffer", int64(dstOff), int64(n), int64(len(dst)))
	}
	if err := v.check("copy", off, int64(n)); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	return v.b.readAt(dst[dstOff:dstOff+n], v.start+off)
}

func (v *view) Slice(start, end int64) (Source, error) {
	if start < 0 || end < start || end > v.n {
		return nil, fmt.Errorf("slice [%d, %d) of %d: %w", start, end, v.n, ErrOutOfRange)
	}

	return &view{b: v.b, start: v.start + start, n: end - start}, nil
}

func (v *view) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, outOfRange("read", off, int64(len(p)), v.n)
	}
	if off >= v.n {
		return 0, io.EOF
	}

	m := min(int64(len(p)), v.n-off)
	if m > 0 {
		if err := v.b.readAt(p[:m], v.start+off); err != nil {
			return 0, err
		}
	}

	if m < int64(len(p)) {
		return int(m), io.EOF
	}

	return int(m), nil
}

// heap is a backing over an in-memory slice.
type heap []byte

func (h heap) readAt(p []byte, off int64) error {
	copy(p, h[off:])
	return nil
}

func (h heap) byteAt(off int64) (byte, error) {
	return h[off], nil
}

// FromBytes returns a Source over the given slice without copying it.
//
// The caller must not modify b while the Source or any of its slices is in use.
func FromBytes(b []byte) Source {
	return &view{b: heap(b), n: int64(len(b))}
}
