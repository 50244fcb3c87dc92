// Package scan resolves the structure of a ZIP-family archive (ZIP, JAR, APK) from a random-access byte source.
//
// Resolution follows what lenient real-world readers do rather than what the format strictly allows: the EOCD record
// is found by scanning backwards, a central directory whose declared offset is wrong is located by other means, a
// truncated central directory yields the entries that could be read, and a local file header whose declared offset
// is corrupted is searched for by name. Recoverable problems are reported as [Archive.Warnings] rather than errors.
package scan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/nguyengg/zipscan/bytesource"
	"github.com/nguyengg/zipscan/lazy"
	"github.com/nguyengg/zipscan/pattern"
)

var (
	// ErrNoEOCDFound is returned by Resolve if no EOCD signature was found.
	ErrNoEOCDFound = errors.New("end of central directory not found; most likely not a ZIP file")

	// ErrUnresolvedLink is returned when requesting content of an entry whose local file header could not be found.
	ErrUnresolvedLink = errors.New("local file header not found")
)

// TruncatedDirectoryError is the warning recorded when the central directory contains fewer entries than declared.
type TruncatedDirectoryError struct {
	// Declared is the entry count declared by the EOCD record.
	Declared int
	// Found is the number of entries actually read.
	Found int
	// Offset is where the next entry was expected.
	Offset int64
	// Err is the reason the walk stopped.
	Err error
}

func (e *TruncatedDirectoryError) Error() string {
	return fmt.Sprintf("central directory truncated: declared %d entries, found %d; stopped at offset %d: %v", e.Declared, e.Found, e.Offset, e.Err)
}

func (e *TruncatedDirectoryError) Unwrap() error {
	return e.Err
}

// UnresolvedLinkWarning is the warning recorded when an entry's local file header could not be found.
type UnresolvedLinkWarning struct {
	Entry *CentralDirectoryEntry
}

func (w *UnresolvedLinkWarning) Error() string {
	return fmt.Sprintf("entry #%d (%q): no local file header at declared offset %d or by search", w.Entry.Index, w.Entry.Name(), w.Entry.LocalHeaderOffset)
}

func (w *UnresolvedLinkWarning) Unwrap() error {
	return ErrUnresolvedLink
}

// Options customises Resolve.
type Options struct {
	// MaxLocalHeaderSearch limits how far from its declared offset a local file header may be found when the declared
	// offset does not point to one.
	//
	// By default, any local file header with a matching name before the start of the central directory is accepted,
	// preferring the first one at or after the declared offset.
	MaxLocalHeaderSearch int64

	// Logger is used to log warnings as they are found.
	//
	// By default, nothing is logged.
	Logger *log.Logger
}

// Resolve resolves the structure of the archive in src.
//
// The only fatal error is ErrNoEOCDFound, or any error wrapping bytesource.ErrOutOfRange if the EOCD record itself cannot
// be read. Every other problem is recorded in [Archive.Warnings] and resolution continues.
//
// The returned Archive and everything reachable from it are views over src; src must remain valid for as long as they
// are in use.
func Resolve(src bytesource.Source, optFns ...func(*Options)) (*Archive, error) {
	opts := &Options{}
	for _, fn := range optFns {
		fn(opts)
	}

	eocd, err := findEOCD(src)
	if err != nil {
		return nil, err
	}

	r := &resolver{
		src:  src,
		opts: opts,
		a: &Archive{
			EOCD:   eocd,
			src:    src,
			locals: make(map[*CentralDirectoryEntry]*LocalFileHeader),
		},
	}

	eocd.CentralDirectoryStart = r.locateCentralDirectory()
	r.walkCentralDirectory()
	for _, e := range r.a.Entries {
		r.resolveLocalFileHeader(e)
	}

	return r.a, nil
}

type resolver struct {
	src  bytesource.Source
	opts *Options
	a    *Archive

	// byName is built by localHeadersByName.
	byName map[string][]int64
}

func (r *resolver) warn(err error) {
	r.a.Warnings = append(r.a.Warnings, err)
	if r.opts.Logger != nil {
		r.opts.Logger.Printf("warning: %v", err)
	}
}

// locateCentralDirectory returns the offset of the first central directory entry.
//
// The declared offset is used if a central directory signature is there. Otherwise, the directory is assumed to end
// right at the EOCD record, which is the case when data has been prepended to the archive. Failing that, the first
// central directory signature found from the start of src that precedes the EOCD record is used.
func (r *resolver) locateCentralDirectory() int64 {
	eocd := r.a.EOCD
	declared := int64(eocd.CDOffset)

	if eocd.CDCount == 0 && declared <= eocd.Offset {
		return declared
	}

	// a signature at the declared offset is trusted even if CDOffset+CDSize overruns the EOCD record. The size is the
	// field most often left stale by tools that rewrite archives, and the walk is bounded by the entry count instead.
	if declared < eocd.Offset && pattern.StartsWithQuad(r.src, declared, CentralDirectorySignature) {
		return declared
	}

	if adjusted := eocd.Offset - int64(eocd.CDSize); adjusted >= 0 && pattern.StartsWithQuad(r.src, adjusted, CentralDirectorySignature) {
		return adjusted
	}

	if i := pattern.IndexOfQuad(r.src, 0, CentralDirectorySignature); i != pattern.NotFound && i < eocd.Offset {
		return i
	}

	// nothing found; the walk will come up empty and report the truncation.
	return eocd.Offset
}

// walkCentralDirectory reads entries sequentially until the declared count is reached or an entry cannot be read.
func (r *resolver) walkCentralDirectory() {
	var (
		declared = int(r.a.EOCD.CDCount)
		off      = r.a.EOCD.CentralDirectoryStart
		err      error
	)

	for i := 0; i < declared; i++ {
		var e *CentralDirectoryEntry
		if e, err = parseCentralDirectoryEntry(r.src, off, i); err != nil {
			break
		}

		r.a.Entries = append(r.a.Entries, e)
		off += e.Raw.Len()
	}

	if n := len(r.a.Entries); n < declared {
		r.warn(&TruncatedDirectoryError{Declared: declared, Found: n, Offset: off, Err: err})
	}
}

// resolveLocalFileHeader links the entry to its local file header, or records an UnresolvedLinkWarning.
func (r *resolver) resolveLocalFileHeader(e *CentralDirectoryEntry) {
	var (
		declared = int64(e.LocalHeaderOffset)
		delta    = r.a.EOCD.CentralDirectoryStart - int64(r.a.EOCD.CDOffset)
		lfh      *LocalFileHeader
		err      error
	)

	// if the central directory was relocated, every local file header most likely moved by the same amount.
	if delta != 0 {
		lfh, err = parseLocalFileHeader(r.src, declared+delta)
	}
	if lfh == nil {
		lfh, err = parseLocalFileHeader(r.src, declared)
	}
	if err != nil {
		if lfh = r.searchLocalFileHeader(e, declared+delta); lfh == nil {
			r.warn(&UnresolvedLinkWarning{Entry: e})
			return
		}
	}

	lfh.DataSize = int64(lfh.CompressedSize)
	if lfh.HasDataDescriptor() {
		lfh.DataSize = int64(e.CompressedSize)
	}

	src, start, end := r.src, lfh.DataOffset, lfh.DataOffset+lfh.DataSize
	lfh.Data = lazy.New(func() (bytesource.Source, error) {
		return src.Slice(start, end)
	})

	r.a.locals[e] = lfh
}

// searchLocalFileHeader finds the local file header whose name matches the entry, closest to the given offset.
//
// Candidates at or after the offset are preferred; failing that, the nearest one before it is used. If the offset is
// outside [0, CentralDirectoryStart), the search starts from 0 instead. MaxLocalHeaderSearch bounds the distance from
// the offset in either direction.
func (r *resolver) searchLocalFileHeader(e *CentralDirectoryEntry, from int64) *LocalFileHeader {
	end := min(r.a.EOCD.CentralDirectoryStart, r.src.Len())
	if from < 0 || from >= end {
		from = 0
	}

	name, err := bytesource.String(e.FileName)
	if err != nil {
		return nil
	}

	offsets := r.localHeadersByName()[name]
	m := r.opts.MaxLocalHeaderSearch

	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] >= from })

	// ahead, the signature must fit within [from, from+m).
	if i < len(offsets) && (m <= 0 || offsets[i]+4 <= from+m) {
		if lfh, err := parseLocalFileHeader(r.src, offsets[i]); err == nil {
			return lfh
		}
	}

	if i > 0 && (m <= 0 || from-offsets[i-1] <= m) {
		if lfh, err := parseLocalFileHeader(r.src, offsets[i-1]); err == nil {
			return lfh
		}
	}

	return nil
}

// localHeadersByName indexes every parsable local file header in [0, CentralDirectoryStart) by name, in ascending
// offset order.
//
// The index is built once on first use so that resolving many entries with misplaced local file headers costs a
// single pass over the archive rather than one pass per entry.
func (r *resolver) localHeadersByName() map[string][]int64 {
	if r.byName != nil {
		return r.byName
	}

	r.byName = make(map[string][]int64)
	end := min(r.a.EOCD.CentralDirectoryStart, r.src.Len())

	sig := make([]byte, 4)
	binary.LittleEndian.PutUint32(sig, LocalFileHeaderSignature)

	// consecutive chunks overlap by len(sig)-1 bytes so that signatures straddling a boundary are seen; only matches
	// starting before the overlap are taken from each chunk.
	buf := make([]byte, localHeaderScanChunk+len(sig)-1)
	for off := int64(0); off < end; off += localHeaderScanChunk {
		n := int(min(int64(len(buf)), end-off))
		if err := r.src.CopyInto(off, buf, 0, n); err != nil {
			break
		}

		for b, i := buf[:n], 0; i < min(n, localHeaderScanChunk); {
			j := bytes.Index(b[i:], sig)
			if j < 0 || i+j >= localHeaderScanChunk {
				break
			}

			pos := off + int64(i+j)
			i += j + 1

			lfh, err := parseLocalFileHeader(r.src, pos)
			if err != nil {
				continue
			}

			name, err := bytesource.String(lfh.FileName)
			if err != nil {
				continue
			}

			r.byName[name] = append(r.byName[name], pos)
		}
	}

	return r.byName
}

const localHeaderScanChunk = 64 * 1024
