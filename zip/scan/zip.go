package scan

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/nguyengg/zipscan/bytesource"
	"github.com/nguyengg/zipscan/lazy"
)

// CentralDirectoryEntry models a central directory file header.
//
// FileName, Extra, and Comment are views over the same source the entry was resolved from.
type CentralDirectoryEntry struct {
	// Index is the position of the entry in the central directory.
	Index int
	// Offset is the absolute offset of the entry in the source.
	Offset int64

	Signature         uint32
	CreatorVersion    uint16
	ReaderVersion     uint16
	Flags             uint16
	Method            uint16
	ModifiedTime      uint16
	ModifiedDate      uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	FileNameLength    uint16
	ExtraFieldLength  uint16
	CommentLength     uint16
	DiskNumberStart   uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32

	FileName bytesource.Source
	Extra    bytesource.Source
	Comment  bytesource.Source

	// Raw covers the entire entry including its variable-size fields.
	Raw bytesource.Source
}

type cenFixed struct {
	Signature         uint32
	CreatorVersion    uint16
	ReaderVersion     uint16
	Flags             uint16
	Method            uint16
	ModifiedTime      uint16
	ModifiedDate      uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	FileNameLength    uint16
	ExtraFieldLength  uint16
	FileCommentLength uint16
	DiskNumberStart   uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32
}

// Name returns the file name as a string.
func (e *CentralDirectoryEntry) Name() string {
	s, _ := bytesource.String(e.FileName)
	return s
}

// Modified returns the last modified time from the MS-DOS date and time fields.
func (e *CentralDirectoryEntry) Modified() time.Time {
	return msDosTimeToTime(e.ModifiedDate, e.ModifiedTime)
}

// IsDir returns true if the name ends with a slash.
func (e *CentralDirectoryEntry) IsDir() bool {
	return strings.HasSuffix(e.Name(), "/")
}

// HasDataDescriptor returns true if FlagDataDescriptor is set.
func (e *CentralDirectoryEntry) HasDataDescriptor() bool {
	return e.Flags&FlagDataDescriptor != 0
}

// parseCentralDirectoryEntry decodes the central directory file header at the given offset.
//
// Returns an error if the signature is missing or if the record including its variable-size fields overruns src.
func parseCentralDirectoryEntry(src bytesource.Source, off int64, index int) (*CentralDirectoryEntry, error) {
	fixed, err := src.Slice(off, off+CentralDirectoryHeaderLen)
	if err != nil {
		return nil, fmt.Errorf("read central directory entry at %d error: %w", off, err)
	}

	var data cenFixed
	if err = binary.Read(bytesource.NewReader(fixed), binary.LittleEndian, &data); err != nil {
		return nil, fmt.Errorf("unmarshal central directory entry at %d error: %w", off, err)
	}
	if data.Signature != CentralDirectorySignature {
		return nil, fmt.Errorf("mismatched central directory signature at %d, got 0x%08x", off, data.Signature)
	}

	var (
		nameStart  = off + CentralDirectoryHeaderLen
		extraStart = nameStart + int64(data.FileNameLength)
		cmtStart   = extraStart + int64(data.ExtraFieldLength)
		end        = cmtStart + int64(data.FileCommentLength)
	)

	raw, err := src.Slice(off, end)
	if err != nil {
		return nil, fmt.Errorf("read central directory entry variable-size data at %d error: %w", off, err)
	}

	// all three are within raw so these cannot fail.
	name, _ := src.Slice(nameStart, extraStart)
	extra, _ := src.Slice(extraStart, cmtStart)
	comment, _ := src.Slice(cmtStart, end)

	return &CentralDirectoryEntry{
		Index:             index,
		Offset:            off,
		Signature:         data.Signature,
		CreatorVersion:    data.CreatorVersion,
		ReaderVersion:     data.ReaderVersion,
		Flags:             data.Flags,
		Method:            data.Method,
		ModifiedTime:      data.ModifiedTime,
		ModifiedDate:      data.ModifiedDate,
		CRC32:             data.CRC32,
		CompressedSize:    data.CompressedSize,
		UncompressedSize:  data.UncompressedSize,
		FileNameLength:    data.FileNameLength,
		ExtraFieldLength:  data.ExtraFieldLength,
		CommentLength:     data.FileCommentLength,
		DiskNumberStart:   data.DiskNumberStart,
		InternalAttrs:     data.InternalAttrs,
		ExternalAttrs:     data.ExternalAttrs,
		LocalHeaderOffset: data.LocalHeaderOffset,
		FileName:          name,
		Extra:             extra,
		Comment:           comment,
		Raw:               raw,
	}, nil
}

// LocalFileHeader models a local file header and lazily its payload.
type LocalFileHeader struct {
	// Offset is the absolute offset of the header in the source.
	Offset int64

	Signature        uint32
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FileNameLength   uint16
	ExtraFieldLength uint16

	FileName bytesource.Source
	Extra    bytesource.Source

	// Raw covers the header including its variable-size fields.
	Raw bytesource.Source

	// DataOffset is the absolute offset of the payload, immediately after the extra field.
	DataOffset int64
	// DataSize is the size of the compressed payload.
	//
	// This comes from the central directory entry instead of CompressedSize if FlagDataDescriptor is set.
	DataSize int64
	// Data is the compressed payload as a view over the source, computed on first access.
	//
	// Get fails with bytesource.ErrOutOfRange if the declared payload overruns the source.
	Data *lazy.Memo[bytesource.Source]
}

type lfhFixed struct {
	Signature        uint32
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FileNameLength   uint16
	ExtraFieldLength uint16
}

// Name returns the file name as a string.
func (h *LocalFileHeader) Name() string {
	s, _ := bytesource.String(h.FileName)
	return s
}

// Modified returns the last modified time from the MS-DOS date and time fields.
func (h *LocalFileHeader) Modified() time.Time {
	return msDosTimeToTime(h.ModifiedDate, h.ModifiedTime)
}

// HasDataDescriptor returns true if FlagDataDescriptor is set.
func (h *LocalFileHeader) HasDataDescriptor() bool {
	return h.Flags&FlagDataDescriptor != 0
}

// parseLocalFileHeader decodes the local file header at the given offset.
//
// The payload is not validated here; Data is left nil for the caller to fill in once the payload size is known.
func parseLocalFileHeader(src bytesource.Source, off int64) (*LocalFileHeader, error) {
	fixed, err := src.Slice(off, off+LocalFileHeaderLen)
	if err != nil {
		return nil, fmt.Errorf("read local file header at %d error: %w", off, err)
	}

	var data lfhFixed
	if err = binary.Read(bytesource.NewReader(fixed), binary.LittleEndian, &data); err != nil {
		return nil, fmt.Errorf("unmarshal local file header at %d error: %w", off, err)
	}
	if data.Signature != LocalFileHeaderSignature {
		return nil, fmt.Errorf("mismatched local file header signature at %d, got 0x%08x", off, data.Signature)
	}

	var (
		nameStart  = off + LocalFileHeaderLen
		extraStart = nameStart + int64(data.FileNameLength)
		end        = extraStart + int64(data.ExtraFieldLength)
	)

	raw, err := src.Slice(off, end)
	if err != nil {
		return nil, fmt.Errorf("read local file header variable-size data at %d error: %w", off, err)
	}

	name, _ := src.Slice(nameStart, extraStart)
	extra, _ := src.Slice(extraStart, end)

	return &LocalFileHeader{
		Offset:           off,
		Signature:        data.Signature,
		ReaderVersion:    data.ReaderVersion,
		Flags:            data.Flags,
		Method:           data.Method,
		ModifiedTime:     data.ModifiedTime,
		ModifiedDate:     data.ModifiedDate,
		CRC32:            data.CRC32,
		CompressedSize:   data.CompressedSize,
		UncompressedSize: data.UncompressedSize,
		FileNameLength:   data.FileNameLength,
		ExtraFieldLength: data.ExtraFieldLength,
		FileName:         name,
		Extra:            extra,
		Raw:              raw,
		DataOffset:       end,
	}, nil
}

// msDosTimeToTime converts an MS-DOS date and time into a time.Time.
// The resolution is 2s.
// See: https://learn.microsoft.com/en-us/windows/win32/api/winbase/nf-winbase-dosdatetimetofiletime
//
// taken from https://go.dev/src/archive/zip/struct.go.
func msDosTimeToTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		// date bits 0-4: day of month; 5-8: month; 9-15: years since 1980
		int(dosDate>>9+1980),
		time.Month(dosDate>>5&0xf),
		int(dosDate&0x1f),

		// time bits 0-4: second/2; 5-10: minute; 11-15: hour
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f*2),
		0, // nanoseconds

		time.UTC,
	)
}
