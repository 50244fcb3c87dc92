package scan

import (
	"encoding/binary"
	"fmt"

	"github.com/nguyengg/zipscan/bytesource"
	"github.com/nguyengg/zipscan/pattern"
)

// EndOfCentralDirectory models the end of central directory record of a ZIP file.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#End_of_central_directory_record_(EOCD).
type EndOfCentralDirectory struct {
	// Offset is the absolute offset of the record in the source.
	Offset int64
	// Signature is always EndOfCentralDirectorySignature.
	Signature uint32
	// DiskNumber is number of this disk (or 0xffff for ZIP64).
	DiskNumber uint16
	// CDDiskNumber is disk where central directory starts (or 0xffff for ZIP64).
	CDDiskNumber uint16
	// CDCountOnDisk is the number of central directory records on this disk (or 0xffff for ZIP64).
	CDCountOnDisk uint16
	// CDCount is the total number of central directory records (or 0xffff for ZIP64).
	CDCount uint16
	// CDSize is size of central directory (bytes) (or 0xffffffff for ZIP64).
	CDSize uint32
	// CDOffset is the declared offset of start of central directory, relative to start of archive (or 0xffffffff for
	// ZIP64).
	CDOffset uint32
	// CommentLength is the declared length of Comment.
	CommentLength uint16
	// Comment is the comment section of the EOCD.
	//
	// If CommentLength runs past the end of the source, Comment only covers the available bytes.
	Comment bytesource.Source

	// CentralDirectoryStart is the offset where the central directory was actually found.
	//
	// This differs from CDOffset if the archive has been prepended with other data, or if CDOffset is corrupted.
	CentralDirectoryStart int64

	// Raw is the fixed-size part of the record.
	Raw bytesource.Source
}

type eocdFixed struct {
	Signature     uint32
	DiskNumber    uint16
	CDDiskNumber  uint16
	CDCountOnDisk uint16
	CDCount       uint16
	CDSize        uint32
	CDOffset      uint32
	CommentLength uint16
}

// findEOCD searches the given src backwards for the EOCD record.
//
// Only the last MaxCommentLength+EndOfCentralDirectoryLen bytes are searched. A signature is only considered if the
// fixed-size part of the record fits before the end of src; the first such match from the end wins even if an earlier
// one exists, since that's how lenient readers resolve a crafted comment.
func findEOCD(src bytesource.Source) (*EndOfCentralDirectory, error) {
	n := src.Len()
	if n < EndOfCentralDirectoryLen {
		return nil, ErrNoEOCDFound
	}

	start := max(0, n-(MaxCommentLength+EndOfCentralDirectoryLen))
	window, err := src.Slice(start, n)
	if err != nil {
		return nil, fmt.Errorf("find EOCD: %w", err)
	}

	i := pattern.LastIndexOfQuad(window, window.Len()-EndOfCentralDirectoryLen, EndOfCentralDirectorySignature)
	if i == pattern.NotFound {
		return nil, ErrNoEOCDFound
	}

	return parseEOCD(src, start+i)
}

// parseEOCD decodes the EOCD record at the given offset.
func parseEOCD(src bytesource.Source, off int64) (*EndOfCentralDirectory, error) {
	raw, err := src.Slice(off, off+EndOfCentralDirectoryLen)
	if err != nil {
		return nil, fmt.Errorf("read EOCD at %d error: %w", off, err)
	}

	var data eocdFixed
	if err = binary.Read(bytesource.NewReader(raw), binary.LittleEndian, &data); err != nil {
		return nil, fmt.Errorf("unmarshal EOCD at %d error: %w", off, err)
	}
	if data.Signature != EndOfCentralDirectorySignature {
		return nil, fmt.Errorf("mismatched EOCD signature at %d, got 0x%08x", off, data.Signature)
	}

	commentStart := off + EndOfCentralDirectoryLen
	comment, err := src.Slice(commentStart, min(commentStart+int64(data.CommentLength), src.Len()))
	if err != nil {
		return nil, fmt.Errorf("read EOCD comment error: %w", err)
	}

	return &EndOfCentralDirectory{
		Offset:        off,
		Signature:     data.Signature,
		DiskNumber:    data.DiskNumber,
		CDDiskNumber:  data.CDDiskNumber,
		CDCountOnDisk: data.CDCountOnDisk,
		CDCount:       data.CDCount,
		CDSize:        data.CDSize,
		CDOffset:      data.CDOffset,
		CommentLength: data.CommentLength,
		Comment:       comment,
		Raw:           raw,
	}, nil
}
