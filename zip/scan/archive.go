package scan

import (
	"fmt"
	"io"

	"github.com/nguyengg/zipscan/bytesource"
)

// Decompressor transforms compressed payloads keyed by ZIP compression method.
type Decompressor interface {
	// Decompress returns the entire decompressed content.
	Decompress(method uint16, compressed bytesource.Source, uncompressedSize uint64) ([]byte, error)

	// NewReader returns a reader of the decompressed content.
	NewReader(method uint16, compressed bytesource.Source, uncompressedSize uint64) (io.ReadCloser, error)
}

// Archive is the resolved structure of a ZIP file.
type Archive struct {
	// EOCD is the end of central directory record.
	EOCD *EndOfCentralDirectory

	// Entries are the central directory entries in the order they appear.
	Entries []*CentralDirectoryEntry

	// Warnings contains the recoverable problems found during resolution.
	//
	// Each is either a *TruncatedDirectoryError or a *UnresolvedLinkWarning.
	Warnings []error

	src    bytesource.Source
	locals map[*CentralDirectoryEntry]*LocalFileHeader
}

// Source returns the source the archive was resolved from.
func (a *Archive) Source() bytesource.Source {
	return a.src
}

// Local returns the local file header linked to the given entry.
//
// Returns false if the link could not be resolved.
func (a *Archive) Local(e *CentralDirectoryEntry) (*LocalFileHeader, bool) {
	lfh, ok := a.locals[e]
	return lfh, ok
}

// Lookup returns the first entry with the given name.
func (a *Archive) Lookup(name string) (*CentralDirectoryEntry, bool) {
	for _, e := range a.Entries {
		if e.Name() == name {
			return e, true
		}
	}

	return nil, false
}

// Unresolved returns the entries whose local file header could not be found.
func (a *Archive) Unresolved() []*CentralDirectoryEntry {
	var entries []*CentralDirectoryEntry
	for _, e := range a.Entries {
		if _, ok := a.locals[e]; !ok {
			entries = append(entries, e)
		}
	}

	return entries
}

// Payload returns the compressed payload of the given entry.
func (a *Archive) Payload(e *CentralDirectoryEntry) (bytesource.Source, error) {
	lfh, ok := a.locals[e]
	if !ok {
		return nil, fmt.Errorf("entry #%d (%q): %w", e.Index, e.Name(), ErrUnresolvedLink)
	}

	data, err := lfh.Data.Get()
	if err != nil {
		return nil, fmt.Errorf("entry #%d (%q): read payload error: %w", e.Index, e.Name(), err)
	}

	return data, nil
}

// ReadFile returns the decompressed content of the given entry.
//
// The compression method and uncompressed size come from the central directory entry, which is what consumers that
// open archives by their central directory trust.
func (a *Archive) ReadFile(e *CentralDirectoryEntry, d Decompressor) ([]byte, error) {
	data, err := a.Payload(e)
	if err != nil {
		return nil, err
	}

	b, err := d.Decompress(e.Method, data, uint64(e.UncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("entry #%d (%q): %w", e.Index, e.Name(), err)
	}

	return b, nil
}

// Open returns a reader of the decompressed content of the given entry.
func (a *Archive) Open(e *CentralDirectoryEntry, d Decompressor) (io.ReadCloser, error) {
	data, err := a.Payload(e)
	if err != nil {
		return nil, err
	}

	rc, err := d.NewReader(e.Method, data, uint64(e.UncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("entry #%d (%q): %w", e.Index, e.Name(), err)
	}

	return rc, nil
}
