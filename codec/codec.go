// Package codec decompresses ZIP entry payloads keyed by their compression method.
package codec

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nguyengg/zipscan/bytesource"
)

// Compression methods as they appear in ZIP local file headers and central directory entries.
const (
	Store      uint16 = 0
	Deflate    uint16 = 8
	BZIP2      uint16 = 12
	LZMA       uint16 = 14
	ZstdLegacy uint16 = 20
	Zstd       uint16 = 93
	XZ         uint16 = 95
)

// MethodName returns a human-readable name of the compression method.
func MethodName(method uint16) string {
	switch method {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	case BZIP2:
		return "bzip2"
	case LZMA:
		return "lzma"
	case ZstdLegacy, Zstd:
		return "zstd"
	case XZ:
		return "xz"
	default:
		return fmt.Sprintf("method(%d)", method)
	}
}

var (
	// ErrUnsupportedMethod is returned if no Codec is registered for a compression method.
	ErrUnsupportedMethod = errors.New("unsupported compression method")

	// ErrDecodeFailure is returned if the payload cannot be decoded.
	ErrDecodeFailure = errors.New("decode failure")
)

// Codec creates decompressors for a specific compression method.
type Codec interface {
	// NewDecoder creates a decoder to decompress contents from the given io.Reader.
	//
	// uncompressedSize is the declared size of the decompressed content. Most codecs ignore it.
	NewDecoder(src io.Reader, uncompressedSize uint64) (io.ReadCloser, error)
}

// Registry maps compression methods to their Codec.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[uint16]Codec
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[uint16]Codec)}
}

// Default returns a new Registry with all supported methods registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Store, storeCodec{})
	r.Register(Deflate, DeflateCodec{})
	r.Register(BZIP2, Bzip2Codec{})
	r.Register(LZMA, LzmaCodec{})
	r.Register(ZstdLegacy, ZstdCodec{})
	r.Register(Zstd, ZstdCodec{})
	r.Register(XZ, XzCodec{})
	return r
}

// Register associates the method with the given Codec, replacing any existing one.
func (r *Registry) Register(method uint16, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[method] = c
}

// Lookup returns the Codec registered for the method.
func (r *Registry) Lookup(method uint16) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[method]
	return c, ok
}

// NewReader returns a reader of the decompressed content.
//
// Errors from reading the returned io.ReadCloser, other than io.EOF, wrap ErrDecodeFailure.
func (r *Registry) NewReader(method uint16, compressed bytesource.Source, uncompressedSize uint64) (io.ReadCloser, error) {
	c, ok := r.Lookup(method)
	if !ok {
		return nil, fmt.Errorf("method %d: %w", method, ErrUnsupportedMethod)
	}

	dec, err := c.NewDecoder(bytesource.NewReader(compressed), uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("create decoder for method %d error: %w: %w", method, ErrDecodeFailure, err)
	}

	return &decoder{ReadCloser: dec, method: method}, nil
}

// Decompress returns the entire decompressed content.
//
// Fails with ErrDecodeFailure if the content is not exactly uncompressedSize bytes long.
func (r *Registry) Decompress(method uint16, compressed bytesource.Source, uncompressedSize uint64) ([]byte, error) {
	rc, err := r.NewReader(method, compressed, uncompressedSize)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	// read one byte more than declared to detect oversized content.
	b, err := io.ReadAll(io.LimitReader(rc, int64(min(uncompressedSize, 1<<62))+1))
	if err != nil {
		return nil, err
	}

	if uint64(len(b)) != uncompressedSize {
		return nil, fmt.Errorf("method %d: %w: expected %d bytes, got at least %d", method, ErrDecodeFailure, uncompressedSize, len(b))
	}

	return b, nil
}

// decoder wraps read errors with ErrDecodeFailure.
type decoder struct {
	io.ReadCloser
	method uint16
}

func (d *decoder) Read(p []byte) (int, error) {
	n, err := d.ReadCloser.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("decode method %d error: %w: %w", d.method, ErrDecodeFailure, err)
	}

	return n, err
}
