package bytesource

import (
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultBlockSize is the default value of [PagedOptions.BlockSize].
	DefaultBlockSize = 64 * 1024

	// DefaultCacheBlocks is the default value of [PagedOptions.CacheBlocks].
	DefaultCacheBlocks = 64
)

// PagedOptions customises FromReaderAt.
type PagedOptions struct {
	// BlockSize is the size of each read issued against the underlying io.ReaderAt.
	//
	// By default, DefaultBlockSize is used.
	BlockSize int

	// CacheBlocks is the maximum number of blocks kept in memory.
	//
	// By default, DefaultCacheBlocks is used.
	CacheBlocks int
}

// paged is a backing that reads fixed-size blocks lazily and keeps the most recently used ones.
type paged struct {
	r         io.ReaderAt
	size      int64
	blockSize int64
	cache     *lru.Cache[int64, []byte]
}

// FromReaderAt returns a Source over the first size bytes of r.
//
// Content is fetched in blocks on first access and kept in an LRU cache, which makes this suitable for sources where
// every ReadAt is expensive such as ranged S3 reads. The Source is safe for concurrent use if r is.
func FromReaderAt(r io.ReaderAt, size int64, optFns ...func(*PagedOptions)) (Source, error) {
	opts := &PagedOptions{
		BlockSize:   DefaultBlockSize,
		CacheBlocks: DefaultCacheBlocks,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	if size < 0 {
		return nil, fmt.Errorf("invalid size %d: %w", size, ErrOutOfRange)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.CacheBlocks <= 0 {
		opts.CacheBlocks = DefaultCacheBlocks
	}

	cache, err := lru.New[int64, []byte](opts.CacheBlocks)
	if err != nil {
		return nil, fmt.Errorf("create block cache error: %w", err)
	}

	return &view{
		b: &paged{
			r:         r,
			size:      size,
			blockSize: int64(opts.BlockSize),
			cache:     cache,
		},
		n: size,
	}, nil
}

func (p *paged) block(i int64) ([]byte, error) {
	if b, ok := p.cache.Get(i); ok {
		return b, nil
	}

	off := i * p.blockSize
	b := make([]byte, min(p.blockSize, p.size-off))
	switch n, err := p.r.ReadAt(b, off); {
	case n == len(b):
	case err == nil || errors.Is(err, io.EOF):
		return nil, fmt.Errorf("read block %d error: %w", i, io.ErrUnexpectedEOF)
	default:
		return nil, fmt.Errorf("read block %d error: %w", i, err)
	}

	p.cache.Add(i, b)
	return b, nil
}

func (p *paged) readAt(dst []byte, off int64) error {
	for len(dst) > 0 {
		b, err := p.block(off / p.blockSize)
		if err != nil {
			return err
		}

		n := copy(dst, b[off%p.blockSize:])
		dst, off = dst[n:], off+int64(n)
	}

	return nil
}

func (p *paged) byteAt(off int64) (byte, error) {
	b, err := p.block(off / p.blockSize)
	if err != nil {
		return 0, err
	}

	return b[off%p.blockSize], nil
}
