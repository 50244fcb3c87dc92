// Package zipscan opens local or S3 files as byte sources for resolving ZIP-family archives.
package zipscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/zipscan/bytesource"
	"github.com/nguyengg/zipscan/s3readerat"
)

// ErrInvalidS3URI is returned by ParseS3URI if the URI is not in the form "s3://bucket/key".
var ErrInvalidS3URI = errors.New("invalid S3 URI")

// SourceOptions customises OpenSource.
type SourceOptions struct {
	// NewS3Client is used to create the S3 client for a bucket when opening "s3://" URIs.
	//
	// Required only if an S3 URI is given.
	NewS3Client func(ctx context.Context, bucket string) (s3readerat.Client, error)

	// ModifyGetObjectInput is passed to s3readerat.Options.
	ModifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput

	// ModifyHeadObjectInput is passed to s3readerat.Options.
	ModifyHeadObjectInput func(*s3.HeadObjectInput) *s3.HeadObjectInput

	// Download causes S3 objects to be downloaded into memory in full instead of being read in blocks on demand.
	Download bool

	// BlockSize is passed to bytesource.PagedOptions when reading S3 objects on demand.
	BlockSize int

	// CacheBlocks is passed to bytesource.PagedOptions when reading S3 objects on demand.
	CacheBlocks int
}

// IsS3URI returns true if name starts with "s3://".
func IsS3URI(name string) bool {
	return strings.HasPrefix(name, "s3://")
}

// ParseS3URI splits "s3://bucket/key" into bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("%w: %q does not start with s3://", ErrInvalidS3URI, uri)
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q must be in the form s3://bucket/key", ErrInvalidS3URI, uri)
	}

	return bucket, key, nil
}

// OpenSource opens the named local file or "s3://bucket/key" URI as a bytesource.Source.
//
// Local files are memory-mapped where the platform supports it. S3 objects are read in blocks on demand using ranged
// GetObject unless SourceOptions.Download is true. The returned io.Closer must be closed once the Source and every view
// derived from it are no longer in use.
func OpenSource(ctx context.Context, name string, optFns ...func(*SourceOptions)) (bytesource.Source, io.Closer, error) {
	opts := &SourceOptions{}
	for _, fn := range optFns {
		fn(opts)
	}

	if !IsS3URI(name) {
		f, err := bytesource.Open(name)
		if err != nil {
			return nil, nil, err
		}

		return f, f, nil
	}

	bucket, key, err := ParseS3URI(name)
	if err != nil {
		return nil, nil, err
	}

	if opts.NewS3Client == nil {
		return nil, nil, fmt.Errorf("open %s error: no S3 client factory", name)
	}

	client, err := opts.NewS3Client(ctx, bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("create S3 client error: %w", err)
	}

	s3opts := func(o *s3readerat.Options) {
		if opts.ModifyGetObjectInput != nil {
			o.ModifyGetObjectInput = opts.ModifyGetObjectInput
		}
		if opts.ModifyHeadObjectInput != nil {
			o.ModifyHeadObjectInput = opts.ModifyHeadObjectInput
		}
	}

	if opts.Download {
		data, err := s3readerat.Download(ctx, client, bucket, key, s3opts)
		if err != nil {
			return nil, nil, err
		}

		return bytesource.FromBytes(data), nopCloser{}, nil
	}

	r, err := s3readerat.New(ctx, client, bucket, key, s3opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s error: %w", name, err)
	}

	src, err := bytesource.FromReaderAt(r, r.Size(), func(o *bytesource.PagedOptions) {
		if opts.BlockSize > 0 {
			o.BlockSize = opts.BlockSize
		}
		if opts.CacheBlocks > 0 {
			o.CacheBlocks = opts.CacheBlocks
		}
	})
	if err != nil {
		return nil, nil, err
	}

	return src, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}
