// Package s3readerat provides random access to S3 objects using ranged GetObject.
package s3readerat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNegativeOffset is returned by ReadAt if the offset is negative.
var ErrNegativeOffset = errors.New("negative offset")

// ReaderAt uses ranged GetObject to implement io.ReaderAt.
type ReaderAt interface {
	io.ReaderAt

	// Size returns the size of the S3 object that was determined from the initial HeadObject.
	Size() int64
}

// Client abstracts the S3 APIs that are needed to implement ReaderAt.
type Client interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options customises New and Download.
type Options struct {
	// ModifyGetObjectInput can be used to modify the GetObject input parameters such as adding ExpectedBucketOwner.
	//
	// Its return value will be used to make the GetObject call.
	ModifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput

	// ModifyHeadObjectInput can be used to modify the HeadObject input parameters such as adding
	// ExpectedBucketOwner.
	//
	// Its return value will be used to make the HeadObject call. Used only by New.
	ModifyHeadObjectInput func(*s3.HeadObjectInput) *s3.HeadObjectInput

	// Concurrency is the number of parts downloaded in parallel. Used only by Download.
	//
	// By default, the manager.Downloader default is used.
	Concurrency int
}

func newOptions(optFns []func(*Options)) *Options {
	opts := &Options{
		ModifyGetObjectInput: func(input *s3.GetObjectInput) *s3.GetObjectInput {
			return input
		},
		ModifyHeadObjectInput: func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
			return input
		},
	}
	for _, fn := range optFns {
		fn(opts)
	}

	return opts
}

// New returns a ReaderAt with the given bucket and key.
//
// The client will be used to determine a valid size for the file. The given context is used for every subsequent
// GetObject call.
func New(ctx context.Context, client Client, bucket, key string, optFns ...func(*Options)) (ReaderAt, error) {
	opts := newOptions(optFns)

	headObjectOutput, err := client.HeadObject(ctx, opts.ModifyHeadObjectInput(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}))
	if err != nil {
		return nil, fmt.Errorf("determine file size error: %w", err)
	}

	return &readerAt{
		ctx:    ctx,
		client: client,
		bucket: bucket,
		key:    key,
		goiFn:  opts.ModifyGetObjectInput,
		size:   aws.ToInt64(headObjectOutput.ContentLength),
	}, nil
}

type readerAt struct {
	ctx         context.Context
	client      Client
	bucket, key string
	goiFn       func(*s3.GetObjectInput) *s3.GetObjectInput
	size        int64
}

func (r *readerAt) Size() int64 {
	return r.size
}

func (r *readerAt) ReadAt(p []byte, off int64) (n int, err error) {
	switch {
	case off < 0:
		return 0, ErrNegativeOffset
	case off >= r.size:
		return 0, io.EOF
	case len(p) == 0:
		return 0, nil
	}

	end := min(r.size, off+int64(len(p)))
	getObjectOutput, err := r.client.GetObject(r.ctx, r.goiFn(&s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end-1)),
	}))
	if err != nil {
		return 0, err
	}
	defer getObjectOutput.Body.Close()

	// a single Body.Read may return fewer bytes than requested even though more are coming.
	if n, err = io.ReadFull(getObjectOutput.Body, p[:end-off]); err != nil {
		return n, fmt.Errorf("read range [%d, %d) error: %w", off, end, err)
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}
