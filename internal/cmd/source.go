package cmd

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/zipscan"
	"github.com/nguyengg/zipscan/bytesource"
	"github.com/nguyengg/zipscan/internal"
	"github.com/nguyengg/zipscan/internal/config"
	"github.com/nguyengg/zipscan/s3readerat"
	"github.com/nguyengg/zipscan/zip/scan"
)

// openSource opens the named local file or S3 URI using settings from the .zipscan file.
func openSource(ctx context.Context, name string, download bool) (bytesource.Source, io.Closer, error) {
	c := config.ForScan()

	return zipscan.OpenSource(ctx, name, func(opts *zipscan.SourceOptions) {
		opts.NewS3Client = func(ctx context.Context, bucket string) (s3readerat.Client, error) {
			return config.NewS3ClientForBucket(ctx, bucket)
		}
		opts.Download = download
		opts.BlockSize = c.BlockSize
		opts.CacheBlocks = c.CacheBlocks

		bucket, _, err := zipscan.ParseS3URI(name)
		if err != nil {
			return
		}

		if owner := config.ForBucket(bucket).ExpectedBucketOwner; owner != nil {
			opts.ModifyGetObjectInput = func(input *s3.GetObjectInput) *s3.GetObjectInput {
				input.ExpectedBucketOwner = owner
				return input
			}
			opts.ModifyHeadObjectInput = func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
				input.ExpectedBucketOwner = owner
				return input
			}
		}
	})
}

// resolve calls scan.Resolve with the search bound from the flag, or from the .zipscan file if the flag is not given.
//
// Warnings are logged with the context's logger if logWarnings is true.
func resolve(ctx context.Context, src bytesource.Source, maxSearch int64, logWarnings bool) (*scan.Archive, error) {
	if maxSearch <= 0 {
		maxSearch = config.ForScan().MaxLocalHeaderSearch
	}

	return scan.Resolve(src, func(opts *scan.Options) {
		opts.MaxLocalHeaderSearch = maxSearch
		if logWarnings {
			opts.Logger = internal.MustLogger(ctx)
		}
	})
}
