package s3readerat

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Download fetches the entire S3 object into memory using manager.Downloader.
//
// This is preferred over New when most of the object will be read anyway, since the downloader fetches parts in
// parallel instead of issuing one GetObject per ReadAt.
func Download(ctx context.Context, client manager.DownloadAPIClient, bucket, key string, optFns ...func(*Options)) ([]byte, error) {
	opts := newOptions(optFns)

	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		if opts.Concurrency > 0 {
			d.Concurrency = opts.Concurrency
		}
	})

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := downloader.Download(ctx, buf, opts.ModifyGetObjectInput(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})); err != nil {
		return nil, fmt.Errorf("download s3://%s/%s error: %w", bucket, key, err)
	}

	return buf.Bytes(), nil
}
