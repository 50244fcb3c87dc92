package config

import (
	"github.com/aws/aws-sdk-go-v2/aws"
)

// ScanConfig contains settings for resolving archives.
//
// Zero values mean the library defaults should be used.
type ScanConfig struct {
	// MaxLocalHeaderSearch maps to scan.Options.MaxLocalHeaderSearch.
	MaxLocalHeaderSearch int64
	// BlockSize maps to bytesource.PagedOptions.BlockSize for remote sources.
	BlockSize int
	// CacheBlocks maps to bytesource.PagedOptions.CacheBlocks for remote sources.
	CacheBlocks int
}

// ForScan returns configuration from the [scan] section.
func (l *Loader) ForScan() (c ScanConfig) {
	sec, err := l.file().GetSection("scan")
	if err != nil {
		return c
	}

	c.MaxLocalHeaderSearch = sec.Key("max-local-header-search").MustInt64(0)
	c.BlockSize = sec.Key("block-size").MustInt(0)
	c.CacheBlocks = sec.Key("cache-blocks").MustInt(0)

	return
}

// ForScan calls Loader.ForScan on the DefaultLoader instance.
func ForScan() ScanConfig {
	return DefaultLoader.ForScan()
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
}

// ForBucket returns configuration for a specific bucket.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	sec, err := l.file().GetSection("s3://" + bucket)
	if err != nil {
		return c
	}

	c.Bucket = bucket

	c.AWSProfile = sec.Key("aws-profile").Value()

	if sec.HasKey("expected-bucket-owner") {
		c.ExpectedBucketOwner = aws.String(sec.Key("expected-bucket-owner").Value())
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) (c BucketConfig) {
	return DefaultLoader.ForBucket(bucket)
}
