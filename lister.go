package signet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ListObjectsAPI is the subset of the S3 API the lister uses.
type ListObjectsAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var _ ListObjectsAPI = (*s3.Client)(nil)

// BucketListing is the response body of GET /bucket/list.
type BucketListing struct {
	Objects []ObjectInfo `json:"objects"`
}

// Lister pages through a bucket's object listing and assembles the full
// result before returning. Pages are fetched sequentially; there is no
// partial or streaming response.
type Lister struct {
	newClient     func(StorageCredentials) ListObjectsAPI
	defaultBucket string
}

// NewLister returns a Lister backed by real S3 clients. defaultBucket is
// used when a request names no bucket; it may be empty.
func NewLister(defaultBucket string) *Lister {
	return &Lister{
		newClient:     func(creds StorageCredentials) ListObjectsAPI { return NewS3Client(creds) },
		defaultBucket: defaultBucket,
	}
}

// NewListerWithClient returns a Lister using the supplied factory.
// Intended for tests.
func NewListerWithClient(defaultBucket string, newClient func(StorageCredentials) ListObjectsAPI) *Lister {
	return &Lister{newClient: newClient, defaultBucket: defaultBucket}
}

// List returns every object under prefix in bucket. An empty bucket falls
// back to the configured default; if neither is set, ErrBucketNotSpecified.
// Upstream failures are logged and surfaced as ErrListFailed.
func (l *Lister) List(ctx context.Context, creds StorageCredentials, bucket, prefix string) (BucketListing, error) {
	if bucket == "" {
		bucket = l.defaultBucket
	}
	if bucket == "" {
		return BucketListing{}, fmt.Errorf("list bucket: %w", ErrBucketNotSpecified)
	}

	client := l.newClient(creds)
	objects := []ObjectInfo{}

	input := &s3.ListObjectsV2Input{Bucket: &bucket}
	if prefix != "" {
		input.Prefix = &prefix
	}

	for {
		page, err := client.ListObjectsV2(ctx, input)
		if err != nil {
			slog.Error("failed to list bucket objects", "bucket", bucket, "prefix", prefix, "err", err)
			return BucketListing{}, fmt.Errorf("list bucket %s: %w", bucket, ErrListFailed)
		}

		for _, obj := range page.Contents {
			info := ObjectInfo{}
			if obj.Key != nil {
				info.Key = *obj.Key
			}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.LastModified = obj.LastModified.UTC().Format(time.RFC3339)
			}
			objects = append(objects, info)
		}

		if page.IsTruncated == nil || !*page.IsTruncated || page.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = page.NextContinuationToken
	}

	return BucketListing{Objects: objects}, nil
}
