package signet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignAPI is the subset of s3.PresignClient the presign engine uses.
// Narrowed for mock injection in tests.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignDeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPostObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error)
}

var _ PresignAPI = (*s3.PresignClient)(nil)

// PresignedURL is the response body for GET/PUT/DELETE presign operations.
type PresignedURL struct {
	URL string `json:"url"`
}

// PostPolicy is the response body for POST presign operations: the form
// target plus the fields a client must include in the multipart upload.
type PostPolicy struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// securityTokenField is the canonical mixed-case form of the session-token
// form field. Some stores emit it lowercase in the policy; clients (and the
// store on upload) expect the canonical casing.
const securityTokenField = "X-Amz-Security-Token"

// Presigner produces presigned URLs and upload policies from resolved
// per-request credentials. SDK errors are logged in full server-side and
// surfaced only as ErrPresignFailed.
type Presigner struct {
	newClient func(StorageCredentials) PresignAPI
}

// NewPresigner returns a Presigner backed by real s3.PresignClient instances.
func NewPresigner() *Presigner {
	return &Presigner{
		newClient: func(creds StorageCredentials) PresignAPI {
			return s3.NewPresignClient(NewS3Client(creds))
		},
	}
}

// NewPresignerWithClient returns a Presigner using the supplied factory.
// Intended for tests.
func NewPresignerWithClient(newClient func(StorageCredentials) PresignAPI) *Presigner {
	return &Presigner{newClient: newClient}
}

// PresignGet returns a presigned URL for downloading bucket/key.
func (p *Presigner) PresignGet(ctx context.Context, creds StorageCredentials, req PresignRequest) (PresignedURL, error) {
	client := p.newClient(creds)
	out, err := client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &req.Bucket,
		Key:    &req.Key,
	}, func(o *s3.PresignOptions) { o.Expires = req.TTL() })
	if err != nil {
		slog.Error("failed to generate presigned GET URL", "bucket", req.Bucket, "key", req.Key, "err", err)
		return PresignedURL{}, fmt.Errorf("presign get: %w", ErrPresignFailed)
	}
	return PresignedURL{URL: out.URL}, nil
}

// PresignPut returns a presigned URL for uploading bucket/key.
func (p *Presigner) PresignPut(ctx context.Context, creds StorageCredentials, req PresignRequest) (PresignedURL, error) {
	client := p.newClient(creds)
	out, err := client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &req.Bucket,
		Key:    &req.Key,
	}, func(o *s3.PresignOptions) { o.Expires = req.TTL() })
	if err != nil {
		slog.Error("failed to generate presigned PUT URL", "bucket", req.Bucket, "key", req.Key, "err", err)
		return PresignedURL{}, fmt.Errorf("presign put: %w", ErrPresignFailed)
	}
	return PresignedURL{URL: out.URL}, nil
}

// PresignDelete returns a presigned URL for deleting bucket/key.
func (p *Presigner) PresignDelete(ctx context.Context, creds StorageCredentials, req PresignRequest) (PresignedURL, error) {
	client := p.newClient(creds)
	out, err := client.PresignDeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &req.Bucket,
		Key:    &req.Key,
	}, func(o *s3.PresignOptions) { o.Expires = req.TTL() })
	if err != nil {
		slog.Error("failed to generate presigned DELETE URL", "bucket", req.Bucket, "key", req.Key, "err", err)
		return PresignedURL{}, fmt.Errorf("presign delete: %w", ErrPresignFailed)
	}
	return PresignedURL{URL: out.URL}, nil
}

// PresignPost returns a presigned POST upload policy for bucket/key.
// A lowercase security-token field in the returned policy is re-emitted
// under the canonical X-Amz-Security-Token name; this normalization is
// required, not cosmetic.
func (p *Presigner) PresignPost(ctx context.Context, creds StorageCredentials, req PresignRequest) (PostPolicy, error) {
	client := p.newClient(creds)
	out, err := client.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: &req.Bucket,
		Key:    &req.Key,
	}, func(o *s3.PresignPostOptions) { o.Expires = req.TTL() })
	if err != nil {
		slog.Error("failed to generate presigned POST policy", "bucket", req.Bucket, "key", req.Key, "err", err)
		return PostPolicy{}, fmt.Errorf("presign post: %w", ErrPresignFailed)
	}
	return PostPolicy{URL: out.URL, Fields: NormalizePostFields(out.Values)}, nil
}

// NormalizePostFields canonicalizes the security-token field name in a POST
// policy field map. Other fields pass through unchanged.
func NormalizePostFields(fields map[string]string) map[string]string {
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		if strings.EqualFold(k, securityTokenField) {
			normalized[securityTokenField] = v
			continue
		}
		normalized[k] = v
	}
	return normalized
}
