package signet

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is used when neither the request nor the configuration
// carries a region.
const DefaultRegion = "us-east-1"

// NewS3Client builds an S3 client scoped to one request's credentials.
// Clients are cheap to construct and are not reused across requests; the
// store is stateless from the gateway's perspective.
//
// Path-style addressing is used so that bucket names never have to resolve
// as DNS labels of the endpoint (required for MinIO and most self-hosted
// stores, harmless for AWS and Wasabi).
func NewS3Client(creds StorageCredentials) *s3.Client {
	opts := s3.Options{
		Region: creds.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID,
			creds.SecretAccessKey,
			creds.SessionToken,
		),
		UsePathStyle: true,
	}
	if opts.Region == "" {
		opts.Region = DefaultRegion
	}
	if creds.EndpointURL != "" {
		opts.BaseEndpoint = aws.String(creds.EndpointURL)
	}
	return s3.New(opts)
}
