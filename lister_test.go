package signet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sagarc03/signet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockListObjectsAPI mocks the S3 listing surface.
type MockListObjectsAPI struct {
	mock.Mock
}

func (m *MockListObjectsAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func listerWith(api signet.ListObjectsAPI, defaultBucket string) *signet.Lister {
	return signet.NewListerWithClient(defaultBucket, func(signet.StorageCredentials) signet.ListObjectsAPI { return api })
}

func TestLister_List_SinglePage(t *testing.T) {
	modified := time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC)

	api := new(MockListObjectsAPI)
	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return *in.Bucket == "mybucket" && in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("a.txt"), Size: aws.Int64(100), LastModified: &modified},
			{Key: aws.String("b.txt"), Size: aws.Int64(200), LastModified: &modified},
		},
		IsTruncated: aws.Bool(false),
	}, nil)

	lister := listerWith(api, "")
	result, err := lister.List(context.Background(), testCredentials(), "mybucket", "")
	assert.NoError(t, err)
	assert.Len(t, result.Objects, 2)
	assert.Equal(t, "a.txt", result.Objects[0].Key)
	assert.Equal(t, int64(100), result.Objects[0].Size)
	assert.Equal(t, "2026-01-12T07:00:00Z", result.Objects[0].LastModified)

	api.AssertExpectations(t)
}

func TestLister_List_AccumulatesAllPages(t *testing.T) {
	api := new(MockListObjectsAPI)

	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("page1.txt"), Size: aws.Int64(1)}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token-2"),
	}, nil).Once()

	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken != nil && *in.ContinuationToken == "token-2"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("page2.txt"), Size: aws.Int64(2)}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	lister := listerWith(api, "")
	result, err := lister.List(context.Background(), testCredentials(), "mybucket", "")
	assert.NoError(t, err)
	assert.Len(t, result.Objects, 2)
	assert.Equal(t, "page1.txt", result.Objects[0].Key)
	assert.Equal(t, "page2.txt", result.Objects[1].Key)

	api.AssertExpectations(t)
}

func TestLister_List_PrefixForwarded(t *testing.T) {
	api := new(MockListObjectsAPI)
	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.Prefix != nil && *in.Prefix == "docs/"
	})).Return(&s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}, nil)

	lister := listerWith(api, "")
	result, err := lister.List(context.Background(), testCredentials(), "mybucket", "docs/")
	assert.NoError(t, err)
	assert.Empty(t, result.Objects)

	api.AssertExpectations(t)
}

func TestLister_List_DefaultBucket(t *testing.T) {
	api := new(MockListObjectsAPI)
	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return *in.Bucket == "configured-bucket"
	})).Return(&s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}, nil)

	lister := listerWith(api, "configured-bucket")
	_, err := lister.List(context.Background(), testCredentials(), "", "")
	assert.NoError(t, err)

	api.AssertExpectations(t)
}

func TestLister_List_NoBucket(t *testing.T) {
	api := new(MockListObjectsAPI)

	lister := listerWith(api, "")
	_, err := lister.List(context.Background(), testCredentials(), "", "")
	assert.ErrorIs(t, err, signet.ErrBucketNotSpecified)

	api.AssertNotCalled(t, "ListObjectsV2")
}

func TestLister_List_UpstreamFailure(t *testing.T) {
	api := new(MockListObjectsAPI)
	api.On("ListObjectsV2", mock.Anything, mock.Anything).
		Return(nil, errors.New("operation error S3: NoSuchBucket, detail"))

	lister := listerWith(api, "")
	_, err := lister.List(context.Background(), testCredentials(), "mybucket", "")
	assert.ErrorIs(t, err, signet.ErrListFailed)
	assert.NotContains(t, err.Error(), "NoSuchBucket")
}
