package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]minio.BucketInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockMinIOAPI) SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error {
	return m.Called(ctx, bucketName, config).Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	if v := args.Get(0); v != nil {
		return v.(*url.URL), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestClient(t *testing.T, api *MockMinIOAPI, cfg Config) *Client {
	t.Helper()
	api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil).Once()
	api.On("BucketExists", mock.Anything, mock.Anything).Return(true, nil).Once()
	c, err := newClient(context.Background(), api, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewClient_CreatesMissingBucket(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	api.On("BucketExists", mock.Anything, "exports").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "exports", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	api.On("SetBucketLifecycle", mock.Anything, "exports", mock.MatchedBy(func(cfg *lifecycle.Configuration) bool {
		return len(cfg.Rules) == 1 && cfg.Rules[0].Expiration.Days == 7
	})).Return(nil)

	c, err := newClient(context.Background(), api, Config{Bucket: "exports", RetentionDays: 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, "exports", c.Bucket())
	assert.Equal(t, 15*time.Minute, c.config.PresignExpiry)
	api.AssertExpectations(t)
}

func TestNewClient_Unreachable(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("ListBuckets", mock.Anything).Return(nil, fmt.Errorf("dial tcp: refused"))

	_, err := newClient(context.Background(), api, Config{}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestNewClient_MakeBucketFails(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	api.On("BucketExists", mock.Anything, "cohortmap-exports").Return(false, nil)
	api.On("MakeBucket", mock.Anything, "cohortmap-exports", mock.Anything).Return(fmt.Errorf("AccessDenied"))

	_, err := newClient(context.Background(), api, Config{}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageError))
}

func TestNewClient_LifecycleFailureIgnored(t *testing.T) {
	api := new(MockMinIOAPI)
	api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	api.On("BucketExists", mock.Anything, mock.Anything).Return(true, nil)
	api.On("SetBucketLifecycle", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("NotImplemented"))

	_, err := newClient(context.Background(), api, Config{RetentionDays: 1}, nil)
	assert.NoError(t, err)
}

func TestClient_HealthCheck(t *testing.T) {
	api := new(MockMinIOAPI)
	c := newTestClient(t, api, Config{})

	api.On("ListBuckets", mock.Anything).Return(nil, fmt.Errorf("timeout")).Once()
	assert.True(t, errors.IsCode(c.HealthCheck(context.Background()), errors.ErrCodeStorageError))

	api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil).Once()
	assert.NoError(t, c.HealthCheck(context.Background()))

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.HealthCheck(context.Background()), ErrClientClosed)
}

//Personal.AI order the ending
