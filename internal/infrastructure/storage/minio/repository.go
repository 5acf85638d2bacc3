package minio

import (
	"bytes"
	"context"
	"mime"
	"net/url"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// ArtifactStore uploads exports to the bucket and returns presigned URLs.
type ArtifactStore struct {
	client *Client
	logger logging.Logger
}

var _ orgchart.ArtifactStore = (*ArtifactStore)(nil)

func NewArtifactStore(client *Client, log logging.Logger) *ArtifactStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactStore{client: client, logger: log}
}

// Put stores data under name and returns a link valid for the configured
// presign expiry.  The link names the file so browsers save it as such.
func (s *ArtifactStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if name == "" {
		return "", errors.InvalidParam("artifact name is required")
	}
	if s.client.isClosed() {
		return "", ErrClientClosed
	}
	if contentType == "" {
		contentType = "text/csv"
	}

	bucket := s.client.Bucket()
	api := s.client.api
	info, err := api.PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "upload failed")
	}

	params := url.Values{}
	params.Set("response-content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(name)}))
	u, err := api.PresignedGetObject(ctx, bucket, name, s.client.config.PresignExpiry, params)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign download")
	}

	s.logger.Debug("artifact stored",
		logging.String("bucket", bucket),
		logging.String("object", name),
		logging.Int64("size", info.Size))
	return u.String(), nil
}

//Personal.AI order the ending
