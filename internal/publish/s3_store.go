package publish

import (
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rentalfigs/internal/config"
	apperrors "rentalfigs/internal/errors"
)

// ObjectStore is the subset of an S3 API the publisher needs
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutFile(ctx context.Context, bucket, key, path, contentType string) error
}

// S3Store implements ObjectStore with the minio-go SDK
type S3Store struct {
	client *minio.Client
	region string
}

// NewS3Store creates a MinIO/S3 client from cfg. No request is made until
// the first call.
func NewS3Store(cfg config.PublishConfig) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, apperrors.NewConfigError("publish endpoint is required", nil)
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, apperrors.NewConfigError("publish credentials are required", nil)
	}

	endpoint, useSSL, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create object storage client", err)
	}

	return &S3Store{client: client, region: cfg.Region}, nil
}

// parseEndpoint accepts a bare host:port or a URL; an https scheme forces TLS
func parseEndpoint(raw string, useSSL bool) (string, bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, apperrors.NewConfigError(fmt.Sprintf("invalid publish endpoint %q", raw), err)
	}
	if u.Host == "" {
		return raw, useSSL, nil
	}
	if u.Scheme == "https" {
		useSSL = true
	}
	return u.Host, useSSL, nil
}

// EnsureBucket creates bucket when it does not exist yet
func (s *S3Store) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return apperrors.NewNetworkError(fmt.Sprintf("failed to check bucket %s", bucket), err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return apperrors.NewNetworkError(fmt.Sprintf("failed to create bucket %s", bucket), err)
	}
	return nil
}

// PutFile uploads the file at path to bucket/key
func (s *S3Store) PutFile(ctx context.Context, bucket, key, path, contentType string) error {
	_, err := s.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return apperrors.NewNetworkError(fmt.Sprintf("failed to upload %s", key), err)
	}
	return nil
}
