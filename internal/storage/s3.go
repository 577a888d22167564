package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Config locates the bucket artifacts are published to
type S3Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	UseSSL        bool
	PublicBaseURL string
}

// Validate checks that the required fields are present
func (c S3Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return fmt.Errorf("s3 endpoint is required")
	case c.Bucket == "":
		return fmt.Errorf("s3 bucket is required")
	case c.AccessKey == "" || c.SecretKey == "":
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	case c.PublicBaseURL == "":
		return fmt.Errorf("s3 public_base_url is required")
	}
	return nil
}

// NewClient creates a minio client and checks that the bucket exists
func (c S3Config) NewClient(ctx context.Context) (*minio.Client, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", c.Bucket)
	}

	return client, nil
}

// ObjectPutter is the subset of minio.Client used by S3Sink
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Sink uploads artifacts to an S3-compatible bucket
type S3Sink struct {
	client ObjectPutter
	cfg    S3Config
	log    *zap.Logger
}

// NewS3Sink wraps an object client
func NewS3Sink(client ObjectPutter, cfg S3Config, log *zap.Logger) *S3Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Sink{client: client, cfg: cfg, log: log}
}

// Key returns the object key used for name
func (s *S3Sink) Key(name string) string {
	return path.Join(strings.Trim(s.cfg.Prefix, "/"), name)
}

// Put uploads data under the configured prefix
func (s *S3Sink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}

	key := s.Key(name)
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Debug("artifact uploaded",
		zap.String("bucket", s.cfg.Bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key, nil
}
