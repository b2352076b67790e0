package minio

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sci-z-declaration/internal/core/ports"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Storage implements ports.FileStorage on a MinIO bucket. The object key it
// returns is the stored-file identifier persisted on attachment relations.
type Storage struct {
	client *minio.Client
	bucket string
}

func NewStorage(cfg Config) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}
	return &Storage{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet. Called once at
// startup.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio: check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("minio: create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Storage) Upload(ctx context.Context, input ports.UploadInput) (string, error) {
	objectKey := fmt.Sprintf("%s/%d/%d_%s",
		input.RelationType, input.RelationID, time.Now().UnixMilli(), input.FileName)

	opts := minio.PutObjectOptions{
		ContentType: input.ContentType,
		UserMetadata: map[string]string{
			"relation-name":   input.RelationName,
			"attachment-type": input.AttachmentType,
			"public":          strconv.FormatBool(input.Public),
		},
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectKey,
		bytes.NewReader(input.Content), int64(len(input.Content)), opts)
	if err != nil {
		return "", fmt.Errorf("minio: upload %s: %w", objectKey, err)
	}

	return objectKey, nil
}
