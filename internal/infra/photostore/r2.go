package photostore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/glucobot/internal/domain/meal"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

// R2Storage stores meal photos in Cloudflare R2 or any S3-compatible bucket.
type R2Storage struct {
	client  *minio.Client
	buckets bucketAPI
	bucket  string
	logger  *slog.Logger
	mu      sync.Mutex
	ready   bool
}

type bucketAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// NewR2Storage constructs the storage adapter. An explicit scheme on endpoint overrides useSSL.
func NewR2Storage(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, logger *slog.Logger) (*R2Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cleanEndpoint := sanitizeEndpoint(endpoint)
	switch lower := strings.ToLower(strings.TrimSpace(endpoint)); {
	case strings.HasPrefix(lower, "https://"):
		useSSL = true
	case strings.HasPrefix(lower, "http://"):
		useSSL = false
	}
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Storage{
		client:  client,
		buckets: client,
		bucket:  bucket,
		logger:  logger.With("component", "photostore.r2"),
	}, nil
}

// ensureBucket creates the bucket on first use. Only success is remembered.
func (s *R2Storage) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	exists, err := s.buckets.BucketExists(ctx, s.bucket)
	if err != nil || !exists {
		err = s.buckets.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			s.logger.Warn("photo bucket not ready", "bucket", s.bucket, "error", err)
			return err
		}
	}
	s.ready = true
	s.logger.Info("photo bucket ready", "bucket", s.bucket)
	return nil
}

// Put uploads a photo.
func (s *R2Storage) Put(ctx context.Context, key string, data []byte, mimeType string) (meal.StoredPhoto, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return meal.StoredPhoto{}, apperrors.Wrap(apperrors.CodeStorage, "ensure photo bucket failed", err)
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: len(data) < 5*1024*1024,
	})
	if err != nil {
		return meal.StoredPhoto{}, apperrors.Wrap(apperrors.CodeStorage, "upload photo failed", err)
	}
	return meal.StoredPhoto{
		Key:      key,
		Size:     info.Size,
		MimeType: mimeType,
		ETag:     info.ETag,
	}, nil
}

// Get fetches a photo for reading.
func (s *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "open photo failed", err)
	}
	if _, statErr := obj.Stat(); statErr != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(statErr).Code == "NoSuchKey" {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, "photo not found", statErr)
		}
		return nil, apperrors.Wrap(apperrors.CodeStorage, "stat photo failed", statErr)
	}
	return obj, nil
}

// Delete removes a photo.
func (s *R2Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "delete photo failed", err)
	}
	return nil
}

var _ meal.PhotoStorage = (*R2Storage)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
