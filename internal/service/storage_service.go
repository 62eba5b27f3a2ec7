// Package service contains the business logic layer.
package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/crypto/blake2b"

	"github.com/jmylchreest/pod-pipeline/internal/config"
	"github.com/jmylchreest/pod-pipeline/internal/storage"
)

// ErrStorageDisabled is returned when uploading without a configured bucket.
var ErrStorageDisabled = errors.New("object storage not configured")

// StorageService stores generated artwork in object storage (Tigris/S3-compatible).
type StorageService struct {
	client    storage.ObjectPutter
	bucket    string
	publicURL string
	enabled   bool
	logger    *slog.Logger
	now       func() time.Time
}

// NewStorageService creates a storage service. A nil client disables storage.
func NewStorageService(cfg *config.Config, client storage.ObjectPutter, logger *slog.Logger) *StorageService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage")

	if client == nil || cfg.StorageBucket == "" {
		logger.Info("storage service disabled - no bucket configured")
		return &StorageService{enabled: false, logger: logger, now: time.Now}
	}

	publicURL := cfg.StoragePublicURL
	if publicURL == "" {
		// Path-style URL on the S3 endpoint.
		publicURL = strings.TrimSuffix(cfg.StorageEndpoint, "/") + "/" + cfg.StorageBucket
	}

	logger.Info("storage service initialized",
		"bucket", cfg.StorageBucket,
		"endpoint", cfg.StorageEndpoint,
	)

	return &StorageService{
		client:    client,
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		enabled:   true,
		logger:    logger,
		now:       time.Now,
	}
}

// IsEnabled returns whether storage is configured and available.
func (s *StorageService) IsEnabled() bool {
	return s.enabled
}

// Bucket returns the configured bucket name.
func (s *StorageService) Bucket() string {
	return s.bucket
}

// UploadArtwork stores image bytes and returns the object key and public URL.
// Identical images map to the same key.
func (s *StorageService) UploadArtwork(ctx context.Context, data []byte, contentType string) (key, url string, err error) {
	if !s.enabled {
		return "", "", ErrStorageDisabled
	}
	if len(data) == 0 {
		return "", "", errors.New("empty artwork")
	}
	if contentType == "" {
		contentType = "image/png"
	}

	key = ArtworkKey(s.now(), data, contentType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload artwork: %w", err)
	}

	s.logger.Debug("artwork uploaded", "key", key, "size", len(data))
	return key, s.publicURL + "/" + key, nil
}

// DeleteArtwork removes stored images by key and returns how many went.
// It is a no-op when storage is disabled or the client cannot delete.
func (s *StorageService) DeleteArtwork(ctx context.Context, keys []string) (int, error) {
	deleter, ok := s.client.(storage.ObjectDeleter)
	if !s.enabled || !ok {
		return 0, nil
	}
	var deleted int
	for _, key := range keys {
		_, err := deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		deleted++
	}
	return deleted, nil
}

// ArtworkKey returns artwork/YYYY/MM/DD/<hash>.<ext> for the image.
func ArtworkKey(t time.Time, data []byte, contentType string) string {
	sum := blake2b.Sum256(data)
	return fmt.Sprintf("artwork/%s/%s.%s", t.UTC().Format("2006/01/02"), hex.EncodeToString(sum[:16]), extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
