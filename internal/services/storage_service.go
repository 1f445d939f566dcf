// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport-backend/internal/config"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

// ObjectStore archives exported documents.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type storageBackend interface {
	put(ctx context.Context, key string, data []byte, contentType string) error
	presign(ctx context.Context, key string, ttl time.Duration) (string, error)
	remove(ctx context.Context, key string) error
	publicURL(key string) string
}

// StorageService writes to S3, MinIO or a local directory depending on
// STORAGE_DRIVER.
type StorageService struct {
	backend storageBackend
	config  config.StorageConfig
}

func NewStorageService(ctx context.Context, cfg config.StorageConfig) (*StorageService, error) {
	var (
		backend storageBackend
		err     error
	)

	switch cfg.Driver {
	case "s3":
		backend, err = newS3Backend(cfg)
	case "minio":
		backend, err = newMinioBackend(ctx, cfg)
	default:
		backend, err = newLocalBackend(cfg)
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"driver": cfg.Driver,
		"bucket": cfg.Bucket,
	}).Info("Storage initialized")
	return &StorageService{backend: backend, config: cfg}, nil
}

func (s *StorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	if err := s.backend.put(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:      s.backend.publicURL(key),
		Key:      key,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.config.URLExpiry()
	}
	return s.backend.presign(ctx, key, ttl)
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	return s.backend.remove(ctx, key)
}

func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+key)), "/")
	if key == "" || key == "." {
		return "", fmt.Errorf("invalid storage key")
	}
	return key, nil
}

// S3

type s3Backend struct {
	client *s3.S3
	bucket string
	cfg    config.StorageConfig
}

func newS3Backend(cfg config.StorageConfig) (*s3Backend, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &s3Backend{client: s3.New(sess), bucket: cfg.Bucket, cfg: cfg}, nil
}

func (b *s3Backend) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (b *s3Backend) presign(_ context.Context, key string, ttl time.Duration) (string, error) {
	req, _ := b.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

func (b *s3Backend) remove(ctx context.Context, key string) error {
	_, err := b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (b *s3Backend) publicURL(key string) string {
	if b.cfg.PublicURL != "" {
		return strings.TrimRight(b.cfg.PublicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, b.cfg.Region, key)
}

// MinIO

type minioBackend struct {
	client *minio.Client
	bucket string
	cfg    config.StorageConfig
}

func newMinioBackend(ctx context.Context, cfg config.StorageConfig) (*minioBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	b := &minioBackend{client: client, bucket: cfg.Bucket, cfg: cfg}
	if err := b.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *minioBackend) ensureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: b.cfg.Region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

func (b *minioBackend) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

func (b *minioBackend) presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url, err := b.client.PresignedGetObject(ctx, b.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

func (b *minioBackend) remove(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (b *minioBackend) publicURL(key string) string {
	if b.cfg.PublicURL != "" {
		return strings.TrimRight(b.cfg.PublicURL, "/") + "/" + key
	}
	scheme := "http"
	if b.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, b.cfg.Endpoint, b.bucket, key)
}

// Local directory, served under /uploads in development.

type localBackend struct {
	root    string
	baseURL string
}

func newLocalBackend(cfg config.StorageConfig) (*localBackend, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &localBackend{root: cfg.LocalPath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *localBackend) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}

func (b *localBackend) put(_ context.Context, key string, data []byte, _ string) error {
	target := b.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// write then rename so readers never see a partial file
	suffix, err := utils.GenerateRandomString(8)
	if err != nil {
		return fmt.Errorf("failed to name temp file: %w", err)
	}
	tmp := target + ".tmp-" + suffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}

// local files are not signed; the URL is stable
func (b *localBackend) presign(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, err := os.Stat(b.path(key)); err != nil {
		return "", fmt.Errorf("failed to locate file: %w", err)
	}
	return b.publicURL(key), nil
}

func (b *localBackend) remove(_ context.Context, key string) error {
	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (b *localBackend) publicURL(key string) string {
	return b.baseURL + "/" + key
}
