package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrObjectNotFound = errors.New("export file not found")

// Storage keeps generated export files by object key.
type Storage interface {
	Backend() string
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Presigner is implemented by storages that can hand out direct download
// links.
type Presigner interface {
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// FileStorage keeps exports on local disk under BaseDir.
type FileStorage struct {
	BaseDir string
}

func NewFileStorage(baseDir string) *FileStorage {
	return &FileStorage{BaseDir: baseDir}
}

func (fs *FileStorage) Backend() string { return "local" }

func (fs *FileStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(fs.BaseDir, clean), nil
}

func (fs *FileStorage) Put(ctx context.Context, key string, r io.Reader) error {
	full, err := fs.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	out, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", full, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("failed to write file %s: %w", full, err)
	}
	return nil
}

func (fs *FileStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := fs.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

// Delete is safe to call for a file that is already gone.
func (fs *FileStorage) Delete(ctx context.Context, key string) error {
	full, err := fs.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", full, err)
	}
	return nil
}

// R2Storage keeps exports in a Cloudflare R2 bucket.
type R2Storage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
}

// NewR2Storage expects endpoint as "https://<account-id>.r2.cloudflarestorage.com".
func NewR2Storage(accessKeyID, secretAccessKey, endpoint, bucketName string) *R2Storage {
	cfg := aws.Config{
		Region:       "auto",
		Credentials:  credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		BaseEndpoint: aws.String(endpoint),
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// R2 requires path-style addressing
		o.UsePathStyle = true
	})
	return &R2Storage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
	}
}

func (rs *R2Storage) Backend() string { return "r2" }

func (rs *R2Storage) Put(ctx context.Context, key string, r io.Reader) error {
	_, err := rs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(rs.bucketName),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to R2: %w", err)
	}
	return nil
}

func (rs *R2Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := rs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read from R2: %w", err)
	}
	return out.Body, nil
}

func (rs *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := rs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(rs.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

func (rs *R2Storage) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := rs.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return req.URL, nil
}
