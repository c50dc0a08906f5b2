package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chachabrian/tourbook-backend/internal/apperrors"
	"github.com/chachabrian/tourbook-backend/internal/config"
	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize caps uploaded images at 5 MB.
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Storage holds uploaded images and returns their public URLs.
type Storage interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// NewStorage picks S3 when the AWS settings are complete and local disk otherwise.
func NewStorage(cfg *config.Config) (Storage, error) {
	if cfg.UseS3() {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey,
				"", // Token (optional)
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %v", err)
		}
		logger.Success("AWS S3 storage initialized")
		return &S3Storage{
			client:   s3.New(sess),
			uploader: s3manager.NewUploader(sess),
			bucket:   cfg.S3Bucket,
			region:   cfg.AWSRegion,
		}, nil
	}

	local, err := NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Warning("AWS S3 not configured. Using local file storage in " + cfg.UploadDir)
	return local, nil
}

// readImage loads an upload into memory after checking its size and sniffed type.
func readImage(file *multipart.FileHeader) ([]byte, string, string, error) {
	if file.Size > MaxImageSize {
		return nil, "", "", apperrors.Validation("Image must be 5MB or smaller")
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", "", apperrors.Storage("Failed to read uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		return nil, "", "", apperrors.Storage("Failed to read uploaded file", err)
	}
	if len(data) > MaxImageSize {
		return nil, "", "", apperrors.Validation("Image must be 5MB or smaller")
	}

	mtype := mimetype.Detect(data)
	for allowed, ext := range allowedImageTypes {
		if mtype.Is(allowed) {
			return data, allowed, ext, nil
		}
	}
	return nil, "", "", apperrors.Validation("Only JPEG, PNG, WEBP and GIF images are allowed")
}

func objectName(folder, ext string) string {
	return path.Join(folder, uuid.NewString()+ext)
}

type S3Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string
}

func (s *S3Storage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	data, contentType, ext, err := readImage(file)
	if err != nil {
		return "", err
	}

	key := objectName(folder, ext)
	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		// ACL removed - bucket uses bucket policy for public access instead
	})
	if err != nil {
		return "", apperrors.Storage("Failed to upload image", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	key, err := objectKeyFromURL(fileURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperrors.Storage("Failed to delete image", err)
	}
	return nil
}

// objectKeyFromURL turns https://bucket.s3.region.amazonaws.com/folder/file
// into folder/file.
func objectKeyFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", apperrors.Storage("Invalid image URL", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", apperrors.Storage("Invalid image URL", fmt.Errorf("no object key in %q", fileURL))
	}
	return key, nil
}

// LocalStorage writes uploads below dir and serves them from baseURL/uploads.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	data, _, ext, err := readImage(file)
	if err != nil {
		return "", err
	}

	name := objectName(folder, ext)
	fullPath := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", apperrors.Storage("Failed to create folder directory", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", apperrors.Storage("Failed to save file", err)
	}

	return fmt.Sprintf("%s/uploads/%s", s.baseURL, name), nil
}

func (s *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	u, err := url.Parse(fileURL)
	if err != nil {
		return apperrors.Storage("Invalid image URL", err)
	}
	rel := strings.TrimPrefix(u.Path, "/uploads/")
	if rel == u.Path || rel == "" || strings.Contains(rel, "..") {
		return apperrors.Storage("Image is not stored locally", fmt.Errorf("unexpected path %q", u.Path))
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return apperrors.Storage("Failed to delete image", err)
	}
	return nil
}

// DeleteImagesBestEffort removes every url and only logs failures.
func DeleteImagesBestEffort(ctx context.Context, store Storage, urls []string) {
	if store == nil {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := store.Delete(ctx, u); err != nil {
			logger.Error("Failed to delete image "+u, err)
		}
	}
}
