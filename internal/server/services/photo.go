package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/thabitrevor/wedding/internal/common"
	"github.com/thabitrevor/wedding/internal/dbx"
	"github.com/thabitrevor/wedding/internal/logging"
	sc "github.com/thabitrevor/wedding/internal/server/config"
	"github.com/thabitrevor/wedding/internal/server/models"
	"github.com/thabitrevor/wedding/internal/server/repositories/repomanager"
)

// S3 seams, swapped in tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const (
	msgPhotoType  = "Please upload only JPEG, PNG, WebP, or HEIC images."
	msgPhotoEmpty = "Please select a photo to upload."

	anonymousUploader = "Anonymous Guest"
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
}

// PhotoSizeMessage is the guest-facing message for an upload over limit bytes.
func PhotoSizeMessage(limit int64) string {
	switch {
	case limit >= 1<<20 && limit%(1<<20) == 0:
		return fmt.Sprintf("File size must be less than %dMB.", limit>>20)
	case limit >= 1<<10 && limit%(1<<10) == 0:
		return fmt.Sprintf("File size must be less than %dKB.", limit>>10)
	default:
		return fmt.Sprintf("File size must be less than %d bytes.", limit)
	}
}

// PhotoError is a rejected upload. Message is meant for the guest.
type PhotoError struct {
	Message string
}

func (e *PhotoError) Error() string { return e.Message }

func (e *PhotoError) Unwrap() error { return common.ErrorValidation }

// PhotoUpload is one guest upload.
type PhotoUpload struct {
	FileName     string
	MimeType     string
	Size         int64
	Body         io.Reader
	UploaderName string
}

// ApprovedPhoto is a gallery entry with a time-limited download URL.
type ApprovedPhoto struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	UploaderName string    `json:"uploaderName"`
	UploadedAt   time.Time `json:"uploadedAt"`
	URL          string    `json:"url"`
}

// PhotoService stores guest photos in S3 and their metadata in Postgres.
type PhotoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
	now         func() time.Time
}

func NewPhotoService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger, config *sc.Config) *PhotoService {
	return &PhotoService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// photoStorageKey builds uploads/<unix-ms>-<uuid>.<ext>.
func photoStorageKey(now time.Time, ext string) string {
	return fmt.Sprintf("uploads/%d-%v.%s", now.UnixMilli(), uuid.New(), ext)
}

func photoExt(fileName, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if ext != "" {
		return ext
	}
	return allowedPhotoTypes[mimeType]
}

func (s *PhotoService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *PhotoService) validate(up PhotoUpload) error {
	if _, ok := allowedPhotoTypes[strings.ToLower(up.MimeType)]; !ok {
		return &PhotoError{Message: msgPhotoType}
	}
	if up.Size <= 0 || up.Body == nil {
		return &PhotoError{Message: msgPhotoEmpty}
	}
	if up.Size > s.config.MaxPhotoSize {
		return &PhotoError{Message: PhotoSizeMessage(s.config.MaxPhotoSize)}
	}
	return nil
}

// Upload stores the image and records it as pending approval. If the
// metadata insert fails the stored object is removed again.
func (s *PhotoService) Upload(ctx context.Context, up PhotoUpload) (*models.Photo, error) {
	if err := s.validate(up); err != nil {
		return nil, err
	}

	mimeType := strings.ToLower(up.MimeType)
	key := photoStorageKey(s.now(), photoExt(up.FileName, mimeType))
	bucket := s.config.S3Bucket

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error configuring storage: %w", err)
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          up.Body,
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(up.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading photo: %w", err)
	}

	uploader := strings.TrimSpace(up.UploaderName)
	if uploader == "" {
		uploader = anonymousUploader
	}

	photo := &models.Photo{
		FileName:     up.FileName,
		StoragePath:  key,
		FileSize:     up.Size,
		MimeType:     mimeType,
		UploaderName: uploader,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Photos(tx).Create(ctx, photo)
	})
	if err != nil {
		if _, derr := deleteObject(client, context.WithoutCancel(ctx), &s3.DeleteObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}); derr != nil {
			s.logger.Warn(ctx, "orphaned photo object", "key", key, "error", derr)
		}
		return nil, fmt.Errorf("error saving photo: %w", err)
	}

	s.logger.Info(ctx, "photo uploaded", "id", photo.ID, "key", key, "size", up.Size)
	return photo, nil
}

// ListApproved returns approved photos newest first, each with a presigned
// GET URL valid for PhotoURLExpiry.
func (s *PhotoService) ListApproved(ctx context.Context) ([]*ApprovedPhoto, error) {
	list, err := s.repomanager.Photos(s.db).ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing photos: %w", err)
	}
	if len(list) == 0 {
		return []*ApprovedPhoto{}, nil
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error configuring storage: %w", err)
	}
	presignClient := newS3PresignClient(client)
	bucket := s.config.S3Bucket

	out := make([]*ApprovedPhoto, 0, len(list))
	for _, p := range list {
		key := p.StoragePath
		req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}, s3.WithPresignExpires(s.config.PhotoURLExpiry))
		if err != nil {
			return nil, fmt.Errorf("error signing photo url: %w", err)
		}
		out = append(out, &ApprovedPhoto{
			ID:           p.ID,
			FileName:     p.FileName,
			UploaderName: p.UploaderName,
			UploadedAt:   p.UploadedAt,
			URL:          req.URL,
		})
	}
	return out, nil
}
