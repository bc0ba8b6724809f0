package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"workfolio/internal/config"
	domain "workfolio/internal/model"
)

// ObjectPutter is the slice of the S3 API the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MediaService stores profile and portfolio images in Cloudflare R2.
// A nil *MediaService means uploads are disabled.
type MediaService struct {
	client    ObjectPutter
	bucket    string
	publicURL string
}

// NewMediaService builds an S3-compatible client for R2. It returns nil, nil
// when R2 is not configured.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if !cfg.MediaEnabled() {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return NewMediaServiceWithClient(client, cfg.R2BucketName, cfg.R2PublicURL), nil
}

func NewMediaServiceWithClient(client ObjectPutter, bucket, publicURL string) *MediaService {
	return &MediaService{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// UploadProfileImage crops to a 200x200 JPEG.
func (s *MediaService) UploadProfileImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	if s == nil {
		return nil, domain.ErrMediaDisabled
	}
	return s.upload(ctx, file, header, domain.ProfileImageFolder, func(img image.Image) image.Image {
		return imaging.Fill(img, domain.ProfileImageWidth, domain.ProfileImageHeight, imaging.Center, imaging.Lanczos)
	})
}

// UploadPortfolioImage keeps the aspect ratio and shrinks the longest edge
// to PortfolioImageWidth when larger.
func (s *MediaService) UploadPortfolioImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	if s == nil {
		return nil, domain.ErrMediaDisabled
	}
	return s.upload(ctx, file, header, domain.PortfolioFolder, func(img image.Image) image.Image {
		b := img.Bounds()
		if b.Dx() <= domain.PortfolioImageWidth && b.Dy() <= domain.PortfolioImageWidth {
			return img
		}
		return imaging.Fit(img, domain.PortfolioImageWidth, domain.PortfolioImageWidth, imaging.Lanczos)
	})
}

func (s *MediaService) upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string, transform func(image.Image) image.Image) (*domain.UploadResult, error) {
	data, _, err := readAndValidateImage(file, header, domain.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := encodeJPEG(data, transform, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), domain.ImageExt)
	if err := s.putObject(ctx, key, jpegBytes, domain.ContentTypeJPEG, domain.ImageCacheControl); err != nil {
		return nil, err
	}

	return &domain.UploadResult{URL: fmt.Sprintf("%s/%s", s.publicURL, key), Key: key}, nil
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if header.Size > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !domain.IsAllowedImageType(contentType) {
		return nil, "", domain.ErrInvalidImageType
	}

	return data, contentType, nil
}

func encodeJPEG(data []byte, transform func(image.Image) image.Image, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImageType, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, transform(img), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to r2: %w", err)
	}
	return nil
}
