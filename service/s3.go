package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Object key prefixes for uploaded course media.
const (
	PrefixThumbnails = "thumbnails/"
	PrefixLectures   = "lectures/"
)

// MediaStore is the object storage used for thumbnails and lecture content.
type MediaStore interface {
	Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type S3Service struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3Service(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*S3Service, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &S3Service{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// Upload stores the file under prefix with a random name. Returns the object key.
func (s *S3Service) Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error) {
	key := ObjectKey(prefix, originalFilename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *S3Service) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// PresignedGetURL returns a temporary URL for a stored object.
func (s *S3Service) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// ObjectKey builds prefix + uuid + the lowercased original extension.
func ObjectKey(prefix, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(path.Base(originalFilename)))
	return prefix + uuid.New().String() + ext
}

// IsObjectKey reports whether ref names an uploaded object rather than an external URL.
func IsObjectKey(ref string) bool {
	return strings.HasPrefix(ref, PrefixThumbnails) || strings.HasPrefix(ref, PrefixLectures)
}

var allowedMedia = map[string][]string{
	PrefixThumbnails: {"image/jpeg", "image/png", "image/webp", "image/gif"},
	PrefixLectures:   {"video/", "application/pdf", "audio/"},
}

// AllowedMedia checks a part's content type against what prefix accepts.
func AllowedMedia(prefix, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, want := range allowedMedia[prefix] {
		if strings.HasSuffix(want, "/") && strings.HasPrefix(ct, want) {
			return true
		}
		if ct == want || strings.HasPrefix(ct, want+";") {
			return true
		}
	}
	return false
}
