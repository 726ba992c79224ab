package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"leadcrm/internal/models"
	"leadcrm/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Ensure S3Service implements FileURLGenerator
var _ models.FileURLGenerator = (*S3Service)(nil)

// S3Service stores quotation and lead attachments.
type S3Service struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucketName string
	logger     *logger.Logger
}

func NewS3Service(bucketName, endpoint, region, accessKey, secretKey string) (*S3Service, error) {
	log := logger.New("s3_service")

	if accessKey == "" || secretKey == "" {
		return nil, log.Error("S3 credentials are empty", fmt.Errorf("accessKey or secretKey is empty"))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Service{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucketName: bucketName,
		logger:     log,
	}, nil
}

// Upload stores a document under a fresh UUID-based key and returns
// the object path.
func (s *S3Service) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("attachments/%s%s", uuid.New().String(), filepath.Ext(fileName))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", s.logger.Error("Failed to upload object %s", err, key)
	}

	return key, nil
}

// Delete removes an object.
func (s *S3Service) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(path),
	})
	if err != nil {
		return s.logger.Error("Failed to delete object %s", err, path)
	}
	return nil
}

// GetSignedURL returns a presigned GET URL for an attachment.
func (s *S3Service) GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", path, err)
	}
	return req.URL, nil
}
