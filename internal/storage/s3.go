package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/everkeep/backend/internal/config"
)

// Client wraps S3 presigned-URL generation for will attachments. The
// backend never proxies file bytes; browsers upload and download
// directly against the returned URLs.
type Client struct {
	bucket     string
	presignTTL time.Duration
	presign    *s3.PresignClient
}

func New(ctx context.Context, cfg config.StorageConfig) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config failed: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		bucket:     cfg.Bucket,
		presignTTL: cfg.PresignTTL,
		presign:    s3.NewPresignClient(s3Client),
	}, nil
}

// RandomKey produces a date-partitioned object key.
func RandomKey(willID uuid.UUID) string {
	d := time.Now()
	return fmt.Sprintf("wills/%s/%d/%02d/%s", willID, d.Year(), d.Month(), uuid.New())
}

func (c *Client) PresignPut(ctx context.Context, key string, contentType string) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(c.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign put object failed: %w", err)
	}

	return req.URL, nil
}

func (c *Client) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(c.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign get object failed: %w", err)
	}

	return req.URL, nil
}
