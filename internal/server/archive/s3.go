// Package archive copies accepted sync batches to S3-compatible object
// storage (MinIO in development).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/poskeeper/internal/server/config"
	"github.com/google/uuid"
)

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// S3Archive writes one JSON object per batch under batches/YYYY/MM/DD/.
type S3Archive struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// NewS3Archive builds a client for cfg's endpoint using the static root
// credentials.
func NewS3Archive(ctx context.Context, cfg *sc.Config) (*S3Archive, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("error loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Archive{client: client, bucket: cfg.S3Bucket, now: time.Now}, nil
}

// Key returns a fresh object key for a batch received at t.
func Key(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("batches/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), uuid.New())
}

// Store uploads body and returns its key.
func (a *S3Archive) Store(ctx context.Context, body []byte) (string, error) {
	key := Key(a.now())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading %s: %w", key, err)
	}
	return key, nil
}
