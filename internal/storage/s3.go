// Package storage mirrors raw data files into S3-compatible object storage.
// The production target is DigitalOcean Spaces, but any S3 endpoint works.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/miqalab/miqa/pkg/miqa"
)

// Credentials and endpoint come from the environment, never from miqa.yaml.
const (
	EnvEndpointURL = "S3_ENDPOINT_URL"
	EnvBucket      = "S3_BUCKET"
	EnvAccessKey   = "AWS_ACCESS_KEY_ID"
	EnvSecretKey   = "AWS_SECRET_ACCESS_KEY"
)

// S3Store implements miqa.ObjectStore against an S3-compatible endpoint.
type S3Store struct {
	client *s3.Client
	bucket string
	logger miqa.Logger
}

// Config collects the settings needed to reach the bucket.
type Config struct {
	// Endpoint is the S3-compatible endpoint URL. Empty means plain AWS S3.
	Endpoint string
	Bucket   string
	Region   string

	// AccessKey/SecretKey override the default AWS credential chain when
	// both are set.
	AccessKey string
	SecretKey string
}

// ConfigFromEnv builds a Config from the environment, with yaml-provided
// endpoint/bucket/region as fallback.
func ConfigFromEnv(endpoint, bucket, region string) Config {
	cfg := Config{
		Endpoint:  os.Getenv(EnvEndpointURL),
		Bucket:    os.Getenv(EnvBucket),
		Region:    region,
		AccessKey: os.Getenv(EnvAccessKey),
		SecretKey: os.Getenv(EnvSecretKey),
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = endpoint
	}
	if cfg.Bucket == "" {
		cfg.Bucket = bucket
	}
	return cfg
}

// NewS3Store creates an object store client. Panics if logger is nil.
func NewS3Store(ctx context.Context, cfg Config, logger miqa.Logger) (*S3Store, error) {
	if logger == nil {
		panic("storage.NewS3Store: logger is nil")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage requires a bucket (set $%s or storage.bucket in miqa.yaml): %w",
			EnvBucket, miqa.ErrInvalidConfig)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Spaces and most S3 compatibles want path-style addressing.
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// ObjectKey builds the canonical key for a sample's raw file:
// {repository}/{sample}/{filename}.
func ObjectKey(repository, sampleAccession, filename string) string {
	return fmt.Sprintf("%s/%s/%s", repository, sampleAccession, filename)
}

// Upload stores the object and returns its key. size < 0 means unknown.
func (s *S3Store) Upload(ctx context.Context, key string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%w: %s: %w", miqa.ErrUploadFailed, key, err)
	}

	s.logger.Verbose("uploaded %s to bucket %s", key, s.bucket)
	return key, nil
}

// Delete removes the object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

var _ miqa.ObjectStore = (*S3Store)(nil)
