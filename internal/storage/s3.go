package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config contains configuration for AWS S3 or an S3-compatible store (R2, MinIO).
type S3Config struct {
	Region      string
	Endpoint    string // optional - custom endpoint for S3-compatible stores
	AccessKeyID string // optional - falls back to the default credential chain
	SecretKey   string
}

// ObjectGetter is the slice of the S3 client used here.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Storage implements Storage for a single bucket.
type S3Storage struct {
	client ObjectGetter
	bucket string
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" || cfg.SecretKey != "" {
		if cfg.AccessKeyID == "" || cfg.SecretKey == "" {
			return nil, ErrS3CredentialsIncomplete
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Storage creates a Storage reading from bucket.
func NewS3Storage(client ObjectGetter, bucket string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket}
}

// S3Buckets adapts a client into the per-bucket factory Resolver expects.
func S3Buckets(client ObjectGetter) func(bucket string) Storage {
	return func(bucket string) Storage {
		return NewS3Storage(client, bucket)
	}
}

// Get retrieves an object from the bucket.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrFileNotFound(fmt.Sprintf("%s%s/%s", s3Scheme, s.bucket, key))
		}
		return nil, fmt.Errorf("failed to get from S3: %w", err)
	}

	return result.Body, nil
}
