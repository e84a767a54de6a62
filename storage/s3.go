package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ashetkar/scalarun/iox"
)

// S3Config holds configuration for the S3 archive backend.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. MinIO, Cloudflare R2). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path parses a path in format "bucket/prefix" or "bucket".
func ParseS3Path(path string) (bucket, prefix string) {
	parts := strings.SplitN(path, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		prefix = parts[1]
	}
	return bucket, prefix
}

// s3API is the subset of the S3 client the archiver uses.
// Narrowed for test injection.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads artifacts as objects under
// <prefix>/<label>/<basename>.
type S3Archiver struct {
	client s3API
	config S3Config
}

// NewS3Archiver creates an S3 archiver.
// Uses the AWS SDK default credential chain (env vars, shared config,
// IAM role).
func NewS3Archiver(ctx context.Context, cfg S3Config) (*S3Archiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Archiver{
		client: s3.NewFromConfig(awsConfig, s3Opts...),
		config: cfg,
	}, nil
}

// newS3ArchiverWithClient creates an archiver with an injected client
// (for testing).
func newS3ArchiverWithClient(client s3API, cfg S3Config) *S3Archiver {
	return &S3Archiver{client: client, config: cfg}
}

// Archive uploads each existing file. Keys use forward slashes
// regardless of the local path separator.
func (a *S3Archiver) Archive(ctx context.Context, label string, paths []string) (int, error) {
	archived := 0
	for _, src := range paths {
		f, err := os.Open(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return archived, fmt.Errorf("read artifact %s: %w", src, err)
		}

		key := a.objectKey(label, filepath.Base(src))
		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &a.config.Bucket,
			Key:    &key,
			Body:   f,
		})
		iox.DiscardClose(f)
		if err != nil {
			return archived, fmt.Errorf("upload artifact %s: %w", key, err)
		}
		archived++
	}
	return archived, nil
}

func (a *S3Archiver) objectKey(label, name string) string {
	var buf bytes.Buffer
	if a.config.Prefix != "" {
		buf.WriteString(strings.TrimSuffix(a.config.Prefix, "/"))
		buf.WriteByte('/')
	}
	buf.WriteString(label)
	buf.WriteByte('/')
	buf.WriteString(name)
	return buf.String()
}
