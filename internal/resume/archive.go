package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const archivePrefix = "resumes/"

// Archiver stores the original upload and returns the key it was stored under.
type Archiver interface {
	Archive(ctx context.Context, upload *Upload) (string, error)
}

// ArchiveConfig describes an S3 compatible bucket (AWS, R2, MinIO).
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key" json:"-"`
	PathStyle bool   `mapstructure:"path-style"`
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads resumes with the AWS SDK.
type S3Archiver struct {
	client objectPutter
	bucket string
	newID  func() string
}

// NewS3Archiver builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewS3Archiver(ctx context.Context, cfg *ArchiveConfig) (*S3Archiver, error) {
	if cfg == nil || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("archive bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return newS3Archiver(client, cfg.Bucket), nil
}

func newS3Archiver(client objectPutter, bucket string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		newID:  func() string { return uuid.NewString() },
	}
}

func (a *S3Archiver) Archive(ctx context.Context, upload *Upload) (string, error) {
	key := ArchiveKey(a.newID(), upload.Filename)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(upload.Data),
		ContentType: aws.String(upload.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return key, nil
}

// ArchiveKey builds "resumes/<id>-<slug>" keeping the lower-cased extension.
func ArchiveKey(id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if name == "" {
		name = "resume"
	}
	return archivePrefix + id + "-" + name + ext
}
