package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3 or S3-compatible (Supabase, MinIO) bucket.
type S3Config struct {
	Region    string
	Bucket    string
	Prefix    string
	Endpoint  string // empty for AWS
	AccessKey string // empty to use the default credential chain
	SecretKey string
	PublicURL string // base URL objects are served from; derived when empty
}

// S3 stores objects in an S3 bucket.
type S3 struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3 loads AWS configuration and builds the client. It does not contact
// the bucket.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 storage: bucket not set")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 storage: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, cfg: cfg}, nil
}

func (s *S3) Backend() string { return BackendS3 }

func (s *S3) fullKey(key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if s.cfg.Prefix == "" {
		return key, nil
	}
	return joinURL(s.cfg.Prefix, key), nil
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	k, err := s.fullKey(key)
	if err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(k),
		Body:   r,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put %s: %w", k, err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	k, err := s.fullKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", k, err)
	}
	return nil
}

func (s *S3) URL(key string) string {
	k, err := s.fullKey(key)
	if err != nil {
		return ""
	}
	return joinURL(s.baseURL(), k)
}

func (s *S3) baseURL() string {
	switch {
	case s.cfg.PublicURL != "":
		return s.cfg.PublicURL
	case s.cfg.Endpoint != "":
		return joinURL(s.cfg.Endpoint, s.cfg.Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
	}
}
