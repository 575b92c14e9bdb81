package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig configures a Google Cloud Storage bucket.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string // empty to use application default credentials
	PublicURL       string // defaults to https://storage.googleapis.com/<bucket>
}

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	cfg    GCSConfig
}

// NewGCS builds the storage client.
func NewGCS(ctx context.Context, cfg GCSConfig) (*GCS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs storage: bucket not set")
	}
	opts := []option.ClientOption{storage.WithDisabledClientMetrics()}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage: create client: %w", err)
	}
	return &GCS{client: client, bucket: client.Bucket(cfg.Bucket), cfg: cfg}, nil
}

func (g *GCS) Backend() string { return BackendGCS }

func (g *GCS) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs put %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs put %s: %w", key, err)
	}
	return nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	err = g.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

func (g *GCS) URL(key string) string {
	key, err := CleanKey(key)
	if err != nil {
		return ""
	}
	base := g.cfg.PublicURL
	if base == "" {
		base = "https://storage.googleapis.com/" + g.cfg.Bucket
	}
	return joinURL(base, key)
}

// Close releases the client.
func (g *GCS) Close() error {
	return g.client.Close()
}
