// Package objectstore uploads dashboard images and proposal files to the
// configured bucket backend (local disk, S3-compatible, or Google Cloud
// Storage) and builds their public URLs.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/app/system/timeouts"
)

// Backend names accepted by the storage_type config key.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
)

// MaxUploadSize bounds a single multipart upload.
const MaxUploadSize = 10 << 20

var (
	// ErrEmptyKey is returned when an operation is given an empty object key.
	ErrEmptyKey = errors.New("object key is empty")
	// ErrBadKey is returned for keys that try to escape the bucket.
	ErrBadKey = errors.New("object key is invalid")
	// ErrUnsupportedType is returned when an upload's content is not accepted.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge is returned for uploads over MaxUploadSize.
	ErrTooLarge = errors.New("file too large")
)

// Bucket is the subset of object storage the dashboard needs.
type Bucket interface {
	Backend() string
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Object describes a stored upload.
type Object struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Key returns a new unique key under prefix, keeping filename's extension:
// news/2026/10/1b4e28ba-2fa1-11d2-883f-0016d3cca427.png
func Key(prefix, filename string) string {
	now := time.Now().UTC()
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext
	return path.Join(strings.Trim(prefix, "/"), fmt.Sprintf("%04d/%02d", now.Year(), now.Month()), name)
}

// CleanKey validates a caller-supplied key.
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrEmptyKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrBadKey
	}
	return clean, nil
}

// Accept limits the content types an upload may have. Types are detected
// from the file's leading bytes, not from the client's headers.
type Accept func(contentType string) bool

// AcceptImages admits raster images. SVG is refused: it can carry script and
// local uploads are served from the dashboard's own origin.
func AcceptImages(ct string) bool {
	return mimetype.EqualsAny(ct,
		"image/png",
		"image/jpeg",
		"image/gif",
		"image/webp",
		"image/avif",
		"image/bmp",
	)
}

// AcceptDocuments admits images plus PDF and office documents.
func AcceptDocuments(ct string) bool {
	return AcceptImages(ct) || mimetype.EqualsAny(ct,
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/zip",
	)
}

// sniff detects r's content type and returns a reader that still yields every
// byte of r.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	ct := mimetype.Detect(head).String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct, io.MultiReader(bytes.NewReader(head), r), nil
}

// Uploader stores multipart files in a Bucket and records upload metrics.
type Uploader struct {
	Bucket  Bucket
	Metrics *metrics.Metrics
}

// NewUploader wraps b. m may be nil.
func NewUploader(b Bucket, m *metrics.Metrics) *Uploader {
	return &Uploader{Bucket: b, Metrics: m}
}

// UploadFile stores fh under prefix and returns the stored object.
func (u *Uploader) UploadFile(ctx context.Context, prefix string, fh *multipart.FileHeader, accept Accept) (Object, error) {
	if fh.Size > MaxUploadSize {
		return Object{}, ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return Object{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return u.Upload(ctx, prefix, fh.Filename, f, accept)
}

// Upload stores r under a new key below prefix. A nil accept admits any type.
func (u *Uploader) Upload(ctx context.Context, prefix, filename string, r io.Reader, accept Accept) (Object, error) {
	ct, body, err := sniff(r)
	if err != nil {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}
	if accept != nil && !accept(ct) {
		return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	filename = withExtension(filename, ct)

	key := Key(prefix, filename)

	ctx, cancel := context.WithTimeout(ctx, timeouts.Upload())
	defer cancel()

	err = u.Bucket.Put(ctx, key, body, ct)
	u.Metrics.Upload(u.Bucket.Backend(), err)
	if err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return Object{Name: filename, Path: key, URL: u.Bucket.URL(key)}, nil
}

// withExtension makes filename's extension agree with the detected type ct.
// A client extension is kept only when it maps to ct (".jpeg" for
// image/jpeg); otherwise it is replaced by the detected one.
func withExtension(filename, ct string) string {
	ext := filepath.Ext(filename)
	if ext != "" {
		if mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil && mt == ct {
			return filename
		}
	}
	want := ""
	if m := mimetype.Lookup(ct); m != nil {
		want = m.Extension()
	}
	if ext != "" && strings.EqualFold(ext, want) {
		return filename
	}
	return strings.TrimSuffix(filename, ext) + want
}

// Remove deletes key from the bucket.
func (u *Uploader) Remove(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Upload())
	defer cancel()
	return u.Bucket.Delete(ctx, key)
}

// joinURL appends key to base with exactly one slash between them.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
