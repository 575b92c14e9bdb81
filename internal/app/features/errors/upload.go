package errors

import (
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mtt/mttdash/internal/app/system/objectstore"
)

// multipartSlack covers form fields and part headers around the file.
const multipartSlack = 1 << 20

// IsMultipart reports whether r carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// ParseMultipart bounds and parses a multipart body.
func ParseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, objectstore.MaxUploadSize+multipartSlack)
	if err := r.ParseMultipartForm(objectstore.MaxUploadSize); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			return objectstore.ErrTooLarge
		}
		return fmt.Errorf("invalid multipart body: %w", err)
	}
	return nil
}

// FormFile returns the named file part, or nil when it is absent.
func FormFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// Upload writes the client error for a rejected upload and reports whether
// err was one.
func Upload(w http.ResponseWriter, err error) bool {
	switch {
	case stderrors.Is(err, objectstore.ErrTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File is larger than %d MB", objectstore.MaxUploadSize>>20))
	case stderrors.Is(err, objectstore.ErrUnsupportedType):
		Error(w, http.StatusBadRequest, "File type is not allowed")
	case stderrors.Is(err, objectstore.ErrEmptyKey), stderrors.Is(err, objectstore.ErrBadKey):
		Error(w, http.StatusBadRequest, "Invalid file path")
	default:
		return false
	}
	return true
}
