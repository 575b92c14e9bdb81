// internal/app/features/news/input.go
package news

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	apierrors "github.com/mtt/mttdash/internal/app/features/errors"
	"github.com/mtt/mttdash/internal/app/system/htmlsanitize"
	"github.com/mtt/mttdash/internal/app/system/inputval"
	"github.com/mtt/mttdash/internal/app/system/normalize"
	"github.com/mtt/mttdash/internal/app/system/objectstore"
)

// MinContentChars is the least visible text an article may carry.
const MinContentChars = 10

// articleInput is the body of create and patch. Nil fields are absent.
type articleInput struct {
	Title      *string `json:"title" validate:"omitempty,min=3,max=200" label:"Title"`
	Content    *string `json:"content" label:"Content"`
	Image      *string `json:"image" validate:"omitempty,max=2048" label:"Image"`
	CategoryID *string `json:"category_id" validate:"omitempty,objectid" label:"Category"`
}

// readInput decodes JSON or multipart form fields. For multipart bodies the
// caller reads the image file part afterwards.
func readInput(w http.ResponseWriter, r *http.Request) (articleInput, error) {
	var in articleInput
	if !apierrors.IsMultipart(r) {
		err := apierrors.Decode(w, r, &in)
		return in, err
	}
	if err := apierrors.ParseMultipart(w, r); err != nil {
		return in, err
	}
	field := func(name string) *string {
		if vs, ok := r.MultipartForm.Value[name]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	in.Title = field("title")
	in.Content = field("content")
	in.Image = field("image")
	in.CategoryID = field("category_id")
	return in, nil
}

// isStorageKey reports whether s looks like a key returned by an upload,
// such as "news/2024/05/<uuid>.png".
func isStorageKey(s string) bool {
	if strings.Contains(s, ":") || strings.HasPrefix(s, "/") {
		return false
	}
	_, err := objectstore.CleanKey(s)
	return err == nil && strings.Contains(s, "/")
}

// clean normalizes the present fields and sanitizes content.
func (in *articleInput) clean() {
	if in.Title != nil {
		t := normalize.Name(*in.Title)
		in.Title = &t
	}
	if in.Content != nil {
		c := htmlsanitize.Normalize(*in.Content)
		in.Content = &c
	}
	if in.Image != nil {
		i := normalize.QueryParam(*in.Image)
		in.Image = &i
	}
	if in.CategoryID != nil {
		c := normalize.QueryParam(*in.CategoryID)
		in.CategoryID = &c
	}
}

// validate checks the present fields. creating makes title and content
// required.
func (in articleInput) validate(creating bool) *inputval.Result {
	res := inputval.Validate(in)
	if creating && (in.Title == nil || *in.Title == "") {
		res.Errors = append(res.Errors, inputval.FieldError{Field: "Title", Message: "Title is required."})
	}
	if in.Content != nil || creating {
		text := ""
		if in.Content != nil {
			text = htmlsanitize.TextContent(*in.Content)
		}
		if utf8.RuneCountInString(text) < MinContentChars {
			res.Errors = append(res.Errors, inputval.FieldError{
				Field:   "Content",
				Message: fmt.Sprintf("Content must be at least %d characters.", MinContentChars),
			})
		}
	}
	if in.Image != nil && *in.Image != "" && !inputval.IsValidLink(*in.Image) && !isStorageKey(*in.Image) {
		res.Errors = append(res.Errors, inputval.FieldError{
			Field:   "Image",
			Message: "Image must be a URL or an uploaded file path.",
		})
	}
	return res
}
