// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	once     sync.Once
	validate *validator.Validate

	phoneRe      = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	alnumSpaceRe = regexp.MustCompile(`^[\p{L}\p{N} ]+$`)
)

// FieldError is one failed rule, rendered for API clients.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the field errors of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Field names in messages come from the label tag, then json.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		must := func(tag string, fn func(s string) bool) {
			if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return fn(fl.Field().String())
			}); err != nil {
				panic(err)
			}
		}
		must("httpurl", IsValidHTTPURL)
		must("objectid", IsValidObjectID)
		must("linkurl", IsValidLink)
		must("phone", IsValidPhone)
		must("alnumspace", IsAlnumSpace)
		must("email", IsValidEmail)

		validate = v
	})
	return validate
}

// Validate runs the struct's validate tags and returns readable messages.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "httpurl":
		return label + " must be an http or https URL."
	case "linkurl":
		return label + " must be an http(s) URL or a path starting with /."
	case "objectid":
		return label + " is not a valid id."
	case "phone":
		return label + " must be a valid phone number."
	case "alnumspace":
		return label + " may only contain letters, digits and spaces."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	}
	return label + " is invalid."
}

// IsValidEmail accepts a bare RFC 5322 address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidHTTPURL accepts absolute http and https URLs with a host.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidLink accepts an absolute http(s) URL or a site-relative path.
func IsValidLink(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	return IsValidHTTPURL(s)
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidPhone accepts E.164-style numbers with an optional leading +.
func IsValidPhone(s string) bool {
	return phoneRe.MatchString(strings.TrimSpace(s))
}

// IsAlnumSpace reports whether s holds only letters, digits and spaces.
func IsAlnumSpace(s string) bool {
	return alnumSpaceRe.MatchString(s)
}
