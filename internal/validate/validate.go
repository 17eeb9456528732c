package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"catalogconsole/internal/apperr"
	"catalogconsole/internal/pagination"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			if form := f.Tag.Get("form"); form != "" {
				return form
			}
			return f.Name
		}
		return tag
	})
	_ = val.RegisterValidation("media", mediaRef)
	return val
}

// mediaRef accepts an absolute http(s) URL or a root-relative path.
func mediaRef(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" || (strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//")) {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Struct runs the struct tags of dest and reports failures per field.
func Struct(dest any) error {
	if err := v.Struct(dest); err != nil {
		return formatErrors(err)
	}
	return nil
}

// Each validates every element of a slice of structs.
func Each[T any](items []T) error {
	for i := range items {
		if err := v.Struct(items[i]); err != nil {
			out := formatErrors(err)
			details := map[string]string{}
			for field, msg := range out.Details() {
				details[fmt.Sprintf("[%d].%s", i, field)] = msg
			}
			return out.WithDetails(details)
		}
	}
	return nil
}

func formatErrors(err error) *apperr.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldPath(fieldErr)] = message(fieldErr)
		}
		return apperr.New(apperr.CodeValidation, "validation failed").WithDetails(details)
	}
	return apperr.Wrap(apperr.CodeValidation, err, "validation failed")
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url", "http_url", "media":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

const maxQRunes = 80

// Q validates a list search term: trims, caps it at 80 characters and rejects
// control characters and markup brackets. An empty term is valid and means no search.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !utf8.ValidString(s) {
		return "", false
	}
	if utf8.RuneCountInString(s) > maxQRunes {
		s = string([]rune(s)[:maxQRunes])
	}
	for _, r := range s {
		if !unicode.IsPrint(r) || r == '<' || r == '>' {
			return s, false
		}
	}
	return s, true
}

// ID validates an API resource identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// FilterValue accepts an id, "all", or empty.
func FilterValue(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return s, true
	}
	return ID(s)
}

// PageSize parses a per-page option; anything not offered falls back to the default.
func PageSize(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !pagination.ValidPageSize(n) {
		return pagination.DefaultPageSize
	}
	return n
}

// Page parses a 1-based page number; junk means page 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Password enforces a length window before a login is sent upstream.
func Password(s string) bool {
	l := len(s)
	return l >= 1 && l <= 128
}
