package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeUpstream    Code = "UPSTREAM_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeAuthExpired Code = "AUTH_EXPIRED"
	CodeConflict    Code = "CONFLICT"
	CodeReadOnly    Code = "READ_ONLY"
	CodeInternal    Code = "INTERNAL_ERROR"
)

// FallbackMessage is shown when the API gave no usable message.
const FallbackMessage = "Something went wrong"

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// ShowMessage means the error's own message is safe to show to the operator.
	ShowMessage bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:    http.StatusUnprocessableEntity,
		PublicMessage: "Please fix the highlighted fields",
		ShowMessage:   true,
	},
	CodeUpstream: {
		HTTPStatus:    http.StatusBadGateway,
		PublicMessage: FallbackMessage,
		ShowMessage:   true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "Record not found",
		ShowMessage:   true,
	},
	CodeAuthExpired: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "Your session has expired. Please log in again.",
		ShowMessage:   true,
	},
	CodeConflict: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "A save is already in progress",
		ShowMessage:   true,
	},
	CodeReadOnly: {
		HTTPStatus:    http.StatusMethodNotAllowed,
		PublicMessage: "This resource is read-only",
		ShowMessage:   false,
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "Something went wrong. Please try again.",
		ShowMessage:   false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	status  int
	details map[string]string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Status is the upstream HTTP status, zero when the error did not come from a response.
func (e *Error) Status() int {
	if e == nil {
		return 0
	}
	return e.status
}

func (e *Error) WithStatus(status int) *Error {
	if e == nil {
		return nil
	}
	e.status = status
	return e
}

func (e *Error) Details() map[string]string {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details map[string]string) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// PublicMessage is the text shown to the operator for err.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	meta := MetadataFor(typed.code)
	if meta.ShowMessage && typed.message != "" {
		return typed.message
	}
	return meta.PublicMessage
}
