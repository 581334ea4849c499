package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for callers and for HTTP mapping.
type Kind string

const (
	KindBadRequest                Kind = "bad_request"
	KindNotFound                  Kind = "not_found"
	KindConflict                  Kind = "conflict"
	KindEncodingFailure           Kind = "encoding_failure"
	KindDocumentGenerationFailure Kind = "document_generation_failure"
	KindBackend                   Kind = "backend"
	KindInternal                  Kind = "internal"
)

// Error is an application error with a user-facing message.
type Error struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Err       error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindEncodingFailure, KindDocumentGenerationFailure:
		return http.StatusUnprocessableEntity
	case KindBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is; they carry no message.
var (
	ErrBadRequest                = &Error{Kind: KindBadRequest}
	ErrNotFound                  = &Error{Kind: KindNotFound}
	ErrConflict                  = &Error{Kind: KindConflict}
	ErrEncodingFailure           = &Error{Kind: KindEncodingFailure}
	ErrDocumentGenerationFailure = &Error{Kind: KindDocumentGenerationFailure}
	ErrBackend                   = &Error{Kind: KindBackend}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

// EncodingFailure is non-fatal: the scan code could not be produced.
func EncodingFailure(err error) *Error {
	return Wrap(KindEncodingFailure, "scan code could not be generated", err)
}

// DocumentGenerationFailure is retryable: the receipt can be downloaded again.
func DocumentGenerationFailure(err error) *Error {
	e := Wrap(KindDocumentGenerationFailure, "receipt could not be generated, use Download Again", err)
	e.Retryable = true
	return e
}

// As extracts an *Error from err, wrapping anything else as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindInternal, "internal error", err)
}
