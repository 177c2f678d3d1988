package generation

import (
	"errors"
	"fmt"

	"productshot/internal/catalog"
)

// Kind is the closed set of generation failure classes.
type Kind string

const (
	KindTimeout Kind = "TIMEOUT"
	KindNetwork Kind = "NETWORK_ERROR"
	KindHTTP    Kind = "HTTP"
	KindUnknown Kind = "UNKNOWN_ERROR"
)

var (
	ErrTimeout        = errors.New("generation timed out")
	ErrNetwork        = errors.New("generation service unreachable")
	ErrHTTP           = errors.New("generation service returned an error status")
	ErrUnknown        = errors.New("generation failed")
	ErrInvalidRequest = errors.New("invalid generation request")
)

// Error is the only failure type returned by generators. Message is safe to
// show to users; Details is diagnostic only.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details any
}

// HTTPDetails is attached to KindHTTP errors.
type HTTPDetails struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return e.Message
}

// Code is TIMEOUT, NETWORK_ERROR, HTTP_<status> or UNKNOWN_ERROR.
func (e *Error) Code() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("HTTP_%d", e.Status)
	}
	return string(e.Kind)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrHTTP:
		return e.Kind == KindHTTP
	case ErrUnknown:
		return e.Kind == KindUnknown
	}
	return false
}

func (e *Error) Unwrap() error {
	if err, ok := e.Details.(error); ok {
		return err
	}
	return nil
}

func timeoutError(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: catalog.TextErrorTimeout, Details: cause}
}

func networkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: catalog.TextErrorNetwork, Details: cause}
}

func httpError(status int, message string, body string) *Error {
	if message == "" {
		message = catalog.TextErrorHttp
	}
	return &Error{
		Kind:    KindHTTP,
		Status:  status,
		Message: message,
		Details: HTTPDetails{Status: status, Body: body},
	}
}

func unknownError(cause error) *Error {
	return &Error{Kind: KindUnknown, Message: catalog.TextErrorGeneric, Details: cause}
}

// Message is what the UI shows for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return catalog.TextErrorGeneric
}

// CodeOf returns the taxonomy code of err, or UNKNOWN_ERROR for foreign errors.
func CodeOf(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Code()
	}
	return string(KindUnknown)
}
