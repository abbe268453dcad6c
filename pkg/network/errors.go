package network

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed Execute call.
type ErrorKind int

const (
	KindInvalidURL ErrorKind = iota + 1
	KindRequestFailed
	KindInvalidResponseType
	KindInvalidResponse
	KindDecodingFailed
	KindEncodingFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindRequestFailed:
		return "request_failed"
	case KindInvalidResponseType:
		return "invalid_response_type"
	case KindInvalidResponse:
		return "invalid_response"
	case KindDecodingFailed:
		return "decoding_failed"
	case KindEncodingFailed:
		return "encoding_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is the failure returned by Execute and ExecuteWithBody.
type Error struct {
	Kind ErrorKind
	// StatusCode is set for KindInvalidResponse.
	StatusCode int
	Err        error
}

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrInvalidURL          = &Error{Kind: KindInvalidURL}
	ErrRequestFailed       = &Error{Kind: KindRequestFailed}
	ErrInvalidResponseType = &Error{Kind: KindInvalidResponseType}
	ErrInvalidResponse     = &Error{Kind: KindInvalidResponse}
	ErrDecodingFailed      = &Error{Kind: KindDecodingFailed}
	ErrEncodingFailed      = &Error{Kind: KindEncodingFailed}
)

func (e *Error) Error() string {
	msg := "network: " + e.Kind.String()
	if e.Kind == KindInvalidResponse {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. A target with a
// non-zero StatusCode also has to match the code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// StatusCode extracts the rejected status code from an invalid response error.
func StatusCode(err error) (int, bool) {
	var ne *Error
	if errors.As(err, &ne) && ne.Kind == KindInvalidResponse {
		return ne.StatusCode, true
	}
	return 0, false
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return 0
}
