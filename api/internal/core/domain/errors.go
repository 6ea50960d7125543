package domain

import (
	"errors"
	"fmt"
)

// Transform failure taxonomy. Every error a transform returns wraps exactly one of these.
var (
	ErrMissingPassphrase    = errors.New("passphrase is required")
	ErrInvalidEncoding      = errors.New("invalid base64 encoding")
	ErrInvalidUTF8          = errors.New("decoded bytes are not valid UTF-8")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidToken         = errors.New("invalid token")
	ErrUnsupportedMethod    = errors.New("unsupported method")
)

// UnsupportedMethodError keeps the rejected wire name for the client message.
type UnsupportedMethodError struct {
	Name string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedMethod, e.Name)
}

func (e *UnsupportedMethodError) Unwrap() error { return ErrUnsupportedMethod }

// IsClientError reports whether err was caused by the caller's input rather than the payload.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingPassphrase) || errors.Is(err, ErrUnsupportedMethod)
}

// ErrorKind returns a stable label for logs, metrics and audit events.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingPassphrase):
		return "missing_passphrase"
	case errors.Is(err, ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, ErrInvalidUTF8):
		return "invalid_utf8"
	case errors.Is(err, ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrUnsupportedMethod):
		return "unsupported_method"
	default:
		return "internal"
	}
}
