package service

import "errors"

// Error kinds surfaced to callers.  Operations wrap these with context
// using fmt.Errorf("%w: ...") and handlers map them to HTTP status codes
// with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrPolicyViolation   = errors.New("policy violation")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrSignatureMismatch = errors.New("signature mismatch")
)
