package domain

import "errors"

// Error taxonomy shared by every layer. Services wrap these with context via
// fmt.Errorf("...: %w", Err...) and handlers map them to HTTP status codes.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrUpstream          = errors.New("upstream failure")
)
