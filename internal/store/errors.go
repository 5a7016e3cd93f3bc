package store

import "errors"

// Sentinel errors defining the failure taxonomy. Store functions wrap these
// with context; the API layer maps them onto HTTP statuses with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
)
