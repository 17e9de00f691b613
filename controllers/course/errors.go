package controllers

import "errors"

// Engine errors. Handlers match these with errors.Is and translate them to
// HTTP statuses; none of them is fatal.
var (
	ErrNotFound         = errors.New("record not found")
	ErrSessionLocked    = errors.New("session is locked")
	ErrAttemptLimit     = errors.New("attempt limit exceeded")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrTimeExceeded     = errors.New("time limit exceeded")
	ErrAlreadyIssued    = errors.New("certificate already issued")
	ErrNotEligible      = errors.New("not eligible for certificate")
	ErrInvalidInput     = errors.New("invalid input")
)
