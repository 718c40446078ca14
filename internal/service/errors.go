package service

import "errors"

var (
	// ErrNotFound means no row matched: unknown credentials, or no unpaid
	// debt fitting the description.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means the username is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput means the request was rejected before touching the
	// store.
	ErrInvalidInput = errors.New("invalid input")
)
