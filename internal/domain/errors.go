package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNoDocumentRef indicates an update or delete could not resolve the
	// backing document reference for a product.
	ErrNoDocumentRef = errors.New("no backing document reference")
)
