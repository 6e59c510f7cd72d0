package core

import "errors"

var (
	// ErrEmptyKey is returned when inserting under an empty key.
	ErrEmptyKey = errors.New("key must not be empty")

	// ErrInvalidKey is returned for a key containing a space or line break.
	ErrInvalidKey = errors.New("key must not contain spaces or line breaks")

	// ErrEmptyValue is returned when inserting an empty value.
	ErrEmptyValue = errors.New("value must not be empty")

	// ErrInvalidValue is returned for a value containing a line break.
	ErrInvalidValue = errors.New("value must not contain line breaks")

	// ErrIndexMismatch is returned by Check when the structures disagree.
	ErrIndexMismatch = errors.New("index mismatch")
)
