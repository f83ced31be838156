package fzsearch

import (
	ferrors "github.com/momingse/fzsearch/internal/errors"
)

// Sentinel errors. Errors returned by this package match them with errors.Is.
var (
	// ErrInvalidRecord is returned when a record is neither text nor an object.
	ErrInvalidRecord = ferrors.New(ferrors.ErrCodeInvalidRecord, "record must be a string or an object", nil)

	// ErrInvalidOption is returned when an option is out of range.
	ErrInvalidOption = ferrors.New(ferrors.ErrCodeInvalidOption, "invalid option", nil)

	// ErrInvalidKey is returned when a key selector has an empty segment.
	ErrInvalidKey = ferrors.New(ferrors.ErrCodeInvalidKey, "invalid key selector", nil)
)
