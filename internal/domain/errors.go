package domain

import "errors"

var (
	// ErrFileNotFound is returned when an archive file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidYear marks a year that could not be loaded as part of a
	// multi-year request. It never aborts the batch.
	ErrInvalidYear = errors.New("invalid year")

	// ErrInvalidStateCode is returned when a state code does not appear in
	// the STATE column of the loaded data.
	ErrInvalidStateCode = errors.New("invalid STATE number")

	// ErrInvalidToken is returned when a token cannot be normalized to an integer.
	ErrInvalidToken = errors.New("invalid integer token")

	// ErrMissingColumn is returned when a table lacks a required column.
	ErrMissingColumn = errors.New("missing column")
)
