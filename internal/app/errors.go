package app

import "errors"

// ErrInvalidDocument is returned when a submitted preferences document cannot
// be parsed.
var ErrInvalidDocument = errors.New("invalid preferences document")
