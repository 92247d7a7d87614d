package source

import "errors"

var (
	// ErrSchemaMismatch reports a missing column or an unreadable cell.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrSourceNotFound reports a raw file that does not exist.
	ErrSourceNotFound = errors.New("source not found")
)
