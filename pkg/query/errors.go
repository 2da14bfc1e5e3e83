package query

import "github.com/forgo/docq/internal/database"

// Sentinel errors re-exported for callers outside the module, which cannot
// reach the internal database package.
var (
	// ErrNotFound indicates no row matched where one was expected.
	ErrNotFound = database.ErrNotFound

	// ErrMultiple indicates more than one row matched where exactly one was
	// expected.
	ErrMultiple = database.ErrMultiple
)
