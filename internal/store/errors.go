package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNoCurrentAccount is returned when no account is marked current.
	// For the sync engine this is a valid steady state, not a failure:
	// there is simply nothing to sync.
	ErrNoCurrentAccount = errors.New("no current account")

	// ErrAccountNotFound is returned when a query targets an account that
	// does not exist.
	ErrAccountNotFound = errors.New("account was not found")

	// ErrDocumentNotFound is returned when a query or update targets a
	// document that does not exist in the database.
	ErrDocumentNotFound = errors.New("document was not found")

	// ErrCheckpointNotFound is returned when an account has no persisted
	// sync checkpoint. Callers treat it as the signal to run a full sync.
	ErrCheckpointNotFound = errors.New("sync checkpoint was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRows is returned when a result row cannot be scanned into
	// the destination model.
	ErrScanningRows = errors.New("error scanning result rows")
)
