package core

import "errors"

var (
	// ErrNotFound is returned when a transaction, obligation, user or saving
	// does not exist for the given owner.
	ErrNotFound = errors.New("not found")

	// ErrDependency marks a settlement step that failed because the
	// downstream ledger posting failed. The obligation must stay unsettled.
	ErrDependency = errors.New("dependency failed")
)
