package health

import "errors"

var (
	// ErrCheckFailed indicates a dependency check ran and failed.
	ErrCheckFailed = errors.New("health: dependency check failed")

	// ErrCheckTimeout indicates a dependency check did not finish in time.
	ErrCheckTimeout = errors.New("health: dependency check timed out")

	// ErrCheckerNotFound indicates no checker is registered under the
	// requested name.
	ErrCheckerNotFound = errors.New("health: unknown checker name")
)
