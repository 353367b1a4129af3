package workspace

import "errors"

var (
	// ErrWorkspaceNotFound is returned when workspace does not exist in meta-database.
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrWorkspaceNotActive is returned when workspace exists but is not active.
	ErrWorkspaceNotActive = errors.New("workspace is not active")

	// ErrMaxPoolLimit is returned when the pool manager reached its pool limit.
	ErrMaxPoolLimit = errors.New("max workspace pool limit reached")
)
