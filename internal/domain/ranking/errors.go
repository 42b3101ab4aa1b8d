package ranking

import "errors"

// Sentinel kinds for assembler errors.
var (
	// ErrNotFound is returned by Board lookups for members with no entry.
	// Implementations must translate their own absence signal into this.
	ErrNotFound = errors.New("member not found")

	// ErrCollaborator wraps a board or directory failure. The assembler
	// never retries; retries belong to the caller.
	ErrCollaborator = errors.New("collaborator failure")
)
