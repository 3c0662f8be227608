package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no bot matches the given identifier.
	ErrNotFound = errors.New("bot not found")

	// ErrNotActive means Execute was called on a bot whose status is
	// not "active".
	ErrNotActive = errors.New("bot is not active")

	// ErrSaveFailed means the underlying store rejected a write. The
	// store's own error is deliberately not surfaced to callers.
	ErrSaveFailed = errors.New("failed to persist ledger state")
)

// ExecutionError wraps a failure of the external allocation-update
// call. The upstream message is retained both here and in the recorded
// Execution.
type ExecutionError struct {
	BotID   string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed for bot %s: %s", e.BotID, e.Message)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
