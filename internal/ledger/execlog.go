package ledger

import "github.com/vaultfolio/ledger-backend/internal/models"

// ExecutionLog is a fixed-capacity append-only log that keeps the most
// recent entries in insertion order. The cap is a property of the log
// itself, not of the storage mechanics underneath it.
type ExecutionLog struct {
	capacity int
	entries  []models.Execution
}

// NewExecutionLog creates a log holding at most capacity entries.
// A non-positive capacity defaults to 1000.
func NewExecutionLog(capacity int) *ExecutionLog {
	if capacity <= 0 {
		capacity = defaultLogCapacity
	}
	return &ExecutionLog{capacity: capacity}
}

// Append adds an execution, evicting the oldest entry when full.
func (l *ExecutionLog) Append(e models.Execution) {
	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Entries returns the retained executions, oldest first.
func (l *ExecutionLog) Entries() []models.Execution {
	out := make([]models.Execution, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ExecutionLog) Len() int { return len(l.entries) }

// Restore replaces the log contents, trimming to capacity if needed.
func (l *ExecutionLog) Restore(entries []models.Execution) {
	if len(entries) > l.capacity {
		entries = entries[len(entries)-l.capacity:]
	}
	l.entries = append(l.entries[:0], entries...)
}
