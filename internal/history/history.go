// Package history persists the conversation log and serves the recency
// window that is replayed into each LLM request.
//
// Two implementations exist: [SQLite] for durable cross-restart history and
// [MemStore] for history-less setups and tests. Both are safe for concurrent
// use.
package history

import (
	"context"
	"time"
)

// Turn is one message of the conversation log.
type Turn struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string

	// At is when the turn was recorded.
	At time.Time
}

// Store is the conversation log abstraction.
type Store interface {
	// Append records one turn at the end of the log.
	Append(ctx context.Context, role, content string) error

	// Recent returns the last n turns in chronological order. Fewer turns
	// are returned when the log is shorter than n.
	Recent(ctx context.Context, n int) ([]Turn, error)

	// Close releases the underlying storage.
	Close() error
}
