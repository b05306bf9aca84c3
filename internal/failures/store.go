// Package failures keeps a permanent record of documents that could not be
// generated, so a run can be inspected after the process has exited.
package failures

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one failed document in one run.
type Record struct {
	ID        int64
	RunID     string
	Document  string
	Generator string
	Category  string
	Message   string
	Time      time.Time
}

// Store defines the interface for persisting and retrieving failure records.
type Store interface {
	// Append adds a failure record. Time is set when zero.
	Append(ctx context.Context, r Record) error

	// ByRun retrieves the failures of one run in insertion order.
	ByRun(ctx context.Context, runID string) ([]Record, error)

	// LatestRun returns the run ID of the most recent record, or "" when empty.
	LatestRun(ctx context.Context) (string, error)

	// Close closes the store and releases resources.
	Close() error
}

// NewRunID returns a fresh identifier for a generation run.
func NewRunID() string {
	return uuid.NewString()
}
