// Package store defines the persistence interface for the settlement ledger.
// Implementations include a CSV file (the default, spreadsheet-friendly),
// SQLite (embedded), PostgreSQL, a Redis read-through cache, and in-memory
// (for testing).
package store

import (
	"context"
	"errors"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// ErrCorrupt is returned by ReadAll when persisted data cannot be parsed.
var ErrCorrupt = errors.New("store: ledger data is corrupt")

// Store is an append-only tabular record store. Rows are never updated or
// deleted individually; Purge removes everything.
type Store interface {
	// Append adds records after all existing rows as one contiguous block.
	Append(ctx context.Context, records []model.LedgerRecord) error

	// ReadAll returns every record in insertion order. A store that does
	// not exist yet yields an empty slice and no error.
	ReadAll(ctx context.Context) ([]model.LedgerRecord, error)

	// Purge deletes all records.
	Purge(ctx context.Context) error
}
