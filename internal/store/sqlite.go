package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ledger_records (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	date       TEXT NOT NULL,
	name       TEXT NOT NULL,
	raw_score  TEXT NOT NULL,
	net_payout TEXT NOT NULL,
	fee_share  TEXT NOT NULL DEFAULT '0'
)`

// SQLiteStore implements Store in an embedded SQLite database. Decimals are
// stored as TEXT to keep them exact; seq preserves insertion order.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite ledger at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serialises writers, keeping appended batches contiguous.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, records []model.LedgerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_records (date, name, raw_score, net_payout, fee_share)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Date, r.PlayerName,
			r.RawScore.String(), r.NetPayout.String(), r.FeeShare.String(),
		); err != nil {
			return fmt.Errorf("insert record for %s: %w", r.PlayerName, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]model.LedgerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, name, raw_score, net_payout, fee_share
		 FROM ledger_records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *SQLiteStore) Purge(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ledger_records`)
	return err
}

// recordRows is the subset of database/sql and pgx rows used for scanning.
type recordRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanRecords reads text-encoded rows into LedgerRecords. Decimal columns
// that do not parse mark the store as corrupt.
func scanRecords(rows recordRows) ([]model.LedgerRecord, error) {
	var records []model.LedgerRecord
	for rows.Next() {
		var r model.LedgerRecord
		var rawS, netS, feeS string

		if err := rows.Scan(&r.Date, &r.PlayerName, &rawS, &netS, &feeS); err != nil {
			return nil, err
		}

		var err error
		if r.RawScore, err = decimal.NewFromString(rawS); err != nil {
			return nil, fmt.Errorf("%w: raw_score %q", ErrCorrupt, rawS)
		}
		if r.NetPayout, err = decimal.NewFromString(netS); err != nil {
			return nil, fmt.Errorf("%w: net_payout %q", ErrCorrupt, netS)
		}
		if r.FeeShare, err = parseDecimal(feeS); err != nil {
			return nil, fmt.Errorf("%w: fee_share %q", ErrCorrupt, feeS)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
