package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// appendLockKey is the advisory lock taken while appending, so batches from
// concurrent writers get contiguous sequence numbers.
const appendLockKey int64 = 0x706f6b6572 // "poker"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS ledger_records (
	seq        BIGSERIAL PRIMARY KEY,
	date       TEXT NOT NULL,
	name       TEXT NOT NULL,
	raw_score  NUMERIC NOT NULL,
	net_payout NUMERIC(20, 2) NOT NULL,
	fee_share  NUMERIC(20, 2) NOT NULL DEFAULT 0
)`

// PostgresStore implements Store using PostgreSQL.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the ledger table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, records []model.LedgerRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}

	for _, r := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO ledger_records (date, name, raw_score, net_payout, fee_share)
			 VALUES ($1, $2, $3::NUMERIC, $4::NUMERIC, $5::NUMERIC)`,
			r.Date, r.PlayerName,
			r.RawScore.String(), r.NetPayout.String(), r.FeeShare.String(),
		)
		if err != nil {
			return fmt.Errorf("insert record for %s: %w", r.PlayerName, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ReadAll(ctx context.Context) ([]model.LedgerRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, name, raw_score::TEXT, net_payout::TEXT, fee_share::TEXT
		 FROM ledger_records ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *PostgresStore) Purge(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE ledger_records`)
	return err
}
