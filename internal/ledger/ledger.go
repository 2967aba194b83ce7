// Package ledger keeps the cumulative history of committed settlements and
// derives the all-time leaderboard from it.
//
// The leaderboard is always recomputed from the full record set; no running
// totals are stored anywhere, so it cannot drift from the rows it summarises.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/metrics"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/store"
)

// DefaultDateLayout formats the date column, e.g. "2026-01-02 21:30".
const DefaultDateLayout = "2006-01-02 15:04"

// MoneyScale is the number of decimals kept for persisted money.
const MoneyScale int32 = store.MoneyScale

// Ledger is the append-only settlement history on top of a store.Store.
// Writes are serialised so two commits cannot interleave their rows.
type Ledger struct {
	store      store.Store
	mu         sync.Mutex
	now        func() time.Time
	dateLayout string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the clock used to date committed records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithDateLayout overrides the date column layout.
func WithDateLayout(layout string) Option {
	return func(l *Ledger) {
		if layout != "" {
			l.dateLayout = layout
		}
	}
}

// New creates a ledger backed by st.
func New(st store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:      st,
		now:        time.Now,
		dateLayout: DefaultDateLayout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append writes records as one contiguous block after the existing rows.
func (l *Ledger) Append(ctx context.Context, records []model.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Append(ctx, records); err != nil {
		return fmt.Errorf("append %d records: %w", len(records), err)
	}
	metrics.LedgerRecordsAppended.Add(float64(len(records)))
	return nil
}

// ReadAll returns every persisted record. A missing store reads as empty.
// Corrupt data is logged and also reads as empty, so the leaderboard stays
// usable; any other store failure is returned.
func (l *Ledger) ReadAll(ctx context.Context) ([]model.LedgerRecord, error) {
	records, err := l.store.ReadAll(ctx)
	if errors.Is(err, store.ErrCorrupt) {
		slog.Warn("ledger data unreadable, treating as empty", "err", err)
		metrics.LedgerCorruptReads.Inc()
		return []model.LedgerRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if records == nil {
		records = []model.LedgerRecord{}
	}
	return records, nil
}

// Purge deletes every record. Confirmation is the caller's job.
func (l *Ledger) Purge(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Purge(ctx); err != nil {
		return fmt.Errorf("purge ledger: %w", err)
	}
	metrics.LedgerPurges.Inc()
	slog.Info("ledger purged")
	return nil
}

// Leaderboard aggregates the current ledger.
func (l *Ledger) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	records, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(records), nil
}

// Export writes the full ledger in the storage file format.
func (l *Ledger) Export(ctx context.Context, w io.Writer) error {
	records, err := l.ReadAll(ctx)
	if err != nil {
		return err
	}
	return store.WriteCSV(w, records)
}

// Commit persists a settlement report, dated now. Rejected reports are
// refused with balance.ErrBalanceRejected and nothing is written.
func (l *Ledger) Commit(ctx context.Context, report *model.SettlementReport) ([]model.LedgerRecord, error) {
	if !report.Committable() {
		return nil, fmt.Errorf("%w: residual %s", balance.ErrBalanceRejected, report.BalanceResidual)
	}

	records := RecordsFromReport(report, l.now().Format(l.dateLayout))
	if err := l.Append(ctx, records); err != nil {
		return nil, err
	}
	metrics.SettlementsCommitted.Inc()
	return records, nil
}

// RecordsFromReport turns report lines into ledger rows, rounding money to
// MoneyScale. Raw scores are kept as entered.
func RecordsFromReport(report *model.SettlementReport, date string) []model.LedgerRecord {
	records := make([]model.LedgerRecord, 0, len(report.Lines))
	for _, line := range report.Lines {
		records = append(records, model.LedgerRecord{
			Date:       date,
			PlayerName: line.Name,
			RawScore:   line.SignedScore,
			NetPayout:  line.NetPayout.Round(MoneyScale),
			FeeShare:   line.FeeShare.Round(MoneyScale),
		})
	}
	return records
}

// Aggregate sums net payouts per player name and sorts by total descending.
// Ties are ordered by name so the result is deterministic.
func Aggregate(records []model.LedgerRecord) []model.LeaderboardEntry {
	index := make(map[string]int)
	var entries []model.LeaderboardEntry

	for _, r := range records {
		i, ok := index[r.PlayerName]
		if !ok {
			i = len(entries)
			index[r.PlayerName] = i
			entries = append(entries, model.LeaderboardEntry{
				PlayerName:          r.PlayerName,
				CumulativeNetPayout: decimal.Zero,
			})
		}
		entries[i].CumulativeNetPayout = entries[i].CumulativeNetPayout.Add(r.NetPayout)
		entries[i].Records++
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].CumulativeNetPayout, entries[j].CumulativeNetPayout
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return entries[i].PlayerName < entries[j].PlayerName
	})
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return entries
}
