package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func rec(date, name string, raw, net, fee float64) model.LedgerRecord {
	return model.LedgerRecord{
		Date:       date,
		PlayerName: name,
		RawScore:   d(raw),
		NetPayout:  d(net),
		FeeShare:   d(fee),
	}
}

func assertSameRecords(t *testing.T, want, got []model.LedgerRecord) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Date, got[i].Date, "row %d date", i)
		assert.Equal(t, want[i].PlayerName, got[i].PlayerName, "row %d name", i)
		assert.True(t, want[i].RawScore.Equal(got[i].RawScore), "row %d raw_score: want %s got %s", i, want[i].RawScore, got[i].RawScore)
		assert.True(t, want[i].NetPayout.Equal(got[i].NetPayout), "row %d net_payout: want %s got %s", i, want[i].NetPayout, got[i].NetPayout)
		assert.True(t, want[i].FeeShare.Equal(got[i].FeeShare), "row %d fee_share: want %s got %s", i, want[i].FeeShare, got[i].FeeShare)
	}
}

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("empty store reads empty", func(t *testing.T) {
		st := newStore(t)
		got, err := st.ReadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("batches append contiguously in order", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		first := []model.LedgerRecord{
			rec("2026-01-02 21:00", "Alice", 1000, 25, 0),
			rec("2026-01-02 21:00", "Bob", -1000, -25, 0),
		}
		second := []model.LedgerRecord{
			rec("2026-01-09 22:30", "Carol", 2000, -30, 80),
			rec("2026-01-09 22:30", "Alice", -1000, -25, 0),
			rec("2026-01-09 22:30", "Bob", -1000, -25, 0),
		}
		require.NoError(t, st.Append(ctx, first))
		require.NoError(t, st.Append(ctx, second))

		got, err := st.ReadAll(ctx)
		require.NoError(t, err)
		assertSameRecords(t, append(append([]model.LedgerRecord{}, first...), second...), got)
	})

	t.Run("purge empties the store", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		require.NoError(t, st.Append(ctx, []model.LedgerRecord{rec("2026-01-02 21:00", "Alice", 1, 0.03, 0)}))
		require.NoError(t, st.Purge(ctx))

		got, err := st.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)

		// Purging an already empty store is fine.
		require.NoError(t, st.Purge(ctx))
	})

	t.Run("unicode names survive", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		want := []model.LedgerRecord{rec("2026-01-02 21:00", "玩家1", 40, 1, 0)}
		require.NoError(t, st.Append(ctx, want))

		got, err := st.ReadAll(ctx)
		require.NoError(t, err)
		assertSameRecords(t, want, got)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestFileStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewFileStore(filepath.Join(t.TempDir(), "ledger.csv"))
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		st, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		return st
	})
}

func TestMemoryStore_ReadAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.Append(ctx, []model.LedgerRecord{rec("d", "Alice", 1, 1, 0)}))

	got, _ := st.ReadAll(ctx)
	got[0].PlayerName = "Mallory"

	again, _ := st.ReadAll(ctx)
	assert.Equal(t, "Alice", again[0].PlayerName)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	want := []model.LedgerRecord{rec("2026-01-02 21:00", "Alice", 1000, 25, 0)}
	require.NoError(t, st.Append(ctx, want))
	require.NoError(t, st.Close())

	st, err = OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.ReadAll(ctx)
	require.NoError(t, err)
	assertSameRecords(t, want, got)
}
