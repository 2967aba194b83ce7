package settlement

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func win(name string, score float64) model.PlayerEntry {
	return model.PlayerEntry{Name: name, Magnitude: d(score), IsWinner: true}
}

func lose(name string, score float64) model.PlayerEntry {
	return model.PlayerEntry{Name: name, Magnitude: d(score), IsWinner: false}
}

func mustCalc(t *testing.T, ratio, fee float64) *Calculator {
	t.Helper()
	c, err := NewCalculator(d(ratio), d(fee), balance.DefaultPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func lineFor(t *testing.T, r *model.SettlementReport, name string) model.SettlementLine {
	t.Helper()
	for _, l := range r.Lines {
		if l.Name == name {
			return l
		}
	}
	t.Fatalf("no line for %s", name)
	return model.SettlementLine{}
}

// --- Constructor tests ---

func TestNewCalculator_ZeroRatio(t *testing.T) {
	_, err := NewCalculator(d(0), d(0), balance.DefaultPolicy())
	if err != ErrInvalidRatio {
		t.Errorf("expected ErrInvalidRatio for ratio=0, got %v", err)
	}
}

func TestNewCalculator_NegativeRatio(t *testing.T) {
	_, err := NewCalculator(d(-40), d(0), balance.DefaultPolicy())
	if err != ErrInvalidRatio {
		t.Errorf("expected ErrInvalidRatio for ratio=-40, got %v", err)
	}
}

func TestNewCalculator_NegativeFee(t *testing.T) {
	_, err := NewCalculator(d(40), d(-1), balance.DefaultPolicy())
	if err != ErrNegativeFee {
		t.Errorf("expected ErrNegativeFee, got %v", err)
	}
}

// --- Scenarios ---

func TestSettle_TwoPlayersBalanced(t *testing.T) {
	c := mustCalc(t, 40, 0)
	r := c.Settle([]model.PlayerEntry{win("A", 1000), lose("B", 1000)})

	if r.BalanceStatus != model.StatusBalanced {
		t.Errorf("expected balanced, got %s", r.BalanceStatus)
	}
	if !r.BalanceResidual.IsZero() {
		t.Errorf("expected residual 0, got %s", r.BalanceResidual)
	}
	if a := lineFor(t, r, "A"); !a.NetPayout.Equal(d(25)) {
		t.Errorf("A net: expected 25, got %s", a.NetPayout)
	}
	if b := lineFor(t, r, "B"); !b.NetPayout.Equal(d(-25)) {
		t.Errorf("B net: expected -25, got %s", b.NetPayout)
	}
}

func TestSettle_FeeChargedToSoleWinner(t *testing.T) {
	c := mustCalc(t, 40, 80)
	r := c.Settle([]model.PlayerEntry{win("A", 2000), lose("B", 1000), lose("C", 1000)})

	if r.BalanceStatus != model.StatusBalanced {
		t.Errorf("expected balanced, got %s", r.BalanceStatus)
	}
	if !r.WinnerSum.Equal(d(2000)) {
		t.Errorf("expected winnerSum 2000, got %s", r.WinnerSum)
	}

	a := lineFor(t, r, "A")
	if !a.RawPayout.Equal(d(50)) {
		t.Errorf("A raw: expected 50, got %s", a.RawPayout)
	}
	if !a.FeeShare.Equal(d(80)) {
		t.Errorf("A fee: expected 80, got %s", a.FeeShare)
	}
	if !a.NetPayout.Equal(d(-30)) {
		t.Errorf("A net: expected -30, got %s", a.NetPayout)
	}
	for _, name := range []string{"B", "C"} {
		l := lineFor(t, r, name)
		if !l.NetPayout.Equal(d(-25)) {
			t.Errorf("%s net: expected -25, got %s", name, l.NetPayout)
		}
		if !l.FeeShare.IsZero() {
			t.Errorf("%s should pay no fee, got %s", name, l.FeeShare)
		}
	}
}

func TestSettle_MinorDriftStillComputes(t *testing.T) {
	c := mustCalc(t, 40, 0)
	r := c.Settle([]model.PlayerEntry{win("A", 500)})

	if r.BalanceStatus != model.StatusMinorDrift {
		t.Errorf("expected minor drift, got %s", r.BalanceStatus)
	}
	if !r.BalanceResidual.Equal(d(500)) {
		t.Errorf("expected residual 500, got %s", r.BalanceResidual)
	}
	if !r.Committable() {
		t.Error("minor drift report should be committable")
	}
	if a := lineFor(t, r, "A"); !a.NetPayout.Equal(d(12.5)) {
		t.Errorf("A net: expected 12.5, got %s", a.NetPayout)
	}
}

func TestSettle_LargeResidualRejected(t *testing.T) {
	c := mustCalc(t, 40, 0)
	r := c.Settle([]model.PlayerEntry{win("A", 1500)})

	if r.BalanceStatus != model.StatusRejected {
		t.Errorf("expected rejected, got %s", r.BalanceStatus)
	}
	if r.Committable() {
		t.Error("rejected report must not be committable")
	}
	if !r.BalanceResidual.Equal(d(1500)) {
		t.Errorf("expected residual 1500 to be reported, got %s", r.BalanceResidual)
	}
}

// --- Properties ---

func TestSettle_ZeroMagnitudeExcluded(t *testing.T) {
	c := mustCalc(t, 40, 10)
	r := c.Settle([]model.PlayerEntry{
		win("A", 1000),
		win("Idle", 0),
		lose("Ghost", 0),
		lose("B", 1000),
	})

	if len(r.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(r.Lines))
	}
	for _, l := range r.Lines {
		if l.Name == "Idle" || l.Name == "Ghost" {
			t.Errorf("zero-magnitude entry %s must not appear", l.Name)
		}
	}
}

func TestSettle_ResidualEqualsSumOfLines(t *testing.T) {
	c := mustCalc(t, 40, 0)
	r := c.Settle([]model.PlayerEntry{
		win("A", 1234.5), lose("B", 1000.25), lose("C", 200.1), win("D", 0.3),
	})

	sum := decimal.Zero
	for _, l := range r.Lines {
		sum = sum.Add(l.SignedScore)
	}
	if !sum.Equal(r.BalanceResidual) {
		t.Errorf("Σ signedScore = %s, residual = %s", sum, r.BalanceResidual)
	}
}

func TestSettle_NoWinnersNoFee(t *testing.T) {
	c := mustCalc(t, 40, 100)
	r := c.Settle([]model.PlayerEntry{lose("A", 300), lose("B", 200)})

	if !r.WinnerSum.IsZero() {
		t.Fatalf("expected zero winnerSum, got %s", r.WinnerSum)
	}
	for _, l := range r.Lines {
		if !l.FeeShare.IsZero() {
			t.Errorf("%s: expected no fee without winners, got %s", l.Name, l.FeeShare)
		}
		if l.Rank != 0 {
			t.Errorf("%s: loser must not be ranked, got %d", l.Name, l.Rank)
		}
	}
}

func TestSettle_FeeFullyDistributedAmongWinners(t *testing.T) {
	c := mustCalc(t, 40, 100)
	r := c.Settle([]model.PlayerEntry{
		win("A", 700), win("B", 200), win("C", 100), lose("D", 1000),
	})

	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.FeeShare)
	}
	if total.Sub(d(100)).Abs().GreaterThan(d(0.000001)) {
		t.Errorf("fee shares should sum to 100, got %s", total)
	}
	if a := lineFor(t, r, "A"); !a.FeeShare.Equal(d(70)) {
		t.Errorf("A fee: expected 70, got %s", a.FeeShare)
	}
}

func TestSettle_UnevenFeeSplitSumsWithinTolerance(t *testing.T) {
	c := mustCalc(t, 40, 100)
	r := c.Settle([]model.PlayerEntry{
		win("A", 100), win("B", 100), win("C", 100), lose("D", 300),
	})

	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.FeeShare)
	}
	if total.Sub(d(100)).Abs().GreaterThan(d(0.000001)) {
		t.Errorf("fee shares should sum to 100, got %s", total)
	}
}

func TestSettle_SortedDescendingWithRanks(t *testing.T) {
	c := mustCalc(t, 40, 0)
	r := c.Settle([]model.PlayerEntry{
		lose("E", 900), win("B", 300), win("D", 100), win("A", 400), win("C", 200), lose("F", 100),
	})

	want := []struct {
		name string
		rank int
	}{
		{"A", 1}, {"B", 2}, {"C", 3}, {"D", 0}, {"F", 0}, {"E", 0},
	}
	if len(r.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(r.Lines))
	}
	for i, w := range want {
		if r.Lines[i].Name != w.name {
			t.Errorf("position %d: expected %s, got %s", i, w.name, r.Lines[i].Name)
		}
		if r.Lines[i].Rank != w.rank {
			t.Errorf("%s: expected rank %d, got %d", w.name, w.rank, r.Lines[i].Rank)
		}
	}
}

func TestSettle_SingleWinnerOnlyOneRank(t *testing.T) {
	c := mustCalc(t, 40, 0)
	r := c.Settle([]model.PlayerEntry{win("A", 300), lose("B", 100), lose("C", 200)})

	ranked := 0
	for _, l := range r.Lines {
		if l.Rank > 0 {
			ranked++
		}
	}
	if ranked != 1 {
		t.Errorf("expected exactly one ranked line, got %d", ranked)
	}
}

func TestSettle_Deterministic(t *testing.T) {
	c := mustCalc(t, 40, 55)
	entries := []model.PlayerEntry{
		win("A", 1000), win("B", 1000), lose("C", 1500), lose("D", 500),
	}
	first := c.Settle(entries)
	second := c.Settle(entries)

	if len(first.Lines) != len(second.Lines) {
		t.Fatalf("line counts differ: %d vs %d", len(first.Lines), len(second.Lines))
	}
	for i := range first.Lines {
		a, b := first.Lines[i], second.Lines[i]
		if a.Name != b.Name || !a.NetPayout.Equal(b.NetPayout) || !a.FeeShare.Equal(b.FeeShare) || a.Rank != b.Rank {
			t.Errorf("line %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestSettle_InputNotMutated(t *testing.T) {
	c := mustCalc(t, 40, 0)
	entries := []model.PlayerEntry{lose("B", 100), win("A", 100)}
	c.Settle(entries)

	if entries[0].Name != "B" || entries[1].Name != "A" {
		t.Error("Settle must not reorder the caller's entries")
	}
}

func TestSettle_Empty(t *testing.T) {
	c := mustCalc(t, 40, 10)
	r := c.Settle(nil)

	if len(r.Lines) != 0 {
		t.Errorf("expected no lines, got %d", len(r.Lines))
	}
	if r.BalanceStatus != model.StatusBalanced {
		t.Errorf("expected balanced, got %s", r.BalanceStatus)
	}
}

func TestFeeShare(t *testing.T) {
	c := mustCalc(t, 40, 90)

	tests := []struct {
		score, winnerSum, want float64
	}{
		{300, 900, 30},
		{900, 900, 90},
		{-300, 900, 0},
		{300, 0, 0},
		{0, 900, 0},
	}
	for _, tt := range tests {
		got := c.FeeShare(d(tt.score), d(tt.winnerSum))
		if !got.Equal(d(tt.want)) {
			t.Errorf("FeeShare(%v, %v) = %s, want %v", tt.score, tt.winnerSum, got, tt.want)
		}
	}
}
