// Package settlement converts a poker session's scores into money.
//
// Given the signed score of every participant, a Calculator:
//   - checks the session is (close to) zero-sum using a balance.Policy
//   - converts points to currency with the exchange ratio (points per unit)
//   - charges the total table fee to the winners, proportional to their
//     share of the total winnings
//   - orders the lines by score and hands out rank badges to the top three
//     winners
//
// All monetary values use shopspring/decimal, never float64 for money.
// Nothing is rounded here; the ledger rounds when it produces records.
package settlement

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

var (
	// ErrInvalidRatio is returned when the exchange ratio is <= 0.
	ErrInvalidRatio = errors.New("settlement: exchange ratio must be positive")

	// ErrNegativeFee is returned when the total fee is < 0.
	ErrNegativeFee = errors.New("settlement: total fee must not be negative")

	// DefaultExchangeRatio is the points-per-currency-unit used when none is given.
	DefaultExchangeRatio = decimal.NewFromInt(40)

	// RankedPlaces is how many winners receive a rank badge.
	RankedPlaces = 3
)

// Calculator settles sessions for one exchange ratio and fee.
// It is stateless: entries are passed in, a report is returned.
type Calculator struct {
	ratio  decimal.Decimal
	fee    decimal.Decimal
	policy balance.Policy
}

// NewCalculator creates a calculator. ratio must be > 0 and fee >= 0.
func NewCalculator(ratio, fee decimal.Decimal, policy balance.Policy) (*Calculator, error) {
	if ratio.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidRatio
	}
	if fee.IsNegative() {
		return nil, ErrNegativeFee
	}
	return &Calculator{ratio: ratio, fee: fee, policy: policy}, nil
}

// Ratio returns the exchange ratio.
func (c *Calculator) Ratio() decimal.Decimal {
	return c.ratio
}

// Fee returns the total session fee.
func (c *Calculator) Fee() decimal.Decimal {
	return c.fee
}

// Participants drops zero-magnitude entries and converts the rest to their
// signed form, preserving input order.
func Participants(entries []model.PlayerEntry) []model.SignedEntry {
	signed := make([]model.SignedEntry, 0, len(entries))
	for _, e := range entries {
		if e.Magnitude.IsZero() {
			continue
		}
		signed = append(signed, e.Signed())
	}
	return signed
}

// Settle computes the settlement report for a finalized list of entries.
//
// A Rejected balance is a normal outcome, not an error: the lines are still
// computed so the caller can display them, but the report is not
// committable.
func (c *Calculator) Settle(entries []model.PlayerEntry) *model.SettlementReport {
	signed := Participants(entries)
	residual := balance.Residual(signed)

	winnerSum := decimal.Zero
	for _, e := range signed {
		if e.SignedScore.IsPositive() {
			winnerSum = winnerSum.Add(e.SignedScore)
		}
	}

	lines := make([]model.SettlementLine, 0, len(signed))
	for _, e := range signed {
		raw := e.SignedScore.Div(c.ratio)
		fee := c.FeeShare(e.SignedScore, winnerSum)
		lines = append(lines, model.SettlementLine{
			Name:        e.Name,
			SignedScore: e.SignedScore,
			RawPayout:   raw,
			FeeShare:    fee,
			NetPayout:   raw.Sub(fee),
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].SignedScore.GreaterThan(lines[j].SignedScore)
	})
	assignRanks(lines)

	return &model.SettlementReport{
		Lines:           lines,
		ExchangeRatio:   c.ratio,
		TotalFee:        c.fee,
		WinnerSum:       winnerSum,
		BalanceResidual: residual,
		BalanceStatus:   c.policy.Classify(residual),
	}
}

// FeeShare is the part of the total fee charged to a player with the given
// signed score. Only winners pay, and only when there are winnings to split.
func (c *Calculator) FeeShare(signedScore, winnerSum decimal.Decimal) decimal.Decimal {
	if !signedScore.IsPositive() || !winnerSum.IsPositive() {
		return decimal.Zero
	}
	return c.fee.Mul(signedScore).Div(winnerSum)
}

// assignRanks badges the first RankedPlaces lines, provided they are winners.
// Lines must already be sorted by score descending.
func assignRanks(lines []model.SettlementLine) {
	for i := range lines {
		if i >= RankedPlaces || !lines[i].SignedScore.IsPositive() {
			return
		}
		lines[i].Rank = i + 1
	}
}
