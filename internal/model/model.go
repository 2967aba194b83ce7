// Package model defines the core domain types shared across the settlement
// engine. All scores and money use shopspring/decimal, never float64.
package model

import (
	"github.com/shopspring/decimal"
)

// PlayerEntry is one row handed over by the data-entry side: the absolute
// score a player reported and whether they won or lost it.
// Entries with a zero magnitude are treated as not participating.
type PlayerEntry struct {
	Name      string          `json:"name"`
	Magnitude decimal.Decimal `json:"magnitude"`
	IsWinner  bool            `json:"is_winner"`
}

// Signed converts the entry into its signed form (+win / -loss).
func (e PlayerEntry) Signed() SignedEntry {
	score := e.Magnitude
	if !e.IsWinner {
		score = score.Neg()
	}
	return SignedEntry{Name: e.Name, SignedScore: score}
}

// SignedEntry is a participating player with a directional score.
type SignedEntry struct {
	Name        string          `json:"name"`
	SignedScore decimal.Decimal `json:"signed_score"`
}

// BalanceStatus classifies how far a session's scores are from zero-sum.
type BalanceStatus string

const (
	StatusBalanced   BalanceStatus = "balanced"
	StatusMinorDrift BalanceStatus = "minor_drift"
	StatusRejected   BalanceStatus = "rejected"
)

// SettlementLine is the computed payout for one participating player.
// Values are kept at full precision; rounding happens when a LedgerRecord
// is produced.
type SettlementLine struct {
	Name        string          `json:"name"`
	SignedScore decimal.Decimal `json:"signed_score"`
	RawPayout   decimal.Decimal `json:"raw_payout"`     // signedScore / exchangeRatio
	FeeShare    decimal.Decimal `json:"fee_share"`      // winners only
	NetPayout   decimal.Decimal `json:"net_payout"`     // rawPayout - feeShare
	Rank        int             `json:"rank,omitempty"` // 1..3 for top winners, 0 otherwise
}

// SettlementReport is the result of one settlement run. Lines are ordered by
// SignedScore descending.
type SettlementReport struct {
	Lines           []SettlementLine `json:"lines"`
	ExchangeRatio   decimal.Decimal  `json:"exchange_ratio"`
	TotalFee        decimal.Decimal  `json:"total_fee"`
	WinnerSum       decimal.Decimal  `json:"winner_sum"`
	BalanceResidual decimal.Decimal  `json:"balance_residual"` // Σ signedScore
	BalanceStatus   BalanceStatus    `json:"balance_status"`
}

// Committable reports whether the settlement may be persisted.
func (r *SettlementReport) Committable() bool {
	return r.BalanceStatus != StatusRejected
}

// LedgerRecord is an immutable persisted row. Once written, records are never
// modified or deleted individually; only a full purge removes them.
// Schema: {date, name, raw_score, net_payout, fee_share}
type LedgerRecord struct {
	Date       string          `json:"date"`
	PlayerName string          `json:"player_name"`
	RawScore   decimal.Decimal `json:"raw_score"`
	NetPayout  decimal.Decimal `json:"net_payout"`
	FeeShare   decimal.Decimal `json:"fee_share"` // zero when absent in older data
}

// LeaderboardEntry is a derived per-player total across the whole ledger.
type LeaderboardEntry struct {
	PlayerName          string          `json:"player_name"`
	CumulativeNetPayout decimal.Decimal `json:"cumulative_net_payout"`
	Records             int             `json:"records"` // rows contributing to the total
}
