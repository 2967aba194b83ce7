// Package balance implements the zero-sum check applied to a poker session
// before it may be settled.
//
// Poker scoring is zero-sum among the participants, so the signed scores of
// a session should add up to zero. Small residuals come from players
// rounding their counts and are tolerated; large ones mean somebody wrote a
// score down wrong and the session must not be persisted.
package balance

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// ErrBalanceRejected is returned when a caller tries to persist a settlement
// whose residual is beyond the reject tolerance.
var ErrBalanceRejected = errors.New("balance: residual exceeds reject tolerance")

var (
	// DefaultDriftTolerance is the largest |residual| still considered balanced.
	DefaultDriftTolerance = decimal.NewFromFloat(0.1)

	// DefaultRejectTolerance is the largest |residual| that may be persisted.
	DefaultRejectTolerance = decimal.NewFromInt(1000)
)

// Policy holds the two residual thresholds. Both bounds are inclusive on the
// lower status: |r| <= Drift is balanced, |r| <= Reject is drift.
type Policy struct {
	// DriftTolerance separates Balanced from MinorDrift.
	DriftTolerance decimal.Decimal

	// RejectTolerance separates MinorDrift from Rejected.
	RejectTolerance decimal.Decimal
}

// DefaultPolicy returns the 0.1 / 1000 thresholds.
func DefaultPolicy() Policy {
	return Policy{
		DriftTolerance:  DefaultDriftTolerance,
		RejectTolerance: DefaultRejectTolerance,
	}
}

// NewPolicy creates a policy with the given thresholds. Negative values are
// treated as zero, and a reject tolerance below the drift tolerance is
// raised to match it.
func NewPolicy(drift, reject decimal.Decimal) Policy {
	if drift.IsNegative() {
		drift = decimal.Zero
	}
	if reject.LessThan(drift) {
		reject = drift
	}
	return Policy{DriftTolerance: drift, RejectTolerance: reject}
}

// Residual returns Σ signedScore over the given entries.
func Residual(entries []model.SignedEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.SignedScore)
	}
	return sum
}

// Classify maps a residual onto a BalanceStatus.
func (p Policy) Classify(residual decimal.Decimal) model.BalanceStatus {
	abs := residual.Abs()
	switch {
	case abs.GreaterThan(p.RejectTolerance):
		return model.StatusRejected
	case abs.GreaterThan(p.DriftTolerance):
		return model.StatusMinorDrift
	default:
		return model.StatusBalanced
	}
}
