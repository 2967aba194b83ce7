// Package report renders settlements and ledger views for a terminal.
//
// Formatting is display only: values are rounded to one decimal here and
// never written back anywhere.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// DisplayScale is the number of decimals shown for money.
const DisplayScale int32 = 1

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// Medal returns the badge for a rank, or "" for unranked lines.
func Medal(rank int) string {
	return medals[rank]
}

// SignedMoney formats a payout with an explicit sign. Small losses that
// round to zero keep their minus, e.g. -0.04 prints "-0.0".
func SignedMoney(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-" + v.Abs().StringFixed(DisplayScale)
	}
	return "+" + v.StringFixed(DisplayScale)
}

// FeeMoney formats a fee share as a deduction, e.g. "-1.5".
func FeeMoney(v decimal.Decimal) string {
	return "-" + v.Abs().StringFixed(DisplayScale)
}

// WholeScore drops the fractional part of a score, toward zero.
func WholeScore(v decimal.Decimal) string {
	return strconv.FormatInt(v.IntPart(), 10)
}

func colorMoney(v decimal.Decimal, s string) string {
	if v.IsNegative() {
		return pterm.Red(s)
	}
	return pterm.Green(s)
}

// Banner describes the balance status of a report in one line.
func Banner(r *model.SettlementReport) string {
	residual := r.BalanceResidual.String()
	switch r.BalanceStatus {
	case model.StatusBalanced:
		return pterm.Success.Sprint("scores balance")
	case model.StatusMinorDrift:
		return pterm.Warning.Sprintf("scores drift by %s points (ignored)", residual)
	default:
		return pterm.Error.Sprintf("scores are off by %s points, check the entries", residual)
	}
}

// Settlement writes the banner and, unless the report is rejected, the
// payout table.
func Settlement(w io.Writer, r *model.SettlementReport) error {
	if _, err := fmt.Fprintln(w, Banner(r)); err != nil {
		return err
	}
	if !r.Committable() {
		return nil
	}

	data := pterm.TableData{{"", "Player", "Net", "Raw", "Fee"}}
	for _, line := range r.Lines {
		data = append(data, []string{
			Medal(line.Rank),
			line.Name,
			colorMoney(line.NetPayout, SignedMoney(line.NetPayout)),
			WholeScore(line.SignedScore),
			FeeMoney(line.FeeShare),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render settlement: %w", err)
	}
	_, err = fmt.Fprintf(w, "ratio %s, fee %s\n%s\n", r.ExchangeRatio, r.TotalFee, table)
	return err
}

// Leaderboard writes cumulative standings in the given order.
func Leaderboard(w io.Writer, board []model.LeaderboardEntry) error {
	if len(board) == 0 {
		_, err := fmt.Fprintln(w, pterm.Info.Sprint("no settlements recorded yet"))
		return err
	}

	data := pterm.TableData{{"#", "Player", "Total", "Sessions"}}
	for i, e := range board {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			e.PlayerName,
			colorMoney(e.CumulativeNetPayout, SignedMoney(e.CumulativeNetPayout)),
			strconv.Itoa(e.Records),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render leaderboard: %w", err)
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

// Records writes the raw ledger rows in storage order.
func Records(w io.Writer, records []model.LedgerRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, pterm.Info.Sprint("ledger is empty"))
		return err
	}

	data := pterm.TableData{{"Date", "Player", "Raw", "Net", "Fee"}}
	for _, r := range records {
		data = append(data, []string{
			r.Date,
			r.PlayerName,
			WholeScore(r.RawScore),
			SignedMoney(r.NetPayout),
			FeeMoney(r.FeeShare),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render records: %w", err)
	}
	_, err = fmt.Fprintln(w, table)
	return err
}
