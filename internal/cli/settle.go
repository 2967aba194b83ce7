package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/report"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/roster"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/settlement"
)

func settleCmd(ctx context.Context, env Env, args []string) error {
	ratio, fee := env.Ratio, env.Fee

	fs := flag.NewFlagSet("settle settle", flag.ContinueOnError)
	fs.SetOutput(env.Err)
	fs.TextVar(&ratio, "ratio", env.Ratio, "points per currency unit")
	fs.TextVar(&fee, "fee", env.Fee, "total session fee, paid by the winners")
	commit := fs.Bool("commit", false, "append the settlement to the ledger")
	interactive := fs.Bool("i", false, "enter players interactively")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var entries []model.PlayerEntry
	var err error
	switch {
	case *interactive || fs.NArg() == 0:
		if env.Prompt == nil {
			return errors.New("usage: settle settle [flags] name:+score name:-score ...")
		}
		entries, err = fillRoster(env.Prompt, roster.New())
	default:
		entries, err = roster.ParseEntries(fs.Args())
	}
	if err != nil {
		return err
	}
	if err := roster.Validate(entries); err != nil {
		return err
	}

	calc, err := settlement.NewCalculator(ratio, fee, env.Policy)
	if err != nil {
		return err
	}
	rep := calc.Settle(entries)
	if err := report.Settlement(env.Out, rep); err != nil {
		return err
	}
	if !*commit {
		return nil
	}

	records, err := env.Ledger.Commit(ctx, rep)
	if errors.Is(err, balance.ErrBalanceRejected) {
		return fmt.Errorf("not committed: %w", err)
	}
	if err != nil {
		return err
	}
	slog.Info("settlement committed", "records", len(records), "residual", rep.BalanceResidual.String())
	_, err = fmt.Fprintln(env.Out, pterm.Success.Sprintf("committed %d records", len(records)))
	return err
}
