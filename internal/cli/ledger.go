package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/report"
)

func leaderboardCmd(ctx context.Context, env Env) error {
	board, err := env.Ledger.Leaderboard(ctx)
	if err != nil {
		return err
	}
	return report.Leaderboard(env.Out, board)
}

func recordsCmd(ctx context.Context, env Env) error {
	records, err := env.Ledger.ReadAll(ctx)
	if err != nil {
		return err
	}
	return report.Records(env.Out, records)
}

func exportCmd(ctx context.Context, env Env, args []string) error {
	fs := flag.NewFlagSet("settle export", flag.ContinueOnError)
	fs.SetOutput(env.Err)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		return env.Ledger.Export(ctx, env.Out)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := env.Ledger.Export(ctx, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.Err, pterm.Success.Sprintf("ledger exported to %s", *out))
	return err
}

func purgeCmd(ctx context.Context, env Env, args []string) error {
	fs := flag.NewFlagSet("settle purge", flag.ContinueOnError)
	fs.SetOutput(env.Err)
	yes := fs.Bool("yes", false, "confirm deleting every record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("refusing to purge without -yes")
	}

	if err := env.Ledger.Purge(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(env.Out, pterm.Success.Sprint("ledger purged"))
	return err
}
