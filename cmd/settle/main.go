package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/cli"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/config"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/ledger"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/store"
)

func main() {
	slog.SetDefault(slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger)))

	ledgerPath := flag.String("ledger", "", "ledger CSV file (env: LEDGER_PATH)")
	flag.Usage = func() { cli.Usage(os.Stderr) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.Usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Println("config error:", err)
		os.Exit(1)
	}

	path := cfg.LedgerPath
	if p := strings.TrimSpace(*ledgerPath); p != "" {
		path = p
	}

	env := cli.Env{
		Ledger: ledger.New(store.NewFileStore(path), ledger.WithDateLayout(cfg.DateLayout)),
		Ratio:  cfg.ExchangeRatio,
		Fee:    cfg.TotalFee,
		Policy: balance.NewPolicy(cfg.DriftTolerance, cfg.RejectTolerance),
		Out:    os.Stdout,
		Err:    os.Stderr,
		Prompt: cli.TerminalPrompter{},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Dispatch(ctx, env, args); err != nil {
		pterm.Error.Println(err)
		stop()
		os.Exit(1)
	}
}
