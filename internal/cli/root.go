// Package cli implements the settle terminal client: settling a session from
// the command line and reading or purging the local ledger.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/balance"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/ledger"
)

// Env is what every command runs against.
type Env struct {
	Ledger *ledger.Ledger
	Ratio  decimal.Decimal
	Fee    decimal.Decimal
	Policy balance.Policy
	Out    io.Writer
	Err    io.Writer
	Prompt Prompter // nil disables interactive entry
}

// Usage writes the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprint(w, `settle [-ledger file] <command> [flags]

Global Flags:
  -ledger       ledger CSV file (env: LEDGER_PATH)

Commands:
  settle       [-ratio 40] [-fee 0] [-commit] [-i] name:+score name:-score ...
  leaderboard  cumulative net payout per player
  records      every ledger row
  export       [-o file] write the ledger CSV
  purge        -yes  delete the whole ledger
`)
}

// Dispatch runs the subcommand named by args[0] with the remaining args as
// its flags. An empty or unknown command prints usage and returns an error.
func Dispatch(ctx context.Context, env Env, args []string) error {
	if len(args) == 0 {
		Usage(env.Err)
		return errors.New("missing command")
	}
	switch args[0] {
	case "settle":
		return settleCmd(ctx, env, args[1:])
	case "leaderboard":
		return leaderboardCmd(ctx, env)
	case "records":
		return recordsCmd(ctx, env)
	case "export":
		return exportCmd(ctx, env, args[1:])
	case "purge":
		return purgeCmd(ctx, env, args[1:])
	case "help", "-h", "--help":
		Usage(env.Out)
		return nil
	default:
		Usage(env.Err)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
