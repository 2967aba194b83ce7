package cli

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
	"github.com/gzqwertyuiop1234-sudo/poker/internal/roster"
)

// Prompter asks the user for input.
type Prompter interface {
	Text(label, def string) (string, error)
	Confirm(label string, def bool) (bool, error)
}

// TerminalPrompter prompts with pterm's interactive printers.
type TerminalPrompter struct{}

func (TerminalPrompter) Text(label, def string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultText(label).WithDefaultValue(def).Show()
}

func (TerminalPrompter) Confirm(label string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultText(label).WithDefaultValue(def).Show()
}

// fillRoster walks every seat of r asking for a name and a signed score,
// then offers extra seats until declined. An empty score means the player
// sat out.
func fillRoster(p Prompter, r *roster.Roster) ([]model.PlayerEntry, error) {
	for i := 0; ; i++ {
		if i == r.Len() {
			more, err := p.Confirm("Add another player?", false)
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			r.Add()
		}

		seat := r.Snapshot()[i]
		name, err := p.Text(fmt.Sprintf("Seat %d name", i+1), seat.Name)
		if err != nil {
			return nil, err
		}
		score, err := p.Text(fmt.Sprintf("%s score (+win / -loss, empty to skip)", name), "")
		if err != nil {
			return nil, err
		}
		score = strings.TrimSpace(score)
		if score == "" {
			score = "0"
		}

		e, err := roster.ParseEntry(strings.TrimSpace(name) + ":" + score)
		if err != nil {
			return nil, err
		}
		if err := r.Set(i, e); err != nil {
			return nil, err
		}
	}
	return r.Snapshot(), nil
}
