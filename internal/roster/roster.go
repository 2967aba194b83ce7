// Package roster is the data-entry side of a settlement: the editable list of
// players at the table, validation of a finalized list, and parsing of the
// compact "name:+score" text form used by the terminal client.
package roster

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// PlaceholderName is the marker a form uses for its "add custom player"
// option. It is never a valid player name.
const PlaceholderName = "+ add custom"

// DefaultSeats is how many blank players a new roster starts with.
const DefaultSeats = 6

var (
	ErrEmptyName         = errors.New("roster: player name is empty")
	ErrPlaceholderName   = errors.New("roster: player name is a placeholder")
	ErrNegativeMagnitude = errors.New("roster: score must not be negative")
	ErrInvalidEntry      = errors.New("roster: invalid entry format")
	ErrIndexOutOfRange   = errors.New("roster: player index out of range")
)

// ValidationError reports the first entry of a batch that failed validation.
type ValidationError struct {
	Index int
	Name  string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entry %d (%q): %v", e.Index, e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks every entry of a finalized batch. The whole batch is
// rejected on the first bad entry.
func Validate(entries []model.PlayerEntry) error {
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		switch {
		case name == "":
			return &ValidationError{Index: i, Name: e.Name, Err: ErrEmptyName}
		case IsPlaceholder(name):
			return &ValidationError{Index: i, Name: e.Name, Err: ErrPlaceholderName}
		case e.Magnitude.IsNegative():
			return &ValidationError{Index: i, Name: e.Name, Err: ErrNegativeMagnitude}
		}
	}
	return nil
}

// IsPlaceholder reports whether name is the form's placeholder marker.
func IsPlaceholder(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), PlaceholderName)
}

// entryRegex matches: {name}:{+|-}{score}
// Example: Alice:+1200, Bob:-350.5, Carol:0
var entryRegex = regexp.MustCompile(`^(.+):([+-]?)(\d+(?:\.\d+)?)$`)

// ParseEntry parses the text form of one entry. A leading '-' marks a loss;
// '+' or no sign marks a win.
func ParseEntry(s string) (model.PlayerEntry, error) {
	matches := entryRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return model.PlayerEntry{}, fmt.Errorf("%w: %q (expected name:+score or name:-score)", ErrInvalidEntry, s)
	}

	magnitude, err := decimal.NewFromString(matches[3])
	if err != nil {
		return model.PlayerEntry{}, fmt.Errorf("%w: bad score %s", ErrInvalidEntry, matches[3])
	}

	return model.PlayerEntry{
		Name:      strings.TrimSpace(matches[1]),
		Magnitude: magnitude,
		IsWinner:  matches[2] != "-",
	}, nil
}

// ParseEntries parses a list of text entries, stopping at the first error.
func ParseEntries(args []string) ([]model.PlayerEntry, error) {
	entries := make([]model.PlayerEntry, 0, len(args))
	for _, a := range args {
		e, err := ParseEntry(a)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Roster is the in-progress list of players being edited. It is owned by
// the caller; settlement only ever sees a Snapshot.
type Roster struct {
	players []model.PlayerEntry
}

// New creates a roster with DefaultSeats blank players.
func New() *Roster {
	r := &Roster{}
	for i := 0; i < DefaultSeats; i++ {
		r.Add()
	}
	return r
}

// Len returns the number of players.
func (r *Roster) Len() int {
	return len(r.players)
}

// Add appends a blank winner named after its seat number.
func (r *Roster) Add() {
	r.players = append(r.players, model.PlayerEntry{
		Name:      fmt.Sprintf("Player %d", len(r.players)+1),
		Magnitude: decimal.Zero,
		IsWinner:  true,
	})
}

// Remove deletes the player at index i.
func (r *Roster) Remove(i int) error {
	if i < 0 || i >= len(r.players) {
		return ErrIndexOutOfRange
	}
	r.players = append(r.players[:i], r.players[i+1:]...)
	return nil
}

// Set replaces the player at index i.
func (r *Roster) Set(i int, e model.PlayerEntry) error {
	if i < 0 || i >= len(r.players) {
		return ErrIndexOutOfRange
	}
	r.players[i] = e
	return nil
}

// Reset zeroes every score and marks everyone as a winner. Names are kept.
func (r *Roster) Reset() {
	for i := range r.players {
		r.players[i].Magnitude = decimal.Zero
		r.players[i].IsWinner = true
	}
}

// Snapshot returns a copy of the current entries.
func (r *Roster) Snapshot() []model.PlayerEntry {
	out := make([]model.PlayerEntry, len(r.players))
	copy(out, r.players)
	return out
}
