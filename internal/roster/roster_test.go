package roster

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestValidate_Valid(t *testing.T) {
	err := Validate([]model.PlayerEntry{
		{Name: "Alice", Magnitude: d(100), IsWinner: true},
		{Name: "Bob", Magnitude: d(0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name    string
		entries []model.PlayerEntry
		wantErr error
		wantIdx int
	}{
		{
			name:    "empty name",
			entries: []model.PlayerEntry{{Name: "Alice", Magnitude: d(1)}, {Name: "", Magnitude: d(1)}},
			wantErr: ErrEmptyName,
			wantIdx: 1,
		},
		{
			name:    "whitespace name",
			entries: []model.PlayerEntry{{Name: "   ", Magnitude: d(1)}},
			wantErr: ErrEmptyName,
			wantIdx: 0,
		},
		{
			name:    "placeholder",
			entries: []model.PlayerEntry{{Name: "Alice"}, {Name: "Bob"}, {Name: PlaceholderName}},
			wantErr: ErrPlaceholderName,
			wantIdx: 2,
		},
		{
			name:    "negative score",
			entries: []model.PlayerEntry{{Name: "Alice", Magnitude: d(-5)}},
			wantErr: ErrNegativeMagnitude,
			wantIdx: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.entries)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Index != tt.wantIdx {
				t.Errorf("expected index %d, got %d", tt.wantIdx, ve.Index)
			}
		})
	}
}

func TestIsPlaceholder_CaseInsensitive(t *testing.T) {
	if !IsPlaceholder("  + Add Custom ") {
		t.Error("expected placeholder match regardless of case and padding")
	}
	if IsPlaceholder("Alice") {
		t.Error("Alice is not a placeholder")
	}
}

func TestParseEntry_Valid(t *testing.T) {
	tests := []struct {
		in     string
		name   string
		score  float64
		winner bool
	}{
		{"Alice:+1200", "Alice", 1200, true},
		{"Bob:-350.5", "Bob", 350.5, false},
		{"Carol:75", "Carol", 75, true},
		{"Dan:0", "Dan", 0, true},
		{" Big Ed :-10 ", "Big Ed", 10, false},
	}
	for _, tt := range tests {
		e, err := ParseEntry(tt.in)
		if err != nil {
			t.Errorf("ParseEntry(%q): unexpected error %v", tt.in, err)
			continue
		}
		if e.Name != tt.name {
			t.Errorf("ParseEntry(%q): name = %q, want %q", tt.in, e.Name, tt.name)
		}
		if !e.Magnitude.Equal(d(tt.score)) {
			t.Errorf("ParseEntry(%q): magnitude = %s, want %v", tt.in, e.Magnitude, tt.score)
		}
		if e.IsWinner != tt.winner {
			t.Errorf("ParseEntry(%q): winner = %v, want %v", tt.in, e.IsWinner, tt.winner)
		}
	}
}

func TestParseEntry_Invalid(t *testing.T) {
	for _, in := range []string{"", "Alice", "Alice:", ":100", "Alice:abc", "Alice:+-5", "Alice:1e3"} {
		if _, err := ParseEntry(in); !errors.Is(err, ErrInvalidEntry) {
			t.Errorf("ParseEntry(%q): expected ErrInvalidEntry, got %v", in, err)
		}
	}
}

func TestParseEntries_StopsAtFirstError(t *testing.T) {
	_, err := ParseEntries([]string{"A:+1", "broken", "B:-1"})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}

	entries, err := ParseEntries([]string{"A:+1", "B:-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestRoster_Defaults(t *testing.T) {
	r := New()
	if r.Len() != DefaultSeats {
		t.Fatalf("expected %d seats, got %d", DefaultSeats, r.Len())
	}
	snap := r.Snapshot()
	if snap[0].Name != "Player 1" || snap[5].Name != "Player 6" {
		t.Errorf("unexpected default names: %q, %q", snap[0].Name, snap[5].Name)
	}
	for _, p := range snap {
		if !p.IsWinner || !p.Magnitude.IsZero() {
			t.Errorf("%s should start as a winner with score 0", p.Name)
		}
	}
}

func TestRoster_AddRemoveReset(t *testing.T) {
	r := New()
	r.Add()
	if r.Len() != 7 || r.Snapshot()[6].Name != "Player 7" {
		t.Fatalf("expected Player 7 appended, got %+v", r.Snapshot())
	}

	if err := r.Remove(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Snapshot()[0].Name != "Player 2" {
		t.Errorf("expected Player 2 first after removal, got %s", r.Snapshot()[0].Name)
	}
	if err := r.Remove(99); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}

	if err := r.Set(0, model.PlayerEntry{Name: "Alice", Magnitude: d(500), IsWinner: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Reset()
	p := r.Snapshot()[0]
	if p.Name != "Alice" || !p.Magnitude.IsZero() || !p.IsWinner {
		t.Errorf("reset should keep name and clear score/direction, got %+v", p)
	}
}

func TestRoster_SnapshotIsCopy(t *testing.T) {
	r := New()
	snap := r.Snapshot()
	snap[0].Name = "Mutated"
	if r.Snapshot()[0].Name != "Player 1" {
		t.Error("mutating a snapshot must not affect the roster")
	}
}
