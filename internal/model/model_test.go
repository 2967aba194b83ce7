package model

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerRecord_JSONFields(t *testing.T) {
	rec := LedgerRecord{
		Date:       "2026-01-02 21:00",
		PlayerName: "Alice",
		RawScore:   decimal.NewFromInt(1000),
		NetPayout:  decimal.NewFromInt(25),
		FeeShare:   decimal.Zero,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"date", "player_name", "raw_score", "net_payout", "fee_share"} {
		if _, ok := fields[k]; !ok {
			t.Errorf("missing field %q in %s", k, data)
		}
	}
	if len(fields) != 5 {
		t.Errorf("expected 5 fields, got %d: %s", len(fields), data)
	}

	// Column mapping lives in the store codecs; the struct only carries json tags.
	typ := reflect.TypeOf(rec)
	for i := 0; i < typ.NumField(); i++ {
		if tag, ok := typ.Field(i).Tag.Lookup("db"); ok {
			t.Errorf("field %s has unused db tag %q", typ.Field(i).Name, tag)
		}
	}
}
