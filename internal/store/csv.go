package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/gzqwertyuiop1234-sudo/poker/internal/model"
)

// Column names of the ledger file, in write order. fee_share was added in a
// later schema version and is optional on read.
const (
	ColDate      = "date"
	ColName      = "name"
	ColRawScore  = "raw_score"
	ColNetPayout = "net_payout"
	ColFeeShare  = "fee_share"
)

// Header is the header row written to every ledger file.
var Header = []string{ColDate, ColName, ColRawScore, ColNetPayout, ColFeeShare}

// MoneyScale is the number of decimals written for money columns.
const MoneyScale = 2

// WriteCSV writes records as UTF-8 with BOM, comma-delimited, header first.
// The same format is used for the ledger file and for exports.
func WriteCSV(w io.Writer, records []model.LedgerRecord) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date,
			r.PlayerName,
			r.RawScore.String(),
			r.NetPayout.StringFixed(MoneyScale),
			r.FeeShare.StringFixed(MoneyScale),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return tw.Close()
}

// ReadCSV parses a ledger file. A leading BOM is optional. An empty input
// yields no records. Anything unparseable is reported as ErrCorrupt.
func ReadCSV(r io.Reader) ([]model.LedgerRecord, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{ColDate, ColName, ColRawScore, ColNetPayout} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrCorrupt, required)
		}
	}
	feeIdx, hasFee := cols[ColFeeShare]

	var records []model.LedgerRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		rec := model.LedgerRecord{
			Date:       row[cols[ColDate]],
			PlayerName: row[cols[ColName]],
		}
		if rec.RawScore, err = parseDecimal(row[cols[ColRawScore]]); err != nil {
			return nil, fmt.Errorf("%w: line %d raw_score: %v", ErrCorrupt, line, err)
		}
		if rec.NetPayout, err = parseDecimal(row[cols[ColNetPayout]]); err != nil {
			return nil, fmt.Errorf("%w: line %d net_payout: %v", ErrCorrupt, line, err)
		}
		if hasFee {
			if rec.FeeShare, err = parseDecimal(row[feeIdx]); err != nil {
				return nil, fmt.Errorf("%w: line %d fee_share: %v", ErrCorrupt, line, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseDecimal treats an empty cell as zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
