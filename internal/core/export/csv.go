package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/swaplab/swap-history/internal/core/history"
)

// Columns is the persisted export contract. Downstream consumers of the
// exported file parse by header name, so the set and order must stay stable
// across versions.
var Columns = []string{
	"day",
	"swapId",
	"status",
	"timestamp",
	"fromCurrency",
	"fromAmount",
	"toCurrency",
	"toAmount",
	"accountId",
}

const dayFormat = "2006-01-02"

// ToRecords flattens a History into one row per operation, preserving the
// History traversal order (day-descending, then newest-first within a day)
// so the export matches the on-screen order exactly.
//
// Value formatting is fixed: day as 2006-01-02, timestamp as RFC 3339 in
// UTC, amounts via decimal's canonical string form. Identical input yields
// byte-identical rows.
func ToRecords(h history.History) [][]string {
	records := make([][]string, 0, h.OperationCount())
	for _, section := range h {
		day := section.Day.Format(dayFormat)
		for _, op := range section.Data {
			records = append(records, []string{
				day,
				op.SwapID,
				string(op.Status),
				op.Timestamp.UTC().Format(time.RFC3339),
				op.FromCurrency,
				op.FromAmount.String(),
				op.ToCurrency,
				op.ToAmount.String(),
				op.AccountID,
			})
		}
	}
	return records
}

// Serialize renders the history as UTF-8 CSV text: header row followed by
// one row per operation. Quoting follows RFC 4180 — fields containing the
// delimiter, a quote, or a newline are quoted and embedded quotes doubled.
func Serialize(h history.History) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, record := range ToRecords(h) {
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

// Filename returns the suggested export filename for the given date,
// e.g. "swap-history-2026.08.30.csv".
func Filename(now time.Time) string {
	return "swap-history-" + now.Format("2006.01.02") + ".csv"
}
