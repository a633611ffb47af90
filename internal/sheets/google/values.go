package google

import (
	"budget/internal/core"
)

// tableValues converts transactions into a values matrix for the Sheets API:
// a header row in core.Columns order followed by one row per transaction.
// Amounts are sent as numbers so the sheet can sum them.
func tableValues(txs []core.Transaction) [][]interface{} {
	values := make([][]interface{}, 0, len(txs)+1)
	header := make([]interface{}, len(core.Columns))
	for i, c := range core.Columns {
		header[i] = c
	}
	values = append(values, header)
	for _, t := range txs {
		values = append(values, []interface{}{
			t.Date.String(),
			t.Type.String(),
			t.Category,
			t.Amount.InexactFloat64(),
		})
	}
	return values
}
