package sheet

import (
	"fmt"
	"strings"

	"github.com/eugenenazirov/packing-tracker/internal/csvcodec"
	"github.com/eugenenazirov/packing-tracker/internal/record"
)

// Row layout shared by both directions: date, customer, mode, product,
// SI qty, qty, one column per catalog key in catalog order, remark. The
// store prepends its own creation timestamp, so read rows may carry one
// extra leading cell.
const baseColumns = 6

func columnCount() int {
	return baseColumns + len(record.Keys()) + 1
}

func rowToRecord(index int, row []string) record.PackingRecord {
	cells := row
	rec := record.PackingRecord{
		ID:            fmt.Sprintf("row-%d", index),
		PackageCounts: make(map[record.Key]int),
	}
	if len(row) == columnCount()+1 {
		rec.Timestamp = strings.TrimSpace(row[0])
		cells = row[1:]
	}

	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	if iso, ok := record.ParseDisplayDate(cell(0)); ok {
		rec.Date = iso
	} else {
		rec.Date = cell(0)
	}
	rec.Customer = cell(1)
	rec.Mode = cell(2)
	rec.Product = cell(3)
	rec.SIQty = csvcodec.Number(cell(4))
	rec.Qty = csvcodec.Number(cell(5))

	keys := record.Keys()
	for i, key := range keys {
		if count := csvcodec.Number(cell(baseColumns + i)); count > 0 {
			rec.PackageCounts[key] = count
		}
	}
	rec.Remark = cell(baseColumns + len(keys))

	return record.Normalize(rec)
}

func recordToRow(rec record.PackingRecord) []any {
	row := []any{
		record.FormatDisplayDate(rec.Date, "/"),
		rec.Customer,
		rec.Mode,
		rec.Product,
		rec.SIQty,
		rec.Qty,
	}
	for _, key := range record.Keys() {
		row = append(row, rec.Count(key))
	}
	row = append(row, rec.Remark)
	return row
}
