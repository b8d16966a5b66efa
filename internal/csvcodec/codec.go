// Package csvcodec converts between the external tabular text representation
// and in-memory packing records. Decoding is lenient: malformed numbers
// coerce to zero and unrecognised date strings pass through unchanged, so a
// messy export from the sheet still yields one record per data line.
package csvcodec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/packing-tracker/internal/record"
)

// Header names for the base record fields. The customer column is named
// "Shipment" in the external format.
const (
	headerDate     = "Date"
	headerShipment = "Shipment"
	headerMode     = "Mode"
	headerProduct  = "Product"
	headerSIQty    = "SI QTY"
	headerQty      = "QTY"
	headerRemark   = "Remark"
)

// Decode parses CSV text into packing records. The first non-empty line is
// the header row; every following non-empty line becomes exactly one record
// with ID "row-<n>" (n counted over data rows). Lines shorter than the
// header leave the trailing fields at their zero values.
func Decode(text string) ([]record.PackingRecord, error) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	if len(lines) == 1 {
		return nil, ErrNoRecords
	}

	headers := splitFields(lines[0])
	records := make([]record.PackingRecord, 0, len(lines)-1)

	for i, line := range lines[1:] {
		fields := splitFields(line)
		rec := record.PackingRecord{
			ID:            fmt.Sprintf("row-%d", i),
			PackageCounts: make(map[record.Key]int),
		}

		for j, header := range headers {
			if j >= len(fields) {
				break
			}
			value := fields[j]

			switch {
			case header == headerDate:
				if iso, ok := record.ParseDisplayDate(value); ok {
					rec.Date = iso
				} else {
					rec.Date = value
				}
			case header == headerShipment:
				rec.Customer = value
			case header == headerMode:
				rec.Mode = value
			case header == headerProduct:
				rec.Product = value
			case header == headerSIQty:
				rec.SIQty = Number(value)
			case record.IsCatalogKey(header):
				rec.PackageCounts[record.Key(header)] = Number(value)
			case strings.Contains(strings.ToUpper(header), "QTY"):
				rec.Qty = Number(value)
			case header == headerRemark:
				rec.Remark = value
			}
		}

		records = append(records, record.Normalize(rec))
	}

	return records, nil
}

// Encode serialises the filtered records into the export projection: the
// base fields followed by per-group package totals and per-group capacity
// values. Every cell is double-quote-wrapped with internal quotes doubled.
// The output is a one-way projection and is not meant to be re-decoded.
func Encode(records []record.PackingRecord, filter record.Filter) string {
	groups := record.Groups()

	headers := []string{headerDate, headerShipment, headerMode, headerProduct, headerSIQty, headerQty}
	for _, group := range groups {
		headers = append(headers, group+" Total")
	}
	for _, group := range groups {
		headers = append(headers, group+" Capacity")
	}

	var sb strings.Builder
	writeRow(&sb, headers)

	for _, r := range filter.Apply(records) {
		row := []string{
			record.FormatDisplayDate(r.Date, "/"),
			r.Customer,
			r.Mode,
			r.Product,
			strconv.Itoa(r.SIQty),
			strconv.Itoa(r.Qty),
		}
		for _, group := range groups {
			row = append(row, strconv.Itoa(groupTotal(r, group)))
		}
		for _, group := range groups {
			row = append(row, strconv.FormatFloat(groupCapacity(r, group), 'f', -1, 64))
		}
		writeRow(&sb, row)
	}

	return sb.String()
}

// ExportFilename names the downloaded file after the export date.
func ExportFilename(now time.Time) string {
	return "packing-records-" + now.Format("2006-01-02") + ".csv"
}

// Number coerces a raw cell into a non-negative-friendly integer: anything
// that does not parse as a float, including NaN, becomes 0.
func Number(raw string) int {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) {
		return 0
	}
	return int(value)
}

func groupTotal(r record.PackingRecord, group string) int {
	total := 0
	for _, key := range record.KeysInGroup(group) {
		total += r.Count(key)
	}
	return total
}

func groupCapacity(r record.PackingRecord, group string) float64 {
	capacity := 0.0
	for _, key := range record.KeysInGroup(group) {
		capacity += float64(r.Count(key)) / record.Ratio(key)
	}
	return capacity
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitFields tokenises one line on commas, honouring double-quoted fields
// with "" as an escaped quote. Embedded newlines are not supported; lines
// are split before tokenising.
func splitFields(line string) []string {
	var fields []string
	var sb strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				sb.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(sb.String()))

	return fields
}

func writeRow(sb *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}
