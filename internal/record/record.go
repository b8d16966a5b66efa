package record

// SuggestedModes lists the transport modes offered by clients as defaults.
// The field itself is free text, not a closed enum.
var SuggestedModes = []string{"SEA", "AIR", "TRUCK", "COURIER"}

// PackingRecord is one logged shipment-packing event. Records are immutable
// once created; the backing store is append-only.
type PackingRecord struct {
	ID            string      `json:"id"`
	Timestamp     string      `json:"timestamp,omitempty"`
	Date          string      `json:"date"`
	Customer      string      `json:"customer"`
	Mode          string      `json:"mode"`
	Product       string      `json:"product"`
	SIQty         int         `json:"siQty"`
	Qty           int         `json:"qty"`
	Remark        string      `json:"remark,omitempty"`
	PackageCounts map[Key]int `json:"packageCounts,omitempty"`
}

// Count returns the package count for a key, defaulting to 0.
func (r PackingRecord) Count(key Key) int {
	return r.PackageCounts[key]
}

// TotalPackages sums the package counts across all catalog keys.
func (r PackingRecord) TotalPackages() int {
	total := 0
	for _, key := range catalogKeys {
		total += r.PackageCounts[key]
	}
	return total
}

// Clone returns a deep copy of the record, so callers can hand out records
// without sharing the counts map.
func (r PackingRecord) Clone() PackingRecord {
	out := r
	if r.PackageCounts != nil {
		out.PackageCounts = make(map[Key]int, len(r.PackageCounts))
		for key, count := range r.PackageCounts {
			out.PackageCounts[key] = count
		}
	}
	return out
}

// Normalize coerces out-of-range quantities to zero, drops non-catalog count
// keys, and rewrites a recognised display date into ISO form. Lenient on
// purpose: imports never reject a record over a bad number.
func Normalize(r PackingRecord) PackingRecord {
	out := r.Clone()
	if out.SIQty < 0 {
		out.SIQty = 0
	}
	if out.Qty < 0 {
		out.Qty = 0
	}
	if iso, ok := ParseDisplayDate(out.Date); ok {
		out.Date = iso
	}
	if out.PackageCounts != nil {
		for key, count := range out.PackageCounts {
			if !IsCatalogKey(string(key)) {
				delete(out.PackageCounts, key)
				continue
			}
			if count < 0 {
				out.PackageCounts[key] = 0
			}
		}
	}
	return out
}
