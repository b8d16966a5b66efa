package record

// Filter selects records for aggregation and export. The zero value matches
// every record. Filters are explicit immutable inputs; nothing in the engine
// reads process-wide state.
type Filter struct {
	Customer string
	Mode     string
	Year     string // "2024"
	Month    string // "01".."12"
}

// Match reports whether a record satisfies every populated criterion.
// Year and month compare against the ISO date prefix, so records whose date
// never made it into ISO form simply do not match a year/month filter.
func (f Filter) Match(r PackingRecord) bool {
	if f.Customer != "" && r.Customer != f.Customer {
		return false
	}
	if f.Mode != "" && r.Mode != f.Mode {
		return false
	}
	if f.Year != "" {
		if len(r.Date) < 4 || r.Date[:4] != f.Year {
			return false
		}
	}
	if f.Month != "" {
		if len(r.Date) < 7 || r.Date[5:7] != f.Month {
			return false
		}
	}
	return true
}

// Apply returns the records matching the filter, preserving input order.
func (f Filter) Apply(records []PackingRecord) []PackingRecord {
	if f == (Filter{}) {
		return records
	}
	out := make([]PackingRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
