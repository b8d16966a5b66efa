package record

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	displayDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	isoDatePattern     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// ParseDisplayDate converts a day-first display date (25/12/2024, 5/3/2024,
// or the dash-separated variants) into ISO YYYY-MM-DD. The second return
// value is false when the input does not match the display pattern; callers
// keep the raw string in that case.
func ParseDisplayDate(raw string) (string, bool) {
	m := displayDatePattern.FindStringSubmatch(raw)
	if m == nil {
		return raw, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day), true
}

// FormatDisplayDate renders an ISO date back into day-first display form
// using the given separator ("/" or "-"). Non-ISO input passes through
// unchanged so the round trip stays lossless either way.
func FormatDisplayDate(iso, sep string) string {
	m := isoDatePattern.FindStringSubmatch(iso)
	if m == nil {
		return iso
	}
	return m[3] + sep + m[2] + sep + m[1]
}
