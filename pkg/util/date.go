package util

import "time"

var dayLayouts = []string{"2006-01-02", "20060102", "2006/01/02"}

// ParseDay tries the common daily-bar date layouts. Returns (t, true) if any worked.
func ParseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Day truncates a timestamp to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a date as yyyymmdd, the layout the upstream source expects.
func FormatDay(t time.Time) string {
	return t.Format("20060102")
}

// MonthKey renders a date as yyyy-mm for month-granular lookups.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// QuarterOf returns the 1-based calendar quarter of the date.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterStart returns the first day of the quarter containing t.
func QuarterStart(t time.Time) time.Time {
	q := QuarterOf(t)
	return time.Date(t.Year(), time.Month(q*3-2), 1, 0, 0, 0, 0, time.UTC)
}
