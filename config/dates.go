package config

import "time"

// Day strips t down to its calendar date, as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inputLayout reads DateLayout dates and also takes day and month without
// a leading zero, e.g. 1/2/2027.
const inputLayout = "2/1/2006"

// ParseDate parses a day/month/year date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(inputLayout, s)
}

// FilterFrom keeps the days on or after from.
func FilterFrom(days []time.Time, from time.Time) []time.Time {
	start := Day(from)
	var out []time.Time
	for _, d := range days {
		if !Day(d).Before(start) {
			out = append(out, d)
		}
	}
	return out
}

// FormatWithWeekday renders a day as "02/01/2006 (Monday)".
func FormatWithWeekday(day time.Time) string {
	return day.Format(DateLayout + " (Monday)")
}

// IsPast reports whether day is before the calendar date of now.
func IsPast(day, now time.Time) bool {
	return Day(day).Before(Day(now))
}
