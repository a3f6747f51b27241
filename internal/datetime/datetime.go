package datetime

import (
	"strings"
	"time"

	"github.com/jacoelho/qarray/internal/number"
)

// DateLayout is the canonical calendar date form used for comparisons.
const DateLayout = "2006-01-02"

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"02-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.ANSIC,
	time.UnixDate,
}

// Parse interprets value as a point in time. Numbers (and numeric strings)
// are unix seconds; strings are tried against a fixed list of layouts.
// Times without a zone are read as UTC.
func Parse(value any) (time.Time, bool) {
	switch current := value.(type) {
	case time.Time:
		return current, true
	case string:
		return parseString(current)
	}

	if seconds, ok := number.ToFloat64(value); ok {
		return time.Unix(int64(seconds), 0).UTC(), true
	}

	return time.Time{}, false
}

func parseString(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, true
		}
	}

	if seconds, ok := number.ParseString(text); ok {
		return time.Unix(int64(seconds), 0).UTC(), true
	}

	return time.Time{}, false
}

// Date normalises value to DateLayout.
func Date(value any) (string, bool) {
	parsed, ok := Parse(value)
	if !ok {
		return "", false
	}
	return parsed.Format(DateLayout), true
}

// Year returns the four digit year of value.
func Year(value any) (string, bool) {
	parsed, ok := Parse(value)
	if !ok {
		return "", false
	}
	return parsed.Format("2006"), true
}

// Month returns the two digit month of value.
func Month(value any) (string, bool) {
	parsed, ok := Parse(value)
	if !ok {
		return "", false
	}
	return parsed.Format("01"), true
}

// UnixDate returns the unix time of midnight on value's calendar date.
func UnixDate(value any) (int64, bool) {
	parsed, ok := Parse(value)
	if !ok {
		return 0, false
	}
	year, month, day := parsed.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix(), true
}
