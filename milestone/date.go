package milestone

import (
	"strings"
	"time"
)

// DisplayDateLayout is the day-first layout used for user input and listings.
const DisplayDateLayout = "02.01.2006"

// ISODateLayout is the layout used on the wire and accepted as input.
const ISODateLayout = "2006-01-02"

// ParseDate accepts dd.mm.yyyy (single-digit day and month allowed) or yyyy-mm-dd.
// Out-of-range values such as 31.02.2024 are rejected rather than normalised.
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	layouts := []string{DisplayDateLayout, "2.1.2006", ISODateLayout}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{
		Field:  "date",
		Value:  text,
		Reason: "expected dd.mm.yyyy or yyyy-mm-dd",
	}
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date the way listings show it.
func FormatDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
