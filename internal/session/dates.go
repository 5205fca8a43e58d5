package session

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// Today returns the local calendar date as YYYY-MM-DD. It formats the local
// wall clock directly; converting through UTC can land on the next or
// previous day near midnight.
func Today() string {
	return DateOf(time.Now())
}

// DateOf formats t's calendar date in t's own location.
func DateOf(t time.Time) string {
	return t.Format(isoDate)
}

// ToDisplayFormat turns YYYY-MM-DD into DD/MM/YYYY. Anything that does not
// look like an ISO date is returned unchanged.
func ToDisplayFormat(iso string) string {
	if len(iso) < 10 {
		return iso
	}
	parts := strings.Split(iso[:10], "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// ParseDate reads a YYYY-MM-DD session date in the local time zone.
func ParseDate(iso string) (time.Time, bool) {
	t, err := time.ParseInLocation(isoDate, strings.TrimSpace(iso), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
