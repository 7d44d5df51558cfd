package utils

import (
	"fmt"
	"strings"
	"time"
)

// orderTimeLayouts are the formats seen in the TimeOrdered column. The
// intake workflow writes US-style datetimes; rows edited by hand sometimes
// drop the seconds or the time entirely.
var orderTimeLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
}

// ParseOrderTime parses a free-text order timestamp in the given reference
// location. Sheet timestamps are timezone-naive, so the location decides
// which instant they denote.
func ParseOrderTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range orderTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// DayStart returns midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
// Both sides are normalized to midnight first; comparing raw instants breaks
// across the timezone-naive strings the sheet holds.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayStart(a, loc).Equal(DayStart(b, loc))
}
