package itinerary

import (
	"time"

	"tripgen/internal/types"
)

// Layouts accepted for start and end dates. Anything carrying a clock or offset is
// reduced to its wall-clock components, so the result never depends on the zone of
// the caller.
var dateLayouts = []string{
	types.DateLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

const secondsPerDay = 24 * 60 * 60

// parseWallClock parses s and returns its wall-clock reading pinned to UTC.
func parseWallClock(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			lastErr = err
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
	}
	return time.Time{}, lastErr
}

// DayCount returns ceil((end - start) / 1 day) and the calendar date of start.
// Unparsable dates or a span that is not positive yield ErrInvalidDateRange.
func DayCount(startDate, endDate string) (int, types.Date, error) {
	start, err := parseWallClock(startDate)
	if err != nil {
		return 0, types.Date{}, ErrInvalidDateRange
	}
	end, err := parseWallClock(endDate)
	if err != nil {
		return 0, types.Date{}, ErrInvalidDateRange
	}
	// Whole seconds plus a nanosecond remainder; time.Duration saturates past ~292 years.
	secs := end.Unix() - start.Unix()
	nanos := end.Nanosecond() - start.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	if secs < 0 || (secs == 0 && nanos == 0) {
		return 0, types.Date{}, ErrInvalidDateRange
	}
	n := secs / secondsPerDay
	if secs%secondsPerDay != 0 || nanos > 0 {
		n++
	}
	return int(n), types.DateOf(start), nil
}

// Expand returns n consecutive calendar dates beginning at start.
func Expand(start types.Date, n int) (DateSequence, error) {
	if n <= 0 {
		return nil, ErrInvalidDateRange
	}
	seq := make(DateSequence, n)
	for i := range seq {
		seq[i] = start.AddDays(i)
	}
	return seq, nil
}
