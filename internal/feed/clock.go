package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock converts a 12-hour clock string such as "1:05 PM" into an
// absolute time on the anchor's calendar date, in the anchor's location.
//
// Hour 12 is treated as midnight before the PM offset is applied, so
// "12:30 AM" is 00:30 and "12:30 PM" is 12:30. A missing or unrecognized
// AM/PM marker leaves the hour unmodified. Anything after the minutes
// (seconds, zone names) is ignored.
func ParseClock(s string, anchor time.Time) (time.Time, error) {
	upper := strings.ToUpper(s)
	modifier := ""
	switch {
	case strings.Contains(upper, "AM"):
		modifier = "AM"
	case strings.Contains(upper, "PM"):
		modifier = "PM"
	}
	clock := strings.NewReplacer("AM", "", "PM", "").Replace(upper)

	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid clock %q: expected hh:mm", s)
	}

	hours, err := clockField(parts[0], 23)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minutes, err := clockField(parts[1], 59)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minutes in %q: %w", s, err)
	}

	if hours == 12 {
		hours = 0
	}
	if modifier == "PM" {
		hours += 12
	}

	year, month, day := anchor.Date()
	return time.Date(year, month, day, hours, minutes, 0, 0, anchor.Location()), nil
}

// clockField reads an unsigned clock component no larger than limit
func clockField(s string, limit int) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, err
	}
	if int(n) > limit {
		return 0, fmt.Errorf("%d out of range 0-%d", n, limit)
	}
	return int(n), nil
}

// ParseAnchor resolves the anchor date for clock normalization. An empty
// value means today.
func ParseAnchor(value string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return now, nil
	}
	t, err := parseDate(value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid anchor date %q: %w", value, err)
	}
	return t, nil
}
