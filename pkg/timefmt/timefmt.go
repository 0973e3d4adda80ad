// Package timefmt converts between the 12-hour clock strings shown to
// the user ("9:20 AM") and the canonical 24-hour (hour, minute) pair
// used everywhere else.
package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTime is returned for any string that is not a well-formed
// "H:MM AM" / "H:MM PM" clock time. Callers must surface it instead of
// falling back to a default time.
var ErrMalformedTime = errors.New("malformed time")

// Parse converts a 12-hour clock string to canonical (hour, minute).
// The hour may carry a leading zero ("09:20 AM" and "9:20 AM" are
// equivalent); minutes must be exactly two digits; the modifier must be
// exactly "AM" or "PM".
func Parse(text string) (hour, minute int, err error) {
	clock, modifier, ok := strings.Cut(text, " ")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q missing AM/PM modifier", ErrMalformedTime, text)
	}
	if modifier != "AM" && modifier != "PM" {
		return 0, 0, fmt.Errorf("%w: %q has modifier %q, want AM or PM", ErrMalformedTime, text, modifier)
	}

	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q missing ':' separator", ErrMalformedTime, text)
	}

	hour, err = strconv.Atoi(hh)
	if err != nil || len(hh) == 0 || len(hh) > 2 || hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: %q hour must be 1-12", ErrMalformedTime, text)
	}

	minute, err = strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q minute must be two digits 00-59", ErrMalformedTime, text)
	}

	// 12 AM is midnight, 12 PM stays noon
	if modifier == "PM" && hour < 12 {
		hour += 12
	} else if modifier == "AM" && hour == 12 {
		hour = 0
	}

	return hour, minute, nil
}

// Format renders a canonical (hour, minute) as a 12-hour clock string.
// The hour carries no leading zero and the modifier is upper-case, so
// Format(Parse(x)) == x for every canonical input x.
// Hour must be 0-23 and minute 0-59; Format does not validate.
func Format(hour, minute int) string {
	modifier := "AM"
	if hour >= 12 {
		modifier = "PM"
	}

	h := hour % 12
	if h == 0 {
		h = 12
	}

	return fmt.Sprintf("%d:%02d %s", h, minute, modifier)
}
