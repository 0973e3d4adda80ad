// Package schedule computes concrete firing times for recurring alarms
// and reconciles them against the platform's pending triggers.
package schedule

import (
	"time"

	"github.com/borgmon/wakebell/pkg/models"
)

// Occurrence is one concrete future firing instant for an alarm on one
// weekday.
type Occurrence struct {
	Weekday time.Weekday
	At      time.Time
}

// NextOccurrence finds the timestamp of the next hour:minute slot on
// weekday, counting from now. When weekday is today and the slot has
// already passed, the occurrence is skipped for this cycle and ok is
// false. It does NOT roll forward a week; callers that want rollover
// add 7 days themselves.
func NextOccurrence(now time.Time, hour, minute int, weekday time.Weekday) (at time.Time, ok bool) {
	dayOffset := (int(weekday) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+dayOffset, hour, minute, 0, 0, now.Location())

	// dayOffset > 0 always lands on a later date, so only the same-day
	// candidate can be in the past
	if dayOffset == 0 && !candidate.After(now) {
		return time.Time{}, false
	}
	return candidate, true
}

// OccurrencesForAlarm computes the next occurrence of the alarm for
// every weekday in its set, in weekday order. Past same-day slots are
// filtered out; an alarm with an empty day set yields nothing.
func OccurrencesForAlarm(now time.Time, alarm models.Alarm) []Occurrence {
	days := alarm.Days.Normalized()
	occurrences := make([]Occurrence, 0, len(days))
	for _, day := range days {
		at, ok := NextOccurrence(now, alarm.Hour, alarm.Minute, day)
		if !ok {
			continue
		}
		occurrences = append(occurrences, Occurrence{Weekday: day, At: at})
	}
	return occurrences
}
