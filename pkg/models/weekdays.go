package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

var dayNames = map[time.Weekday]string{
	time.Sunday:    "Sun",
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
}

var daysByName = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(dayNames))
	for d, name := range dayNames {
		m[name] = d
	}
	return m
}()

// WeekdayName returns the short day name ("Sun".."Sat") used in the
// persisted JSON and in trigger payloads.
func WeekdayName(d time.Weekday) string {
	return dayNames[d]
}

// Weekdays is an order-insensitive set of weekdays, persisted as short
// day names ("Sun".."Sat").
type Weekdays []time.Weekday

// Contains reports whether d is in the set.
func (w Weekdays) Contains(d time.Weekday) bool {
	for _, day := range w {
		if day == d {
			return true
		}
	}
	return false
}

// Toggle returns the set with d added or removed.
func (w Weekdays) Toggle(d time.Weekday) Weekdays {
	if !w.Contains(d) {
		return append(append(Weekdays{}, w...), d)
	}
	out := make(Weekdays, 0, len(w)-1)
	for _, day := range w {
		if day != d {
			out = append(out, day)
		}
	}
	return out
}

// Normalized returns a sorted copy with duplicates removed. Scheduling
// iterates the normalized form so trigger order is deterministic.
func (w Weekdays) Normalized() Weekdays {
	seen := make(map[time.Weekday]bool, len(w))
	out := make(Weekdays, 0, len(w))
	for _, day := range w {
		if !seen[day] {
			seen[day] = true
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(w))
	for _, day := range w {
		names = append(names, dayNames[day])
	}
	return json.Marshal(names)
}

func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	days := make(Weekdays, 0, len(names))
	for _, name := range names {
		day, ok := daysByName[name]
		if !ok {
			return fmt.Errorf("unknown weekday name %q", name)
		}
		days = append(days, day)
	}
	*w = days
	return nil
}
