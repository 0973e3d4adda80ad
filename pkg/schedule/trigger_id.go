package schedule

import "time"

const triggerIDBase = 10

// MaxAlarmID is the largest alarm id the trigger id encoding carries
// safely. Trigger ids share one number space with raw alarm ids, so an
// alarm id of 10 or more would collide with the encoded pairs (alarm
// 31 vs alarm 3 on Monday). Supporting larger ids needs a wider base
// or a composite key, which changes every pending platform id; see
// DESIGN.md before touching it.
const MaxAlarmID = triggerIDBase - 1

// TriggerID derives the stable platform trigger id for an (alarm,
// weekday) pair: alarmID*10 + weekday index (Sunday=0..Saturday=6).
// Precondition: 0 <= alarmID <= MaxAlarmID. Injective over that domain
// (70 distinct ids); callers validate with ValidAlarmID first.
func TriggerID(alarmID int, weekday time.Weekday) int {
	return alarmID*triggerIDBase + int(weekday)
}

// ValidAlarmID reports whether the trigger id encoding can represent
// alarmID without collisions.
func ValidAlarmID(alarmID int) bool {
	return alarmID >= 0 && alarmID <= MaxAlarmID
}
