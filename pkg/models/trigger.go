package models

import "time"

// ActionStop is the notification action id that silences a ringing alarm.
const ActionStop = "stop"

// TriggerAction is one action button attached to a trigger's notification.
type TriggerAction struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Trigger is one concrete future firing of one alarm on one weekday,
// ready to hand to the notification delivery backend. Its ID is the
// deterministic (alarm, weekday) encoding from pkg/schedule.
type Trigger struct {
	ID        int             `json:"id"`
	AlarmID   int             `json:"alarm_id"`
	Weekday   time.Weekday    `json:"weekday"`
	At        time.Time       `json:"at"` // absolute firing timestamp
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Channel   string          `json:"channel"`
	SoundPath string          `json:"sound_path"`
	Actions   []TriggerAction `json:"actions"`
}
