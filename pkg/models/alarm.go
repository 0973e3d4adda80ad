package models

// Alarm group names used to partition the alarm list
const (
	GroupActive = "Active"
	GroupOthers = "Others"
)

// Alarm represents one user-defined recurring alarm.
// The time is kept in canonical 24-hour form; the 12-hour display
// string is a presentation concern (see pkg/timefmt).
type Alarm struct {
	ID      int      `json:"id"`      // caller-assigned, stable across edits
	Label   string   `json:"label"`   // free text
	Hour    int      `json:"hour"`    // 0-23
	Minute  int      `json:"minute"`  // 0-59
	Days    Weekdays `json:"days"`    // may be empty: such an alarm never fires
	Enabled bool     `json:"enabled"` // disabled alarms keep their data but produce no triggers
	Group   string   `json:"group"`   // "Active" or "Others"
	SoundID int      `json:"sound"`   // reference into the sound catalog
}

// Sound is one entry of the immutable sound catalog.
type Sound struct {
	ID   int    `json:"id"`
	Name string `json:"name"` // display name
	Path string `json:"path"` // asset path
}
