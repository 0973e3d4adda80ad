// Package store persists the user's alarm set.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"fyne.io/fyne/v2"

	"github.com/borgmon/wakebell/pkg/models"
)

// AlarmStore is the persistence collaborator: Save is invoked on every
// mutation and on service teardown so edits survive restarts.
type AlarmStore interface {
	Load() ([]models.Alarm, error)
	Save(alarms []models.Alarm) error
}

const alarmsKey = "alarms"

// PreferencesStore keeps the alarm set in fyne preferences as a JSON
// blob, the same way the app stores its other settings.
type PreferencesStore struct {
	app fyne.App
}

func NewPreferencesStore(app fyne.App) *PreferencesStore {
	return &PreferencesStore{app: app}
}

// Load returns the stored alarms. A first launch with nothing stored
// seeds the default alarm set and persists it immediately.
func (ps *PreferencesStore) Load() ([]models.Alarm, error) {
	raw := ps.app.Preferences().String(alarmsKey)
	if raw == "" {
		seed := DefaultAlarms()
		if err := ps.Save(seed); err != nil {
			return nil, err
		}
		return seed, nil
	}

	var alarms []models.Alarm
	if err := json.Unmarshal([]byte(raw), &alarms); err != nil {
		return nil, fmt.Errorf("decode stored alarms: %w", err)
	}
	return alarms, nil
}

func (ps *PreferencesStore) Save(alarms []models.Alarm) error {
	raw, err := json.Marshal(alarms)
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}
	ps.app.Preferences().SetString(alarmsKey, string(raw))
	return nil
}

// DefaultAlarms is the alarm set seeded on first launch.
func DefaultAlarms() []models.Alarm {
	weekStart := models.Weekdays{time.Sunday, time.Monday, time.Tuesday}

	return []models.Alarm{
		{ID: 1, Label: "Wake-Up", Hour: 9, Minute: 20, Days: weekStart, Enabled: true, Group: models.GroupActive, SoundID: 1},
		{ID: 2, Label: "+ Add Label", Hour: 9, Minute: 0, Days: weekStart, Enabled: true, Group: models.GroupActive, SoundID: 2},
		{ID: 3, Label: "Wake-Up", Hour: 9, Minute: 0, Days: weekStart, Enabled: true, Group: models.GroupActive, SoundID: 2},
		{ID: 4, Label: "Wake-Up", Hour: 9, Minute: 0, Days: weekStart, Enabled: false, Group: models.GroupActive, SoundID: 3},
		{ID: 5, Label: "Wake-Up", Hour: 9, Minute: 0, Days: weekStart, Enabled: false, Group: models.GroupOthers, SoundID: 1},
		{ID: 6, Label: "+ Add Label", Hour: 9, Minute: 0, Days: weekStart, Enabled: false, Group: models.GroupOthers, SoundID: 1},
	}
}
