package calendar

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/borgmon/wakebell/pkg/models"
)

var standardDay = map[rrule.Weekday]time.Weekday{
	rrule.SU: time.Sunday,
	rrule.MO: time.Monday,
	rrule.TU: time.Tuesday,
	rrule.WE: time.Wednesday,
	rrule.TH: time.Thursday,
	rrule.FR: time.Friday,
	rrule.SA: time.Saturday,
}

// Import parses an exported schedule back into alarms. Imported alarms
// come back enabled; non-VEVENT components are skipped.
func Import(r io.Reader) ([]models.Alarm, error) {
	decoder := ical.NewDecoder(r)

	var alarms []models.Alarm
	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode calendar: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			alarm, err := alarmFromEvent(comp)
			if err != nil {
				return nil, err
			}
			alarms = append(alarms, alarm)
		}
	}
	return alarms, nil
}

func alarmFromEvent(comp *ical.Component) (models.Alarm, error) {
	uid, err := comp.Props.Text(ical.PropUID)
	if err != nil || !strings.HasPrefix(uid, uidPrefix) {
		return models.Alarm{}, fmt.Errorf("event UID %q is not a wakebell alarm", uid)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(uid, uidPrefix))
	if err != nil {
		return models.Alarm{}, fmt.Errorf("event UID %q carries no alarm id", uid)
	}

	start, err := comp.Props.DateTime(ical.PropDateTimeStart, time.Local)
	if err != nil {
		return models.Alarm{}, fmt.Errorf("alarm %d: read DTSTART: %w", id, err)
	}

	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil {
		return models.Alarm{}, fmt.Errorf("alarm %d: missing RRULE", id)
	}
	option, err := rrule.StrToROption(rruleProp.Value)
	if err != nil {
		return models.Alarm{}, fmt.Errorf("alarm %d: parse RRULE: %w", id, err)
	}

	days := make(models.Weekdays, 0, len(option.Byweekday))
	for _, day := range option.Byweekday {
		days = append(days, standardDay[day])
	}

	label, _ := comp.Props.Text(ical.PropSummary)

	soundID := 1
	if raw, err := comp.Props.Text(propSound); err == nil && raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			soundID = parsed
		}
	}

	group, _ := comp.Props.Text(propGroup)
	if group == "" {
		group = models.GroupActive
	}

	return models.Alarm{
		ID:      id,
		Label:   label,
		Hour:    start.Hour(),
		Minute:  start.Minute(),
		Days:    days.Normalized(),
		Enabled: true,
		Group:   group,
		SoundID: soundID,
	}, nil
}
