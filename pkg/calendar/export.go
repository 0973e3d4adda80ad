// Package calendar serializes the alarm schedule to iCalendar and back,
// one VEVENT with a weekly BYDAY rule per alarm.
package calendar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/borgmon/wakebell/pkg/models"
	"github.com/borgmon/wakebell/pkg/timefmt"
)

const (
	prodID    = "-//borgmon//wakebell//EN"
	uidPrefix = "wakebell-alarm-"

	// custom props carrying alarm attributes that have no iCal equivalent
	propSound = "X-WAKEBELL-SOUND"
	propGroup = "X-WAKEBELL-GROUP"
)

var rruleDay = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Export serializes the enabled alarms with a non-empty day set as an
// iCalendar document. DTSTART is the alarm's slot on its first weekday
// of the current week; the RRULE carries the weekly repetition.
func Export(now time.Time, alarms []models.Alarm) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	for _, alarm := range alarms {
		if !alarm.Enabled || len(alarm.Days) == 0 {
			continue
		}
		event, err := eventForAlarm(now, alarm)
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", alarm.ID, err)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func eventForAlarm(now time.Time, alarm models.Alarm) (*ical.Event, error) {
	days := alarm.Days.Normalized()

	byday := make([]rrule.Weekday, 0, len(days))
	for _, day := range days {
		byday = append(byday, rruleDay[day])
	}

	// anchor on the first weekday's slot this week; past slots are fine
	// here, the rule expands forward regardless
	firstDay := days[0]
	dayOffset := (int(firstDay) - int(now.Weekday()) + 7) % 7
	start := time.Date(now.Year(), now.Month(), now.Day()+dayOffset,
		alarm.Hour, alarm.Minute, 0, 0, now.Location())

	option := rrule.ROption{Freq: rrule.WEEKLY, Byweekday: byday, Dtstart: start}
	if _, err := rrule.NewRRule(option); err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	label := alarm.Label
	if label == "" {
		label = "Alarm"
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("%s%d", uidPrefix, alarm.ID))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now)
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetText(ical.PropSummary, label)
	event.Props.SetText(ical.PropDescription,
		fmt.Sprintf("Rings at %s", timefmt.Format(alarm.Hour, alarm.Minute)))
	event.Props.SetText(propSound, fmt.Sprintf("%d", alarm.SoundID))
	event.Props.SetText(propGroup, alarm.Group)

	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = option.RRuleString()
	event.Props.Set(rruleProp)

	return event, nil
}
