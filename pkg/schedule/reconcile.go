package schedule

import (
	"fmt"

	"github.com/borgmon/wakebell/pkg/models"
	"github.com/borgmon/wakebell/pkg/sound"
	"github.com/borgmon/wakebell/pkg/timefmt"
)

// Plan is an effect-free description of the delivery calls needed to
// bring the platform's pending triggers in line with the alarm set.
// Cancels must be issued before any Schedule entry so a new trigger
// never races a stale one on the same id.
type Plan struct {
	CancelIDs []int
	Schedule  []models.Trigger
}

// Reconciler turns alarm sets into trigger plans. It is pure: all
// delivery calls are the caller's job, and "now" comes from the
// injected clock.
type Reconciler struct {
	clock   Clock
	catalog *sound.Catalog
}

func NewReconciler(clock Clock, catalog *sound.Catalog) *Reconciler {
	return &Reconciler{clock: clock, catalog: catalog}
}

// FullReschedule builds the cancel-everything-then-reschedule-all plan:
// every currently pending trigger is cancelled and fresh triggers are
// scheduled for each enabled alarm's future occurrences. Running the
// plan twice against an unchanged alarm set nets out to the same
// pending-trigger set, at the cost of full churn per call. Alarms with
// ids the trigger encoding cannot carry are left out of the plan;
// callers validate ids when alarms enter the system.
func (r *Reconciler) FullReschedule(pending []int, alarms []models.Alarm) Plan {
	plan := Plan{CancelIDs: append([]int(nil), pending...)}
	for _, alarm := range alarms {
		if !alarm.Enabled {
			continue
		}
		triggers, err := r.SingleAlarm(alarm)
		if err != nil {
			continue
		}
		plan.Schedule = append(plan.Schedule, triggers...)
	}
	return plan
}

// SingleAlarm builds the per-weekday triggers for one alarm without
// cancelling anything else. This is the re-arm path after editing a
// single alarm; other alarms' pending triggers are never touched.
func (r *Reconciler) SingleAlarm(alarm models.Alarm) ([]models.Trigger, error) {
	if !ValidAlarmID(alarm.ID) {
		return nil, fmt.Errorf("alarm id %d out of range 0-%d for trigger encoding", alarm.ID, MaxAlarmID)
	}

	now := r.clock.Now()
	snd := r.catalog.ByID(alarm.SoundID)

	occurrences := OccurrencesForAlarm(now, alarm)
	triggers := make([]models.Trigger, 0, len(occurrences))
	for _, occ := range occurrences {
		triggers = append(triggers, models.Trigger{
			ID:      TriggerID(alarm.ID, occ.Weekday),
			AlarmID: alarm.ID,
			Weekday: occ.Weekday,
			At:      occ.At,
			Title:   titleFor(alarm),
			Body: fmt.Sprintf("Alarm set for %s at %s",
				models.WeekdayName(occ.Weekday), timefmt.Format(alarm.Hour, alarm.Minute)),
			Channel:   fmt.Sprintf("alarm%d-channel", snd.ID),
			SoundPath: snd.Path,
			Actions: []models.TriggerAction{
				{ID: models.ActionStop, Title: "Stop Alarm"},
			},
		})
	}
	return triggers, nil
}

func titleFor(alarm models.Alarm) string {
	if alarm.Label == "" {
		return "Alarm"
	}
	return alarm.Label
}
