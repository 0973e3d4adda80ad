// Package scheduler owns the alarm set and keeps the platform's
// pending triggers reconciled with it.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/borgmon/wakebell/pkg/audio"
	"github.com/borgmon/wakebell/pkg/calendar"
	"github.com/borgmon/wakebell/pkg/logger"
	"github.com/borgmon/wakebell/pkg/models"
	"github.com/borgmon/wakebell/pkg/notify"
	"github.com/borgmon/wakebell/pkg/schedule"
	"github.com/borgmon/wakebell/pkg/sound"
	"github.com/borgmon/wakebell/pkg/store"
	"github.com/borgmon/wakebell/pkg/timefmt"
)

// Service is the single owner of the alarm set. All mutations go
// through it: they persist to the store and drive trigger
// reconciliation against the notifier. Fired triggers and stop actions
// route to the audio controller.
type Service struct {
	log      *logger.Logger
	store    store.AlarmStore
	notifier notify.Notifier
	audio    *audio.Controller
	catalog  *sound.Catalog
	clock    schedule.Clock
	rec      *schedule.Reconciler

	mu     sync.Mutex
	alarms []models.Alarm
}

func New(
	l *logger.Logger,
	st store.AlarmStore,
	notifier notify.Notifier,
	controller *audio.Controller,
	catalog *sound.Catalog,
	clock schedule.Clock,
) *Service {
	s := &Service{
		log:      l,
		store:    st,
		notifier: notifier,
		audio:    controller,
		catalog:  catalog,
		clock:    clock,
		rec:      schedule.NewReconciler(clock, catalog),
	}
	notifier.SetHandlers(s.handleFired, s.handleAction)
	return s
}

// Start loads the stored alarm set and arms every enabled alarm.
// A missing notification permission is reported once and is not fatal:
// occurrences are still computed so callers can show pending alarms.
func (s *Service) Start() error {
	if err := s.notifier.RequestPermission(); err != nil {
		s.log.Warn("notification permission missing, alarms will not be delivered", logger.Err(err))
	}

	alarms, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load alarms: %w", err)
	}
	return s.SetAlarms(alarms)
}

// SetAlarms replaces the whole alarm set, persists it and runs a full
// reschedule.
func (s *Service) SetAlarms(alarms []models.Alarm) error {
	for _, alarm := range alarms {
		if !schedule.ValidAlarmID(alarm.ID) {
			return fmt.Errorf("alarm id %d out of range 0-%d", alarm.ID, schedule.MaxAlarmID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.alarms = append([]models.Alarm(nil), alarms...)
	s.saveLocked()
	return s.reconcileLocked()
}

// Reconcile re-runs the full cancel-then-reschedule pass against the
// current alarm set.
func (s *Service) Reconcile() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcileLocked()
}

// reconcileLocked applies the full-reschedule plan: every pending
// trigger is cancelled first, then each enabled alarm's future
// occurrences are scheduled. One alarm's delivery failure never blocks
// the rest.
func (s *Service) reconcileLocked() error {
	pending, err := s.notifier.Pending()
	if err != nil {
		return fmt.Errorf("list pending triggers: %w", err)
	}

	plan := s.rec.FullReschedule(pending, s.alarms)

	// stale cancels must land before new triggers reuse the same ids
	if len(plan.CancelIDs) > 0 {
		if err := s.notifier.Cancel(plan.CancelIDs); err != nil {
			return fmt.Errorf("cancel pending triggers: %w", err)
		}
	}

	s.scheduleTriggers(plan.Schedule)
	return nil
}

func (s *Service) scheduleTriggers(triggers []models.Trigger) {
	for _, trigger := range triggers {
		if err := s.notifier.Schedule(trigger); err != nil {
			s.log.Error("schedule trigger",
				slog.Int("alarm_id", trigger.AlarmID),
				slog.Int("trigger_id", trigger.ID),
				logger.Err(err),
			)
			continue
		}
		s.log.Debug("trigger scheduled",
			slog.Int("trigger_id", trigger.ID),
			slog.Time("at", trigger.At),
		)
	}
}

// Alarms returns a copy of the alarm set.
func (s *Service) Alarms() []models.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Alarm(nil), s.alarms...)
}

// Alarm returns the alarm with the given id.
func (s *Service) Alarm(id int) (models.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, alarm := range s.alarms {
		if alarm.ID == id {
			return alarm, true
		}
	}
	return models.Alarm{}, false
}

// ActiveAlarms returns the alarms in the "Active" group.
func (s *Service) ActiveAlarms() []models.Alarm { return s.alarmsInGroup(models.GroupActive) }

// OtherAlarms returns the alarms in the "Others" group.
func (s *Service) OtherAlarms() []models.Alarm { return s.alarmsInGroup(models.GroupOthers) }

func (s *Service) alarmsInGroup(group string) []models.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Alarm
	for _, alarm := range s.alarms {
		if alarm.Group == group {
			out = append(out, alarm)
		}
	}
	return out
}

// ToggleAlarm flips an alarm's enabled flag, persists and reconciles
// the full set.
func (s *Service) ToggleAlarm(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarm := s.findLocked(id)
	if alarm == nil {
		return fmt.Errorf("no alarm with id %d", id)
	}
	alarm.Enabled = !alarm.Enabled

	s.saveLocked()
	return s.reconcileLocked()
}

// ToggleDay adds or removes a weekday from an alarm's set, persists
// and reconciles the full set.
func (s *Service) ToggleDay(id int, day time.Weekday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarm := s.findLocked(id)
	if alarm == nil {
		return fmt.Errorf("no alarm with id %d", id)
	}
	alarm.Days = alarm.Days.Toggle(day)

	s.saveLocked()
	return s.reconcileLocked()
}

// SetLabel stores a new label and re-enables the alarm, reconciling
// so the newly enabled alarm gets its triggers.
func (s *Service) SetLabel(id int, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarm := s.findLocked(id)
	if alarm == nil {
		return fmt.Errorf("no alarm with id %d", id)
	}
	alarm.Label = label
	alarm.Enabled = true

	s.saveLocked()
	return s.reconcileLocked()
}

// SetTime parses a 12-hour clock string ("9:20 AM"), stores the
// canonical time, re-enables the alarm and re-arms just that alarm.
// Other alarms' pending triggers are not touched. A malformed string
// is surfaced to the caller; nothing is defaulted.
func (s *Service) SetTime(id int, text string) error {
	hour, minute, err := timefmt.Parse(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alarm := s.findLocked(id)
	if alarm == nil {
		return fmt.Errorf("no alarm with id %d", id)
	}
	alarm.Hour = hour
	alarm.Minute = minute
	alarm.Enabled = true

	s.saveLocked()

	triggers, err := s.rec.SingleAlarm(*alarm)
	if err != nil {
		return err
	}
	s.scheduleTriggers(triggers)
	return nil
}

// TimeString renders an alarm's time in the 12-hour display format.
func (s *Service) TimeString(id int) (string, bool) {
	alarm, ok := s.Alarm(id)
	if !ok {
		return "", false
	}
	return timefmt.Format(alarm.Hour, alarm.Minute), true
}

// ExportSchedule serializes the enabled alarms as an iCalendar
// document.
func (s *Service) ExportSchedule() ([]byte, error) {
	s.mu.Lock()
	alarms := append([]models.Alarm(nil), s.alarms...)
	s.mu.Unlock()

	return calendar.Export(s.clock.Now(), alarms)
}

// Run re-arms on the given interval until ctx ends. Fired weekly
// triggers do not re-arm themselves; this loop is the explicit
// reconciliation that produces next week's triggers.
func (s *Service) Run(ctx context.Context, rearmEvery time.Duration) {
	ticker := time.NewTicker(rearmEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reconcile(); err != nil {
				s.log.Error("periodic re-arm failed", logger.Err(err))
			}
		}
	}
}

// StopAlarm silences the ringing alarm. Safe to call when nothing is
// playing.
func (s *Service) StopAlarm() {
	s.audio.OnStopAction()
}

// Close stops playback and persists the in-memory set one last time.
func (s *Service) Close() error {
	s.audio.OnStopAction()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(s.alarms)
}

func (s *Service) findLocked(id int) *models.Alarm {
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			return &s.alarms[i]
		}
	}
	return nil
}

// saveLocked persists the current set; persistence failures are logged
// but do not stop scheduling.
func (s *Service) saveLocked() {
	if err := s.store.Save(s.alarms); err != nil {
		s.log.Error("persist alarms", logger.Err(err))
	}
}

func (s *Service) handleFired(trigger models.Trigger) {
	s.log.Info("alarm fired",
		slog.Int("alarm_id", trigger.AlarmID),
		slog.String("title", trigger.Title),
	)

	path := trigger.SoundPath
	if path == "" {
		path = s.catalog.Default().Path
	}
	if err := s.audio.OnTriggerFired(path); err != nil {
		s.log.Error("start alarm sound", logger.Err(err))
	}
}

func (s *Service) handleAction(triggerID int, actionID string) {
	if actionID != models.ActionStop {
		return
	}
	s.audio.OnStopAction()
	s.log.Info("alarm stopped", slog.Int("trigger_id", triggerID))
}
