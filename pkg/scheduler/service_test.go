package scheduler_test

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/wakebell/pkg/audio"
	"github.com/borgmon/wakebell/pkg/logger"
	"github.com/borgmon/wakebell/pkg/models"
	"github.com/borgmon/wakebell/pkg/notify"
	"github.com/borgmon/wakebell/pkg/schedule"
	"github.com/borgmon/wakebell/pkg/scheduler"
	"github.com/borgmon/wakebell/pkg/sound"
	"github.com/borgmon/wakebell/pkg/store"
	"github.com/borgmon/wakebell/pkg/timefmt"
)

// Sunday 2025-06-15 08:00 local.
var sunday8 = time.Date(2025, 6, 15, 8, 0, 0, 0, time.Local)

// fakeNotifier keeps the pending set in memory and records the order
// of cancel/schedule calls. rejectIDs simulates per-trigger platform
// rejections.
type fakeNotifier struct {
	mu        sync.Mutex
	pending   map[int]models.Trigger
	calls     []string
	rejectIDs map[int]bool
	permErr   error

	onFired  notify.FiredHandler
	onAction notify.ActionHandler
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{pending: make(map[int]models.Trigger), rejectIDs: make(map[int]bool)}
}

func (f *fakeNotifier) Pending() ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int, 0, len(f.pending))
	for id := range f.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (f *fakeNotifier) Cancel(ids []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "cancel")
	for _, id := range ids {
		delete(f.pending, id) // unknown ids are a no-op
	}
	return nil
}

func (f *fakeNotifier) Schedule(trigger models.Trigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "schedule")
	if f.rejectIDs[trigger.ID] {
		return notify.ErrScheduleRejected
	}
	f.pending[trigger.ID] = trigger
	return nil
}

func (f *fakeNotifier) SetHandlers(onFired notify.FiredHandler, onAction notify.ActionHandler) {
	f.onFired = onFired
	f.onAction = onAction
}

func (f *fakeNotifier) RequestPermission() error { return f.permErr }

func (f *fakeNotifier) pendingIDs() []int {
	ids, _ := f.Pending()
	return ids
}

// fakeStore is an in-memory AlarmStore.
type fakeStore struct {
	mu     sync.Mutex
	alarms []models.Alarm
	saves  int
}

func (f *fakeStore) Load() ([]models.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Alarm(nil), f.alarms...), nil
}

func (f *fakeStore) Save(alarms []models.Alarm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alarms = append([]models.Alarm(nil), alarms...)
	f.saves++
	return nil
}

// fakeSessionFactory satisfies audio.SessionFactory without touching
// real audio hardware.
type fakeSessionFactory struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeSessionFactory) NewSession(assetPath string) (audio.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, assetPath)
	return &fakeSession{status: make(chan audio.Status)}, nil
}

type fakeSession struct {
	status chan audio.Status
	once   sync.Once
}

func (s *fakeSession) Play() error       { return nil }
func (s *fakeSession) SetVolume(float64) {}
func (s *fakeSession) Stop()             {}
func (s *fakeSession) Release()          { s.once.Do(func() { close(s.status) }) }
func (s *fakeSession) Status() <-chan audio.Status { return s.status }

func newService(t *testing.T, st store.AlarmStore, n *fakeNotifier) (*scheduler.Service, *fakeSessionFactory) {
	t.Helper()

	factory := &fakeSessionFactory{}
	svc := scheduler.New(
		logger.New("debug", "local"),
		st,
		n,
		audio.NewController(factory),
		sound.DefaultCatalog("assets/sounds"),
		schedule.FixedClock(sunday8),
	)
	return svc, factory
}

func wakeUpAlarm() models.Alarm {
	return models.Alarm{
		ID:      1,
		Label:   "Wake-Up",
		Hour:    9,
		Minute:  20,
		Days:    models.Weekdays{time.Sunday, time.Monday, time.Tuesday},
		Enabled: true,
		Group:   models.GroupActive,
		SoundID: 1,
	}
}

func TestService_StartArmsEnabledAlarms(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)

	require.NoError(t, svc.Start())

	assert.Equal(t, []int{10, 11, 12}, n.pendingIDs())
}

func TestService_StartSurvivesMissingPermission(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	n.permErr = notify.ErrPermissionDenied
	svc, _ := newService(t, st, n)

	// non-fatal: occurrences are still computed and scheduled
	require.NoError(t, svc.Start())
	assert.Len(t, n.pendingIDs(), 3)
}

func TestService_SetAlarmsCancelsBeforeScheduling(t *testing.T) {
	st := &fakeStore{}
	n := newFakeNotifier()
	n.pending[99] = models.Trigger{ID: 99}
	svc, _ := newService(t, st, n)

	require.NoError(t, svc.SetAlarms([]models.Alarm{wakeUpAlarm()}))

	// the stale trigger is gone and every cancel preceded every schedule
	assert.Equal(t, []int{10, 11, 12}, n.pendingIDs())
	require.NotEmpty(t, n.calls)
	assert.Equal(t, "cancel", n.calls[0])
	for _, call := range n.calls[1:] {
		assert.Equal(t, "schedule", call)
	}
}

func TestService_SetAlarmsRejectsWideIDs(t *testing.T) {
	st := &fakeStore{}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)

	alarm := wakeUpAlarm()
	alarm.ID = 12
	require.Error(t, svc.SetAlarms([]models.Alarm{alarm}))
}

func TestService_RescheduleIsIdempotent(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)

	require.NoError(t, svc.Start())
	first := n.pendingIDs()

	require.NoError(t, svc.Reconcile())
	assert.Equal(t, first, n.pendingIDs())
}

func TestService_OneRejectionDoesNotBlockOthers(t *testing.T) {
	st := &fakeStore{}
	n := newFakeNotifier()
	n.rejectIDs[11] = true // platform refuses Monday's trigger
	svc, _ := newService(t, st, n)

	require.NoError(t, svc.SetAlarms([]models.Alarm{wakeUpAlarm()}))

	assert.Equal(t, []int{10, 12}, n.pendingIDs())

	// the alarm's toggle state is untouched by the delivery failure
	alarm, ok := svc.Alarm(1)
	require.True(t, ok)
	assert.True(t, alarm.Enabled)
}

func TestService_ToggleAlarmOff(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)
	require.NoError(t, svc.Start())

	require.NoError(t, svc.ToggleAlarm(1))

	assert.Empty(t, n.pendingIDs())
	alarm, _ := svc.Alarm(1)
	assert.False(t, alarm.Enabled)

	require.NoError(t, svc.ToggleAlarm(1))
	assert.Len(t, n.pendingIDs(), 3)
}

func TestService_SetTimeReschedulesSingleAlarm(t *testing.T) {
	second := models.Alarm{
		ID:      2,
		Label:   "Other",
		Hour:    7,
		Minute:  0,
		Days:    models.Weekdays{time.Saturday},
		Enabled: true,
		Group:   models.GroupActive,
		SoundID: 2,
	}
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm(), second}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)
	require.NoError(t, svc.Start())

	require.NoError(t, svc.SetTime(1, "11:45 AM"))

	alarm, _ := svc.Alarm(1)
	assert.Equal(t, 11, alarm.Hour)
	assert.Equal(t, 45, alarm.Minute)
	assert.True(t, alarm.Enabled)

	// alarm 2's trigger (id 26, Saturday) was never touched
	assert.Contains(t, n.pendingIDs(), 26)

	trigger := n.pending[10]
	assert.Equal(t, time.Date(2025, 6, 15, 11, 45, 0, 0, time.Local), trigger.At)
}

func TestService_SetTimeMalformedPropagates(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)
	require.NoError(t, svc.Start())

	err := svc.SetTime(1, "25:00 XX")
	require.ErrorIs(t, err, timefmt.ErrMalformedTime)

	// nothing was defaulted: the alarm still rings at its old time
	alarm, _ := svc.Alarm(1)
	assert.Equal(t, 9, alarm.Hour)
	assert.Equal(t, 20, alarm.Minute)
}

func TestService_FiredTriggerStartsAudio(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	svc, factory := newService(t, st, n)
	require.NoError(t, svc.Start())

	n.onFired(models.Trigger{ID: 10, AlarmID: 1, SoundPath: "assets/sounds/alarm1.wav"})

	require.Len(t, factory.paths, 1)
	assert.Equal(t, "assets/sounds/alarm1.wav", factory.paths[0])

	// the stop action silences it again
	n.onAction(10, models.ActionStop)
}

func TestService_FiredWithoutSoundUsesDefault(t *testing.T) {
	st := &fakeStore{}
	n := newFakeNotifier()
	svc, factory := newService(t, st, n)
	require.NoError(t, svc.Start())

	n.onFired(models.Trigger{ID: 10, AlarmID: 1})

	require.Len(t, factory.paths, 1)
	assert.Equal(t, sound.DefaultCatalog("assets/sounds").Default().Path, factory.paths[0])
	svc.StopAlarm()
}

func TestService_GroupViews(t *testing.T) {
	other := wakeUpAlarm()
	other.ID = 5
	other.Group = models.GroupOthers
	other.Enabled = false

	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm(), other}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)
	require.NoError(t, svc.Start())

	require.Len(t, svc.ActiveAlarms(), 1)
	require.Len(t, svc.OtherAlarms(), 1)
	assert.Equal(t, 5, svc.OtherAlarms()[0].ID)
}

func TestService_CloseSavesAlarms(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)
	require.NoError(t, svc.Start())

	saves := st.saves
	require.NoError(t, svc.Close())
	assert.Greater(t, st.saves, saves)
}

func TestService_ExportSchedule(t *testing.T) {
	st := &fakeStore{alarms: []models.Alarm{wakeUpAlarm()}}
	n := newFakeNotifier()
	svc, _ := newService(t, st, n)
	require.NoError(t, svc.Start())

	raw, err := svc.ExportSchedule()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "BYDAY=SU,MO,TU")
}

func TestService_StoreLoadFailureSurfaces(t *testing.T) {
	n := newFakeNotifier()
	svc, _ := newService(t, &failingStore{}, n)

	require.Error(t, svc.Start())
}

type failingStore struct{}

func (failingStore) Load() ([]models.Alarm, error) { return nil, errors.New("corrupt preferences") }
func (failingStore) Save([]models.Alarm) error     { return nil }
