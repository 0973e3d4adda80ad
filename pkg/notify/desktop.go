package notify

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"github.com/borgmon/wakebell/pkg/models"
)

// Desktop delivers triggers as desktop notifications. Each scheduled
// trigger is backed by a timer; when it fires the notification is sent
// through the fyne app and the fired handler runs. Desktop sessions
// have no notification permission model, so RequestPermission always
// succeeds.
type Desktop struct {
	app fyne.App

	mu       sync.Mutex
	pending  map[int]*pendingTrigger
	onFired  FiredHandler
	onAction ActionHandler
}

type pendingTrigger struct {
	trigger models.Trigger
	timer   *time.Timer
}

func NewDesktop(app fyne.App) *Desktop {
	return &Desktop{
		app:     app,
		pending: make(map[int]*pendingTrigger),
	}
}

func (d *Desktop) SetHandlers(onFired FiredHandler, onAction ActionHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onFired = onFired
	d.onAction = onAction
}

func (d *Desktop) Pending() ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]int, 0, len(d.pending))
	for id := range d.pending {
		ids = append(ids, id)
	}
	return ids, nil
}

// Cancel stops the timers for the given ids. Unknown ids are ignored.
func (d *Desktop) Cancel(ids []int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		if p, ok := d.pending[id]; ok {
			p.timer.Stop()
			delete(d.pending, id)
		}
	}
	return nil
}

// Schedule arms a timer for the trigger. Scheduling an id that is
// already pending replaces the old trigger.
func (d *Desktop) Schedule(trigger models.Trigger) error {
	delay := time.Until(trigger.At)
	if delay <= 0 {
		return fmt.Errorf("%w: trigger %d firing time %s is in the past",
			ErrScheduleRejected, trigger.ID, trigger.At.Format(time.RFC3339))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.pending[trigger.ID]; ok {
		old.timer.Stop()
	}
	d.pending[trigger.ID] = &pendingTrigger{
		trigger: trigger,
		timer:   time.AfterFunc(delay, func() { d.fire(trigger.ID) }),
	}
	return nil
}

func (d *Desktop) fire(id int) {
	d.mu.Lock()
	p, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
	}
	onFired := d.onFired
	d.mu.Unlock()

	if !ok {
		// cancelled between timer fire and lock
		return
	}

	d.app.SendNotification(fyne.NewNotification(p.trigger.Title, p.trigger.Body))
	if onFired != nil {
		onFired(p.trigger)
	}
}

// InvokeAction routes a notification action to the registered handler.
// Desktop notifications carry no buttons, so the tray or any other UI
// calls this directly (e.g. with models.ActionStop).
func (d *Desktop) InvokeAction(triggerID int, actionID string) {
	d.mu.Lock()
	onAction := d.onAction
	d.mu.Unlock()

	if onAction != nil {
		onAction(triggerID, actionID)
	}
}

func (d *Desktop) RequestPermission() error { return nil }

// Close stops every pending timer.
func (d *Desktop) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, id)
	}
}
