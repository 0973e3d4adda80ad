// Package notify abstracts the platform notification delivery used to
// fire alarm triggers at their scheduled wall-clock times.
package notify

import (
	"errors"

	"github.com/borgmon/wakebell/pkg/models"
)

var (
	// ErrScheduleRejected means the platform refused a schedule call.
	// The caller logs it and leaves the alarm's toggle state alone.
	ErrScheduleRejected = errors.New("schedule rejected by platform")

	// ErrPermissionDenied means notification permission is absent.
	// Reported once at startup, non-fatal: occurrences are still
	// computed even if delivery will fail.
	ErrPermissionDenied = errors.New("notification permission denied")
)

// FiredHandler receives a trigger the instant it fires.
type FiredHandler func(trigger models.Trigger)

// ActionHandler receives a notification action invoked by the user.
type ActionHandler func(triggerID int, actionID string)

// Notifier is the delivery collaborator contract. Cancelling an id
// that was never scheduled is a no-op, not an error.
type Notifier interface {
	// Pending lists the ids of all currently scheduled triggers.
	Pending() ([]int, error)
	// Cancel drops the given triggers before they fire.
	Cancel(ids []int) error
	// Schedule arms one trigger at its firing timestamp.
	Schedule(trigger models.Trigger) error
	// SetHandlers registers the fired/action callbacks. Call once,
	// before any Schedule.
	SetHandlers(onFired FiredHandler, onAction ActionHandler)
	// RequestPermission asks the platform for delivery permission.
	RequestPermission() error
}
