// Package audio owns alarm sound playback: a state machine around a
// single playback session that loops until explicitly stopped.
package audio

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Status values reported by a playback session.
type Status int

const (
	StatusStarting Status = iota + 1
	StatusRunning
	StatusPaused
	StatusCompleted // playback reached the end of the asset
)

// Session is one playable instance of an alarm sound. Status reports
// lifecycle events; the channel closes on Release.
type Session interface {
	Play() error
	SetVolume(v float64)
	Stop()
	Release()
	Status() <-chan Status
}

// SessionFactory creates sessions for sound assets.
type SessionFactory interface {
	NewSession(assetPath string) (Session, error)
}

// State of the controller.
type State int

const (
	Idle State = iota
	Playing
)

// Controller is the alarm playback state machine. At most one session
// exists at a time process-wide: a trigger firing while a session is
// playing stops and releases the old session before the new one is
// created. The loop is manual; the session has no native repeat flag,
// so each completed status re-issues Play on the same session.
type Controller struct {
	factory SessionFactory

	mu        sync.Mutex
	state     State
	session   Session
	sessionID uuid.UUID
}

func NewController(factory SessionFactory) *Controller {
	return &Controller{factory: factory}
}

// OnTriggerFired starts ringing the given sound asset, replacing any
// session already playing.
func (c *Controller) OnTriggerFired(assetPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// the old session must be fully stopped and released before a new
	// one exists
	c.stopLocked()

	session, err := c.factory.NewSession(assetPath)
	if err != nil {
		return fmt.Errorf("create playback session: %w", err)
	}

	c.session = session
	c.sessionID = uuid.New()
	c.state = Playing

	session.SetVolume(1.0)
	if err := session.Play(); err != nil {
		c.stopLocked()
		return fmt.Errorf("start playback session: %w", err)
	}

	go c.watch(session, c.sessionID)
	return nil
}

// watch drives the manual loop: every completed status replays the
// session until it is no longer the current one.
func (c *Controller) watch(session Session, id uuid.UUID) {
	for status := range session.Status() {
		if status != StatusCompleted {
			continue
		}

		c.mu.Lock()
		if c.state != Playing || c.sessionID != id {
			c.mu.Unlock()
			return
		}
		err := session.Play()
		c.mu.Unlock()

		if err != nil {
			log.Printf("Failed to loop alarm sound: %v", err)
			return
		}
	}
}

// OnStopAction stops and releases the current session. No-op when
// already idle.
func (c *Controller) OnStopAction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) stopLocked() {
	if c.state != Playing || c.session == nil {
		return
	}
	c.session.Stop()
	c.session.Release()
	c.session = nil
	c.state = Idle
}
