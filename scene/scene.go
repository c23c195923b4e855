// Package scene owns the active game scene and switches between scenes.
package scene

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"pluvia/gametime"
	"pluvia/logger"
)

// ErrNoScene is returned by Update when no scene is active
var ErrNoScene = errors.New("no active scene")

// Scene is a game state with a lifecycle
type Scene interface {
	OnStart() error
	OnUpdate(t gametime.Time) error
	OnStop()
}

// Manager holds the active scene. Switching stops the old scene before
// starting the new one.
type Manager struct {
	current Scene

	// Transition requested by a scene during its update
	next       Scene
	hasPending bool

	log *logrus.Entry
}

// NewManager creates a manager with no active scene
func NewManager() *Manager {
	return &Manager{log: logger.Component("scene")}
}

// Active returns the active scene, or nil
func (m *Manager) Active() Scene {
	return m.current
}

// Switch stops the active scene and starts next immediately.
// If next fails to start, no scene is active afterwards.
func (m *Manager) Switch(next Scene) error {
	if m.current != nil {
		m.log.WithField("scene", sceneName(m.current)).Debug("stopping scene")
		m.current.OnStop()
		m.current = nil
	}
	if next == nil {
		return nil
	}

	if err := next.OnStart(); err != nil {
		m.log.WithError(err).WithField("scene", sceneName(next)).Error("scene failed to start")
		return fmt.Errorf("start %s: %w", sceneName(next), err)
	}
	m.current = next
	m.log.WithField("scene", sceneName(next)).Info("scene started")
	return nil
}

// Request schedules a switch to next after the current update completes.
// A nil scene requests exit. The last request in a frame wins.
func (m *Manager) Request(next Scene) {
	m.next = next
	m.hasPending = true
}

// Update runs one frame of the active scene, then applies any requested switch
func (m *Manager) Update(t gametime.Time) error {
	if m.current == nil {
		return ErrNoScene
	}

	if err := m.current.OnUpdate(t); err != nil {
		return fmt.Errorf("update %s: %w", sceneName(m.current), err)
	}

	if m.hasPending {
		next := m.next
		m.next = nil
		m.hasPending = false
		return m.Switch(next)
	}
	return nil
}

// Stop stops the active scene and drops any pending request
func (m *Manager) Stop() {
	m.next = nil
	m.hasPending = false
	_ = m.Switch(nil)
}

func sceneName(s Scene) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
