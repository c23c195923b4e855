// Package input binds commands to key presses and key releases.
//
// The package is independent of any windowing library: key state comes from
// a Source, so the same bindings drive an ebiten window, a scripted
// simulation or a test.
package input

import (
	"github.com/sirupsen/logrus"

	"pluvia/gametime"
	"pluvia/logger"
)

// Command is an action bound to a key
type Command func(t gametime.Time)

// Source reports whether a key is currently held down
type Source[K comparable] interface {
	Pressed(key K) bool
}

// SourceFunc adapts a function to a Source
type SourceFunc[K comparable] func(key K) bool

// Pressed implements Source
func (f SourceFunc[K]) Pressed(key K) bool {
	return f(key)
}

// StateSource is a Source backed by a map of held keys.
// Useful for scripted input and tests.
type StateSource[K comparable] map[K]bool

// Pressed implements Source
func (s StateSource[K]) Pressed(key K) bool {
	return s[key]
}

// Press marks keys as held
func (s StateSource[K]) Press(keys ...K) {
	for _, k := range keys {
		s[k] = true
	}
}

// Release marks keys as not held
func (s StateSource[K]) Release(keys ...K) {
	for _, k := range keys {
		delete(s, k)
	}
}

type binding[K comparable] struct {
	key     K
	command Command
}

// Manager runs bound commands once per frame.
//
// Press bindings fire on every frame the key is held. Release bindings fire
// once on the frame the key goes from held to not held. Bindings run in the
// order they were added, press bindings first.
type Manager[K comparable] struct {
	source  Source[K]
	press   []binding[K]
	release []binding[K]

	// Key state observed at the end of the previous frame
	held map[K]bool

	log *logrus.Entry
}

// NewManager creates a manager reading key state from source
func NewManager[K comparable](source Source[K]) *Manager[K] {
	return &Manager[K]{
		source: source,
		held:   make(map[K]bool),
		log:    logger.Component("input"),
	}
}

// BindPress binds a command to a held key, replacing any previous press binding
func (m *Manager[K]) BindPress(key K, cmd Command) {
	m.press = bind(m.press, key, cmd, m.log)
}

// BindRelease binds a command to a key release, replacing any previous release binding
func (m *Manager[K]) BindRelease(key K, cmd Command) {
	m.release = bind(m.release, key, cmd, m.log)
}

func bind[K comparable](bindings []binding[K], key K, cmd Command, log *logrus.Entry) []binding[K] {
	for i := range bindings {
		if bindings[i].key == key {
			log.WithField("key", key).Debug("replacing key binding")
			bindings[i].command = cmd
			return bindings
		}
	}
	return append(bindings, binding[K]{key: key, command: cmd})
}

// Unbind removes both the press and the release binding of a key
func (m *Manager[K]) Unbind(key K) {
	m.press = unbind(m.press, key)
	m.release = unbind(m.release, key)
	delete(m.held, key)
}

func unbind[K comparable](bindings []binding[K], key K) []binding[K] {
	out := bindings[:0]
	for _, b := range bindings {
		if b.key != key {
			out = append(out, b)
		}
	}
	return out
}

// Execute polls the source and runs the commands whose condition holds this frame
func (m *Manager[K]) Execute(t gametime.Time) {
	// Sample every key once so press and release see the same frame
	pressed := make(map[K]bool, len(m.press)+len(m.release))
	sample := func(key K) bool {
		p, ok := pressed[key]
		if !ok {
			p = m.source.Pressed(key)
			pressed[key] = p
		}
		return p
	}

	for _, b := range m.press {
		if sample(b.key) {
			b.command(t)
		}
	}
	for _, b := range m.release {
		if p := sample(b.key); m.held[b.key] && !p {
			b.command(t)
		}
	}

	clear(m.held)
	for key, p := range pressed {
		if p {
			m.held[key] = true
		}
	}
}

// Held reports whether the key was held at the end of the last Execute
func (m *Manager[K]) Held(key K) bool {
	return m.held[key]
}
