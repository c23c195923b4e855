package actor

import (
	"github.com/sirupsen/logrus"

	"pluvia/gametime"
	"pluvia/logger"
	"pluvia/physics"
	"pluvia/script"
)

const (
	// DefaultWalkSpeed is a walker's horizontal speed at full intent, in px/s
	DefaultWalkSpeed = 60.0

	// DefaultHopSpeed is the upward speed of a walker's jump, in px/s
	DefaultHopSpeed = 250.0
)

// Decider chooses a walker's action from its surroundings.
// *script.Behavior implements it.
type Decider interface {
	Decide(ctx script.Context) (script.Decision, error)
}

// DeciderFunc adapts a function to a Decider
type DeciderFunc func(ctx script.Context) (script.Decision, error)

// Decide implements Decider
func (f DeciderFunc) Decide(ctx script.Context) (script.Decision, error) {
	return f(ctx)
}

// Walker is a non-player entity whose movement comes from a Decider.
// A decider error idles the walker for good; it is logged once.
type Walker struct {
	entity  *physics.Entity
	decider Decider
	target  *physics.Entity

	WalkSpeed float64
	HopSpeed  float64

	failed bool
	log    *logrus.Entry
}

// NewWalker creates a walker; target is the entity it reacts to and may be nil
func NewWalker(entity *physics.Entity, decider Decider, target *physics.Entity) *Walker {
	if entity.Name == "" {
		entity.Name = "walker"
	}
	return &Walker{
		entity:    entity,
		decider:   decider,
		target:    target,
		WalkSpeed: DefaultWalkSpeed,
		HopSpeed:  DefaultHopSpeed,
		log:       logger.Component("actor"),
	}
}

// Entity implements Actor
func (w *Walker) Entity() *physics.Entity {
	return w.entity
}

// Failed reports whether the decider errored and the walker stopped
func (w *Walker) Failed() bool {
	return w.failed
}

// Update implements Actor
func (w *Walker) Update(t gametime.Time) {
	if w.failed || w.decider == nil {
		w.entity.Velocity.X = 0
		return
	}

	ctx := script.BuildContext(w.entity, w.target, t.Delta(), t.Total.Seconds())
	d, err := w.decider.Decide(ctx)
	if err != nil {
		w.failed = true
		w.entity.Velocity.X = 0
		w.log.WithError(err).WithField("entity", w.entity.String()).Warn("walker behaviour failed; idling")
		return
	}

	d = d.Clamped()
	w.entity.Velocity.X = d.MoveX * w.WalkSpeed
	if d.Jump && w.entity.IsOnGround() {
		w.entity.Velocity.Y = -w.HopSpeed
	}
}
