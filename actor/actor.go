// Package actor holds the behaviour of entities that act on their own each
// frame: the player and script-driven walkers. Actors only set velocities;
// the physics scene moves them and resolves collisions.
package actor

import (
	"pluvia/gametime"
	"pluvia/physics"
)

// Actor is an entity with per-frame behaviour. Update runs before the
// physics scene ticks.
type Actor interface {
	Entity() *physics.Entity
	Update(t gametime.Time)
}

// Update runs every actor for one frame
func Update(actors []Actor, t gametime.Time) {
	for _, a := range actors {
		a.Update(t)
	}
}
