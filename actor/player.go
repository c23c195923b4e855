package actor

import (
	"math"
	"time"

	"pluvia/gametime"
	"pluvia/physics"
)

const (
	// MaxJumpDuration is the longest a held jump keeps pushing upward
	MaxJumpDuration = 700 * time.Millisecond

	// InitialJumpSpeed is the upward speed at the start of a jump, in px/s
	InitialJumpSpeed = 450.0

	// JumpPowerExponent shapes how quickly the jump speed decays
	JumpPowerExponent = 0.3

	// DefaultRunSpeed is the horizontal speed while a direction is held, in px/s
	DefaultRunSpeed = 150.0
)

// JumpSpeed returns the upward speed after the jump has been held for elapsed
func JumpSpeed(elapsed time.Duration) float64 {
	ratio := float64(elapsed) / float64(MaxJumpDuration)
	return InitialJumpSpeed * (1 - math.Pow(ratio, JumpPowerExponent))
}

// Player is the entity steered by the keyboard.
//
// Input commands (MoveLeft, MoveRight, Jump) record intent for the current
// frame; Update turns the intent into velocity and clears it.
type Player struct {
	entity   *physics.Entity
	RunSpeed float64

	moveX float64
	jump  bool

	// Jump state across frames
	jumpInProgress      bool
	wasJumpingLastFrame bool
	jumpTime            time.Duration
}

// NewPlayer wraps entity as the player
func NewPlayer(entity *physics.Entity) *Player {
	if entity.Name == "" {
		entity.Name = "player"
	}
	return &Player{entity: entity, RunSpeed: DefaultRunSpeed}
}

// Entity implements Actor
func (p *Player) Entity() *physics.Entity {
	return p.entity
}

// MoveLeft is an input command
func (p *Player) MoveLeft(gametime.Time) {
	p.moveX--
}

// MoveRight is an input command
func (p *Player) MoveRight(gametime.Time) {
	p.moveX++
}

// Jump is an input command; bind it to a held key
func (p *Player) Jump(gametime.Time) {
	p.jump = true
}

// IsJumping reports whether a jump is still pushing the player upward
func (p *Player) IsJumping() bool {
	return p.jumpInProgress
}

// Update implements Actor
func (p *Player) Update(t gametime.Time) {
	p.entity.Velocity.X = p.moveX * p.RunSpeed
	p.updateJump(t)

	p.moveX = 0
	p.jump = false
}

// updateJump starts a jump only from the ground and only after the jump key
// was released since the previous jump. Holding the key keeps pushing until
// MaxJumpDuration.
func (p *Player) updateJump(t gametime.Time) {
	if !p.jump {
		p.jumpTime = 0
		p.jumpInProgress = false
		p.wasJumpingLastFrame = false
		return
	}

	if !p.wasJumpingLastFrame && p.entity.IsOnGround() {
		p.jumpTime = t.Elapsed
		p.jumpInProgress = true
	}

	if p.jumpInProgress && p.jumpTime <= MaxJumpDuration {
		p.entity.Velocity.Y = -JumpSpeed(p.jumpTime)
		p.jumpTime += t.Elapsed
	} else {
		// apex reached, falling from here
		p.jumpTime = 0
		p.jumpInProgress = false
	}

	p.wasJumpingLastFrame = true
}
