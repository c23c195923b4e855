package script

import (
	"math"

	"pluvia/physics"
)

// Context is passed to behaviour scripts as input.
// It holds the controlled entity and the player it reacts to.
type Context struct {
	// Entity state
	EntityX  float64 `json:"entityX"`
	EntityY  float64 `json:"entityY"`
	EntityVX float64 `json:"entityVX"`
	EntityVY float64 `json:"entityVY"`
	OnGround bool    `json:"onGround"`

	// Player state
	PlayerX      float64 `json:"playerX"`
	PlayerY      float64 `json:"playerY"`
	PlayerActive bool    `json:"playerActive"`

	// Computed values
	DistanceToPlayer  float64 `json:"distanceToPlayer"`
	DirectionToPlayer float64 `json:"directionToPlayer"`

	// Frame timing in seconds
	DeltaTime float64 `json:"deltaTime"`
	GameTime  float64 `json:"gameTime"`
}

// Decision is returned from behaviour scripts
type Decision struct {
	// MoveX is the horizontal intent, -1 (left) to 1 (right)
	MoveX float64 `json:"moveX"`

	// Jump requests a jump; ignored while airborne
	Jump bool `json:"jump"`
}

// Clamped returns the decision with MoveX limited to [-1, 1]
func (d Decision) Clamped() Decision {
	if math.IsNaN(d.MoveX) {
		d.MoveX = 0
	}
	d.MoveX = math.Max(-1, math.Min(1, d.MoveX))
	return d
}

// BuildContext creates a Context for entity. player may be nil.
func BuildContext(entity, player *physics.Entity, deltaTime, gameTime float64) Context {
	ctx := Context{
		EntityX:   entity.Position.X,
		EntityY:   entity.Position.Y,
		EntityVX:  entity.Velocity.X,
		EntityVY:  entity.Velocity.Y,
		OnGround:  entity.IsOnGround(),
		DeltaTime: deltaTime,
		GameTime:  gameTime,
	}

	if player != nil {
		dx := player.Position.X - entity.Position.X
		dy := player.Position.Y - entity.Position.Y
		ctx.PlayerX = player.Position.X
		ctx.PlayerY = player.Position.Y
		ctx.PlayerActive = true
		ctx.DistanceToPlayer = math.Hypot(dx, dy)
		switch {
		case dx > 0:
			ctx.DirectionToPlayer = 1
		case dx < 0:
			ctx.DirectionToPlayer = -1
		}
	}

	return ctx
}
