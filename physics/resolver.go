package physics

import (
	"math"

	"pluvia/geom"
)

// ContactEpsilon absorbs floating point error when comparing edges, e.g. a
// bottom edge that was clamped to a tile top in an earlier tick
const ContactEpsilon = 1e-6

// Contact describes the outcome of resolving one entity against one tile
type Contact struct {
	// Resolved is set when the entity position was corrected
	Resolved bool

	// Grounded is set when the tile supports the entity from below
	Grounded bool
}

// TileResolver corrects an entity that overlaps a solid tile.
// Implementations mutate the entity's position and velocity in place.
type TileResolver interface {
	Resolve(e *Entity, tile geom.Rect) Contact
}

// EdgeResolver infers the approach direction from previous versus current
// edge positions and clamps the entity to the face it crossed.
//
// When a vertical and a horizontal crossing are both detected for the same
// tile, only the axis whose face was reached last during the step is
// corrected (the swept-AABB entry time); ties resolve vertically.
type EdgeResolver struct{}

// Resolve implements TileResolver
func (EdgeResolver) Resolve(e *Entity, tile geom.Rect) Contact {
	box := e.BoundingBox()
	prev := e.PreviousBoundingBox()

	if !box.Intersects(tile, false) {
		return restingContact(e, box, prev, tile)
	}

	fromAbove := prev.Bottom() <= tile.Top()+ContactEpsilon && box.Bottom() >= tile.Top()
	fromBelow := prev.Top() >= tile.Bottom()-ContactEpsilon && box.Top() <= tile.Bottom()
	fromRight := prev.Left() >= tile.Right()-ContactEpsilon && box.Left() <= tile.Right()
	fromLeft := prev.Right() <= tile.Left()+ContactEpsilon && box.Right() >= tile.Left()

	vertical := fromAbove || fromBelow
	horizontal := fromRight || fromLeft
	if vertical && horizontal {
		if verticalEntry(prev, box, tile, fromAbove) >= horizontalEntry(prev, box, tile, fromLeft) {
			horizontal = false
		} else {
			vertical = false
		}
	}

	var c Contact
	if vertical {
		if fromAbove {
			landOn(e, tile)
			c.Grounded = true
		} else {
			e.Position.Y = tile.Bottom()
			if e.Velocity.Y < 0 {
				e.Velocity.Y = 0
			}
		}
		c.Resolved = true
	}
	if horizontal {
		if fromRight {
			e.Position.X = tile.Right()
			if e.Velocity.X < 0 {
				e.Velocity.X = 0
			}
		} else {
			e.Position.X = tile.Left() - e.Width()
			if e.Velocity.X > 0 {
				e.Velocity.X = 0
			}
		}
		c.Resolved = true
	}
	return c
}

// verticalEntry returns the fraction of the step at which the moving
// horizontal edge reached the tile face
func verticalEntry(prev, box, tile geom.Rect, fromAbove bool) float64 {
	if fromAbove {
		return entryFraction(tile.Top()-prev.Bottom(), box.Bottom()-prev.Bottom())
	}
	return entryFraction(prev.Top()-tile.Bottom(), prev.Top()-box.Top())
}

// horizontalEntry returns the fraction of the step at which the moving
// vertical edge reached the tile face
func horizontalEntry(prev, box, tile geom.Rect, fromLeft bool) float64 {
	if fromLeft {
		return entryFraction(tile.Left()-prev.Right(), box.Right()-prev.Right())
	}
	return entryFraction(prev.Left()-tile.Right(), prev.Left()-box.Left())
}

func entryFraction(gap, travel float64) float64 {
	if travel <= 0 {
		return 0
	}
	return geom.Clamp(gap/travel, 0, 1)
}

// restingContact handles an entity whose bottom edge coincides with the top
// of a tile it overlaps horizontally. Exclusive intersection misses this
// case, so without it a resting entity would be pulled down every other tick.
func restingContact(e *Entity, box, prev, tile geom.Rect) Contact {
	if box.OverlapX(tile) <= 0 {
		return Contact{}
	}
	if math.Abs(box.Bottom()-tile.Top()) > ContactEpsilon || prev.Bottom() > tile.Top()+ContactEpsilon {
		return Contact{}
	}
	landOn(e, tile)
	return Contact{Grounded: true}
}

// landOn clamps the entity's bottom to the tile's top and stops downward motion
func landOn(e *Entity, tile geom.Rect) {
	e.Position.Y = tile.Top() - e.Height()
	if e.Velocity.Y > 0 {
		e.Velocity.Y = 0
	}
}

// MTVResolver pushes the entity out along the axis of minimum penetration.
// It does not use the previous position, so it also separates entities that
// start a tick already embedded in a tile.
type MTVResolver struct{}

// Resolve implements TileResolver
func (MTVResolver) Resolve(e *Entity, tile geom.Rect) Contact {
	box := e.BoundingBox()
	if !box.Intersects(tile, false) {
		return restingContact(e, box, e.PreviousBoundingBox(), tile)
	}

	overlapX := box.OverlapX(tile)
	overlapY := box.OverlapY(tile)

	if overlapY <= overlapX {
		if box.Top()+box.H/2 <= tile.Top()+tile.H/2 {
			landOn(e, tile)
			return Contact{Resolved: true, Grounded: true}
		}
		e.Position.Y = tile.Bottom()
		if e.Velocity.Y < 0 {
			e.Velocity.Y = 0
		}
		return Contact{Resolved: true}
	}

	if box.Left()+box.W/2 <= tile.Left()+tile.W/2 {
		e.Position.X = tile.Left() - e.Width()
		if e.Velocity.X > 0 {
			e.Velocity.X = 0
		}
	} else {
		e.Position.X = tile.Right()
		if e.Velocity.X < 0 {
			e.Velocity.X = 0
		}
	}
	return Contact{Resolved: true}
}

// ResolverByName returns the resolver for a config value ("edge" or "mtv").
// Unknown names fall back to the edge resolver.
func ResolverByName(name string) TileResolver {
	switch name {
	case "mtv":
		return MTVResolver{}
	default:
		return EdgeResolver{}
	}
}
