package physics

import (
	"fmt"
	"sync/atomic"

	"pluvia/geom"
)

// EntityID is a unique identifier for an entity.
// IDs are stable across registration and removal, unlike hash occupant indexes.
type EntityID uint64

var nextEntityID uint64

// generateEntityID creates a new unique entity ID
func generateEntityID() EntityID {
	return EntityID(atomic.AddUint64(&nextEntityID, 1))
}

// Visual is the visual representation attached to an entity.
// Physics only needs its size and a way to keep its position in sync.
type Visual interface {
	Width() float64
	Height() float64
	Depth() float64
	SetPosition(x, y float64)
}

// Box is a bare Visual with no graphics, used by headless simulation
type Box struct {
	X, Y float64
	W, H float64
	Z    float64
}

// NewBox creates a box visual of the given size
func NewBox(w, h float64) *Box {
	return &Box{W: w, H: h}
}

func (b *Box) Width() float64  { return b.W }
func (b *Box) Height() float64 { return b.H }
func (b *Box) Depth() float64  { return b.Z }

func (b *Box) SetPosition(x, y float64) {
	b.X = x
	b.Y = y
}

// Entity is a dynamic simulation object (player, NPC, projectile)
type Entity struct {
	id EntityID

	// Position in world coordinates (top-left of the bounding box)
	Position geom.Vec2

	// PreviousPosition is the position before the most recent integration step
	PreviousPosition geom.Vec2

	// Velocity in world units per second
	Velocity geom.Vec2

	// Visual supplies the bounding box size
	Visual Visual

	// OnCollide is called when another entity's bounding box overlaps this one.
	// Only invoked when the scene has an EntityCollider installed.
	OnCollide func(other *Entity)

	// Name is used in logs and debug snapshots
	Name string

	grounded bool
}

// NewEntity creates an entity at the given position
func NewEntity(x, y float64, visual Visual) *Entity {
	e := &Entity{
		id:       generateEntityID(),
		Position: geom.Vec2{X: x, Y: y},
		Visual:   visual,
	}
	e.PreviousPosition = e.Position
	e.syncVisual()
	return e
}

// ID returns the entity's unique identifier
func (e *Entity) ID() EntityID {
	return e.id
}

// Width returns the bounding box width
func (e *Entity) Width() float64 {
	if e.Visual == nil {
		return 0
	}
	return e.Visual.Width()
}

// Height returns the bounding box height
func (e *Entity) Height() float64 {
	if e.Visual == nil {
		return 0
	}
	return e.Visual.Height()
}

// BoundingBox returns the current bounding box
func (e *Entity) BoundingBox() geom.Rect {
	return geom.NewRect(e.Position.X, e.Position.Y, e.Width(), e.Height())
}

// PreviousBoundingBox returns the bounding box at the start of the current tick
func (e *Entity) PreviousBoundingBox() geom.Rect {
	return geom.NewRect(e.PreviousPosition.X, e.PreviousPosition.Y, e.Width(), e.Height())
}

// IsOnGround reports whether a supporting tile was found during the last tick
func (e *Entity) IsOnGround() bool {
	return e.grounded
}

// SetPosition teleports the entity; the previous position follows so the
// next collision pass does not infer motion from the jump.
func (e *Entity) SetPosition(x, y float64) {
	e.Position = geom.Vec2{X: x, Y: y}
	e.PreviousPosition = e.Position
	e.syncVisual()
}

// String implements fmt.Stringer
func (e *Entity) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s#%d", e.Name, e.id)
	}
	return fmt.Sprintf("entity#%d", e.id)
}

// integrate advances the position by velocity*dt, capturing the previous position first
func (e *Entity) integrate(dt float64) {
	e.PreviousPosition = e.Position
	e.Position = e.Position.Add(e.Velocity.Scale(dt))

	if !e.Position.IsFinite() {
		panic(fmt.Sprintf("physics: %v position became non-finite (%v) integrating velocity %v over %v",
			e, e.Position, e.Velocity, dt))
	}
}

// syncVisual copies the entity position to its visual
func (e *Entity) syncVisual() {
	if e.Visual != nil {
		e.Visual.SetPosition(e.Position.X, e.Position.Y)
	}
}
