package physics

import (
	"testing"

	"pluvia/geom"
)

// placed returns an entity whose previous box is at prev and current box at
// cur, as left by integration
func placed(w, h float64, prev, cur, vel geom.Vec2) *Entity {
	e := NewEntity(prev.X, prev.Y, NewBox(w, h))
	e.Position = cur
	e.Velocity = vel
	return e
}

func TestEdgeResolverLanding(t *testing.T) {
	// bottom edge moved from 90 to 100, tile top is 100
	e := placed(10, 10, geom.Vec2{X: 0, Y: 80}, geom.Vec2{X: 0, Y: 90}, geom.Vec2{X: 0, Y: 50})
	tile := geom.NewRect(0, 100, 10, 10)

	c := EdgeResolver{}.Resolve(e, tile)

	if !c.Grounded {
		t.Error("landing did not report ground contact")
	}
	if e.Position.Y != 90 {
		t.Errorf("Position.Y = %v, want 90", e.Position.Y)
	}
	if e.Velocity.Y != 0 {
		t.Errorf("Velocity.Y = %v, want 0", e.Velocity.Y)
	}
}

func TestEdgeResolverPenetratingLanding(t *testing.T) {
	e := placed(10, 10, geom.Vec2{X: 0, Y: 85}, geom.Vec2{X: 0, Y: 96}, geom.Vec2{X: 0, Y: 200})
	tile := geom.NewRect(0, 100, 10, 10)

	c := EdgeResolver{}.Resolve(e, tile)

	if !c.Resolved || !c.Grounded {
		t.Errorf("Contact = %+v, want resolved and grounded", c)
	}
	if e.Position.Y != 90 || e.Velocity.Y != 0 {
		t.Errorf("after landing: pos %v vel %v", e.Position, e.Velocity)
	}
}

func TestEdgeResolverFaces(t *testing.T) {
	tile := geom.NewRect(50, 50, 10, 10)

	tests := []struct {
		name     string
		prev     geom.Vec2
		cur      geom.Vec2
		vel      geom.Vec2
		wantPos  geom.Vec2
		wantVel  geom.Vec2
		grounded bool
	}{
		{
			name:    "ceiling",
			prev:    geom.Vec2{X: 50, Y: 61},
			cur:     geom.Vec2{X: 50, Y: 55},
			vel:     geom.Vec2{X: 0, Y: -300},
			wantPos: geom.Vec2{X: 50, Y: 60},
			wantVel: geom.Vec2{X: 0, Y: 0},
		},
		{
			name:    "wall on the right",
			prev:    geom.Vec2{X: 39, Y: 50},
			cur:     geom.Vec2{X: 43, Y: 50},
			vel:     geom.Vec2{X: 120, Y: 0},
			wantPos: geom.Vec2{X: 40, Y: 50},
			wantVel: geom.Vec2{X: 0, Y: 0},
		},
		{
			name:    "wall on the left",
			prev:    geom.Vec2{X: 61, Y: 50},
			cur:     geom.Vec2{X: 57, Y: 50},
			vel:     geom.Vec2{X: -120, Y: 0},
			wantPos: geom.Vec2{X: 60, Y: 50},
			wantVel: geom.Vec2{X: 0, Y: 0},
		},
		{
			name:     "floor keeps horizontal speed",
			prev:     geom.Vec2{X: 52, Y: 39},
			cur:      geom.Vec2{X: 54, Y: 42},
			vel:      geom.Vec2{X: 60, Y: 90},
			wantPos:  geom.Vec2{X: 54, Y: 40},
			wantVel:  geom.Vec2{X: 60, Y: 0},
			grounded: true,
		},
		{
			name:    "pushed out while standing still",
			prev:    geom.Vec2{X: 61, Y: 50},
			cur:     geom.Vec2{X: 59, Y: 50},
			vel:     geom.Vec2{X: 0, Y: 0},
			wantPos: geom.Vec2{X: 60, Y: 50},
			wantVel: geom.Vec2{X: 0, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := placed(10, 10, tt.prev, tt.cur, tt.vel)
			c := EdgeResolver{}.Resolve(e, tile)

			if !c.Resolved {
				t.Fatal("overlap was not resolved")
			}
			if c.Grounded != tt.grounded {
				t.Errorf("Grounded = %v, want %v", c.Grounded, tt.grounded)
			}
			if e.Position != tt.wantPos {
				t.Errorf("Position = %v, want %v", e.Position, tt.wantPos)
			}
			if e.Velocity != tt.wantVel {
				t.Errorf("Velocity = %v, want %v", e.Velocity, tt.wantVel)
			}
		})
	}
}

func TestEdgeResolverCornerTieBreak(t *testing.T) {
	tile := geom.NewRect(12, 12, 10, 10)

	tests := []struct {
		name    string
		step    geom.Vec2
		wantPos geom.Vec2
	}{
		// horizontal face reached at 0.5, vertical at 0.67: vertical wins
		{"vertical crossed last", geom.Vec2{X: 4, Y: 3}, geom.Vec2{X: 4, Y: 2}},
		// vertical face reached at 0.5, horizontal at 0.67: horizontal wins
		{"horizontal crossed last", geom.Vec2{X: 3, Y: 4}, geom.Vec2{X: 2, Y: 4}},
		{"exact diagonal resolves vertically", geom.Vec2{X: 4, Y: 4}, geom.Vec2{X: 4, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := placed(10, 10, geom.Vec2{}, tt.step, tt.step)
			EdgeResolver{}.Resolve(e, tile)

			if e.Position != tt.wantPos {
				t.Errorf("Position = %v, want %v", e.Position, tt.wantPos)
			}
			if e.BoundingBox().Intersects(tile, false) {
				t.Error("entity still overlaps the tile")
			}
		})
	}
}

func TestEdgeResolverRestingContact(t *testing.T) {
	tile := geom.NewRect(0, 100, 10, 10)

	tests := []struct {
		name     string
		prevY    float64
		curY     float64
		x        float64
		vy       float64
		grounded bool
		wantVY   float64
	}{
		{"resting", 90, 90, 0, 0, true, 0},
		{"arriving exactly", 80, 90, 0, 50, true, 0},
		{"leaving upward keeps speed", 90, 90, 0, -200, true, -200},
		{"small upward speed is not zeroed", 90, 90, 0, -5, true, -5},
		{"touching only at a corner", 90, 90, 10, 0, false, 0},
		{"above the tile", 70, 80, 0, 50, false, 50},
		{"coming from below", 100, 90, 0, 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := placed(10, 10, geom.Vec2{X: tt.x, Y: tt.prevY}, geom.Vec2{X: tt.x, Y: tt.curY}, geom.Vec2{Y: tt.vy})
			c := EdgeResolver{}.Resolve(e, tile)

			if c.Grounded != tt.grounded {
				t.Errorf("Grounded = %v, want %v", c.Grounded, tt.grounded)
			}
			if e.Velocity.Y != tt.wantVY {
				t.Errorf("Velocity.Y = %v, want %v", e.Velocity.Y, tt.wantVY)
			}
		})
	}
}

func TestEdgeResolverIgnoresDistantTile(t *testing.T) {
	e := placed(10, 10, geom.Vec2{X: 0, Y: 0}, geom.Vec2{X: 5, Y: 5}, geom.Vec2{X: 1, Y: 1})
	c := EdgeResolver{}.Resolve(e, geom.NewRect(100, 100, 10, 10))

	if c.Resolved || c.Grounded {
		t.Errorf("Contact = %+v, want none", c)
	}
	if e.Position != (geom.Vec2{X: 5, Y: 5}) || e.Velocity != (geom.Vec2{X: 1, Y: 1}) {
		t.Errorf("entity was modified: pos %v vel %v", e.Position, e.Velocity)
	}
}

func TestMTVResolver(t *testing.T) {
	tile := geom.NewRect(0, 12, 10, 10)

	tests := []struct {
		name     string
		pos      geom.Vec2
		vel      geom.Vec2
		wantPos  geom.Vec2
		wantVel  geom.Vec2
		grounded bool
	}{
		{
			name:     "embedded from above",
			pos:      geom.Vec2{X: 0, Y: 5},
			vel:      geom.Vec2{X: 0, Y: 40},
			wantPos:  geom.Vec2{X: 0, Y: 2},
			wantVel:  geom.Vec2{X: 0, Y: 0},
			grounded: true,
		},
		{
			name:    "embedded from below",
			pos:     geom.Vec2{X: 0, Y: 19},
			vel:     geom.Vec2{X: 0, Y: -40},
			wantPos: geom.Vec2{X: 0, Y: 22},
			wantVel: geom.Vec2{X: 0, Y: 0},
		},
		{
			name:    "embedded from the left",
			pos:     geom.Vec2{X: -8, Y: 12},
			vel:     geom.Vec2{X: 30, Y: 0},
			wantPos: geom.Vec2{X: -10, Y: 12},
			wantVel: geom.Vec2{X: 0, Y: 0},
		},
		{
			name:    "embedded from the right",
			pos:     geom.Vec2{X: 7, Y: 12},
			vel:     geom.Vec2{X: -30, Y: 0},
			wantPos: geom.Vec2{X: 10, Y: 12},
			wantVel: geom.Vec2{X: 0, Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no previous motion: the edge resolver could not tell the face
			e := placed(10, 10, tt.pos, tt.pos, tt.vel)
			c := MTVResolver{}.Resolve(e, tile)

			if !c.Resolved {
				t.Fatal("overlap was not resolved")
			}
			if c.Grounded != tt.grounded {
				t.Errorf("Grounded = %v, want %v", c.Grounded, tt.grounded)
			}
			if e.Position != tt.wantPos {
				t.Errorf("Position = %v, want %v", e.Position, tt.wantPos)
			}
			if e.Velocity != tt.wantVel {
				t.Errorf("Velocity = %v, want %v", e.Velocity, tt.wantVel)
			}
		})
	}
}

func TestResolverByName(t *testing.T) {
	if _, ok := ResolverByName("mtv").(MTVResolver); !ok {
		t.Error(`ResolverByName("mtv") is not an MTVResolver`)
	}
	for _, name := range []string{"edge", "", "unknown"} {
		if _, ok := ResolverByName(name).(EdgeResolver); !ok {
			t.Errorf("ResolverByName(%q) is not an EdgeResolver", name)
		}
	}
}
