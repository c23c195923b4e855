package debugstream

import (
	"time"

	"pluvia/physics"
)

// EntityState is one entity as seen by debug clients
type EntityState struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	OnGround bool    `json:"onGround"`
	Buckets  []int   `json:"buckets"`
}

// GridState describes the bucket layout so clients can draw it
type GridState struct {
	BucketWidth  float64 `json:"bucketWidth"`
	BucketHeight float64 `json:"bucketHeight"`
	Cols         int     `json:"cols"`
	Rows         int     `json:"rows"`
}

// Snapshot is the state message sent after each tick
type Snapshot struct {
	Type       string        `json:"type"`
	Tick       uint64        `json:"tick"`
	Scene      string        `json:"scene"`
	Grid       GridState     `json:"grid"`
	Entities   []EntityState `json:"entities"`
	ServerTime int64         `json:"serverTime"`
}

// SnapshotOf captures the entities of a physics scene after a tick.
// The result shares nothing with the scene.
func SnapshotOf(s *physics.Scene, tick uint64) Snapshot {
	g := s.Grid()
	snap := Snapshot{
		Type:  "state",
		Tick:  tick,
		Scene: s.State().String(),
		Grid: GridState{
			BucketWidth:  g.BucketWidth,
			BucketHeight: g.BucketHeight,
			Cols:         g.Cols,
			Rows:         g.Rows,
		},
		Entities:   make([]EntityState, 0, s.Len()),
		ServerTime: time.Now().UnixMilli(),
	}

	for _, e := range s.Entities() {
		snap.Entities = append(snap.Entities, EntityState{
			ID:       uint64(e.ID()),
			Name:     e.Name,
			X:        e.Position.X,
			Y:        e.Position.Y,
			Width:    e.Width(),
			Height:   e.Height(),
			VX:       e.Velocity.X,
			VY:       e.Velocity.Y,
			OnGround: e.IsOnGround(),
			Buckets:  s.EntityBuckets(e),
		})
	}
	return snap
}
