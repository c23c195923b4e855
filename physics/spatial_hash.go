package physics

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"pluvia/geom"
)

// ErrInvalidGrid is returned when bucket dimensions are not finite and positive
var ErrInvalidGrid = errors.New("invalid spatial hash grid")

// Grid describes the uniform bucket layout over the world
type Grid struct {
	BucketWidth  float64
	BucketHeight float64
	Cols         int
	Rows         int
}

// NewGrid divides a world of the given pixel size into cols x rows buckets
func NewGrid(worldWidth, worldHeight float64, cols, rows int) (Grid, error) {
	if cols <= 0 || rows <= 0 {
		return Grid{}, fmt.Errorf("%w: %d columns x %d rows", ErrInvalidGrid, cols, rows)
	}

	g := Grid{
		BucketWidth:  worldWidth / float64(cols),
		BucketHeight: worldHeight / float64(rows),
		Cols:         cols,
		Rows:         rows,
	}
	if !validDimension(g.BucketWidth) || !validDimension(g.BucketHeight) {
		return Grid{}, fmt.Errorf("%w: bucket size %vx%v from world %vx%v",
			ErrInvalidGrid, g.BucketWidth, g.BucketHeight, worldWidth, worldHeight)
	}
	return g, nil
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// BucketID maps a world position to its bucket id.
// Positions outside the world still map to a (possibly negative) id.
func (g Grid) BucketID(p geom.Vec2) int {
	return int(math.Floor(p.X/g.BucketWidth)) + g.Cols*int(math.Floor(p.Y/g.BucketHeight))
}

// CornerBuckets returns the bucket ids of the four corners of r
func (g Grid) CornerBuckets(r geom.Rect) [4]int {
	var ids [4]int
	for i, corner := range r.Corners() {
		ids[i] = g.BucketID(corner)
	}
	return ids
}

// SpatialHash indexes occupants by bucket id for broad-phase queries
type SpatialHash struct {
	grid Grid

	// Buckets are kept across rebuilds so their storage is reused
	buckets map[int]*Bucket

	// Ids of non-empty buckets
	occupied []int
	sorted   bool
}

// NewSpatialHash creates an empty hash over the given grid
func NewSpatialHash(grid Grid) *SpatialHash {
	return &SpatialHash{
		grid:     grid,
		buckets:  make(map[int]*Bucket),
		occupied: make([]int, 0, grid.Cols*grid.Rows),
		sorted:   true,
	}
}

// Grid returns the bucket layout
func (h *SpatialHash) Grid() Grid {
	return h.grid
}

// Insert adds an occupant to a bucket. Re-inserting the same occupant into
// the same bucket is a no-op and returns false.
func (h *SpatialHash) Insert(bucketID, occupant int) bool {
	b, ok := h.buckets[bucketID]
	if !ok {
		b = NewBucket(8)
		h.buckets[bucketID] = b
	}

	wasEmpty := b.Count == 0
	if !b.Add(occupant) {
		return false
	}
	if wasEmpty {
		if n := len(h.occupied); n > 0 && h.occupied[n-1] > bucketID {
			h.sorted = false
		}
		h.occupied = append(h.occupied, bucketID)
	}
	return true
}

// InsertRect adds an occupant under the bucket of each of its four corners
func (h *SpatialHash) InsertRect(r geom.Rect, occupant int) {
	for _, id := range h.grid.CornerBuckets(r) {
		h.Insert(id, occupant)
	}
}

// Clear empties every bucket, keeping their capacity
func (h *SpatialHash) Clear() {
	for _, id := range h.occupied {
		h.buckets[id].Clear()
	}
	h.occupied = h.occupied[:0]
	h.sorted = true
}

// Rebuild clears the hash and re-inserts occupants 0..n-1 using their bounds
func (h *SpatialHash) Rebuild(n int, boundsOf func(i int) geom.Rect) {
	h.Clear()
	for i := 0; i < n; i++ {
		h.InsertRect(boundsOf(i), i)
	}
}

// Bucket returns the occupants of a bucket; nil when the bucket is empty.
// The returned slice is only valid until the next mutation.
func (h *SpatialHash) Bucket(id int) []int {
	b, ok := h.buckets[id]
	if !ok || b.Count == 0 {
		return nil
	}
	return b.Items()
}

// Contains reports whether the occupant is indexed under the bucket
func (h *SpatialHash) Contains(id, occupant int) bool {
	b, ok := h.buckets[id]
	return ok && b.Contains(occupant)
}

// BucketIDs returns the ids of non-empty buckets in ascending order.
// The returned slice is only valid until the next mutation.
func (h *SpatialHash) BucketIDs() []int {
	if !h.sorted {
		slices.Sort(h.occupied)
		h.sorted = true
	}
	return h.occupied
}

// BucketsOf returns, in ascending order, every bucket holding the occupant
func (h *SpatialHash) BucketsOf(occupant int) []int {
	var ids []int
	for _, id := range h.BucketIDs() {
		if h.buckets[id].Contains(occupant) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of non-empty buckets
func (h *SpatialHash) Len() int {
	return len(h.occupied)
}
