package physics

// Bucket is one cell of a spatial hash. Occupants are indexes into the
// owning scene's contiguous tile or entity slice.
type Bucket struct {
	// Occupants (preallocated slice, reused across rebuilds)
	Occupants []int

	// Current count of occupants
	Count int
}

// NewBucket creates a new bucket with preallocated storage
func NewBucket(initialCapacity int) *Bucket {
	return &Bucket{
		Occupants: make([]int, 0, initialCapacity),
		Count:     0,
	}
}

// Add adds an occupant to this bucket. Returns false if it was already present.
func (b *Bucket) Add(occupant int) bool {
	for i := 0; i < b.Count; i++ {
		if b.Occupants[i] == occupant {
			return false
		}
	}

	if b.Count < len(b.Occupants) {
		b.Occupants[b.Count] = occupant
	} else {
		b.Occupants = append(b.Occupants, occupant)
	}
	b.Count++
	return true
}

// Contains reports whether the occupant is in this bucket
func (b *Bucket) Contains(occupant int) bool {
	for i := 0; i < b.Count; i++ {
		if b.Occupants[i] == occupant {
			return true
		}
	}
	return false
}

// Items returns the active occupants
func (b *Bucket) Items() []int {
	return b.Occupants[:b.Count]
}

// Clear removes all occupants (but keeps capacity)
func (b *Bucket) Clear() {
	b.Count = 0
}
