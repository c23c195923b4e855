package physics

// EntityCollider is the entity-vs-entity pass that runs over each bucket's
// entity list after tile resolution. Pairs are de-duplicated per tick by the
// scene, so Collide sees each candidate pair at most once.
type EntityCollider interface {
	Collide(a, b *Entity)
}

// NotifyCollider reports overlapping entities to their OnCollide callbacks
// without moving them
type NotifyCollider struct{}

// Collide implements EntityCollider
func (NotifyCollider) Collide(a, b *Entity) {
	if !a.BoundingBox().Intersects(b.BoundingBox(), false) {
		return
	}
	if a.OnCollide != nil {
		a.OnCollide(b)
	}
	if b.OnCollide != nil {
		b.OnCollide(a)
	}
}

// pairKey identifies an unordered entity pair
type pairKey struct {
	lo, hi EntityID
}

func makePairKey(a, b *Entity) pairKey {
	if a.id < b.id {
		return pairKey{lo: a.id, hi: b.id}
	}
	return pairKey{lo: b.id, hi: a.id}
}
