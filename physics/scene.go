package physics

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"pluvia/gametime"
	"pluvia/geom"
	"pluvia/logger"
	"pluvia/tilemap"
)

// ErrSceneState is returned when a lifecycle call does not match the scene state
var ErrSceneState = errors.New("invalid scene state")

// State is the lifecycle state of a physical scene
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the physical constants of a scene
type Config struct {
	// GravityAccel is the downward acceleration in units per second squared
	GravityAccel float64

	// MaxFallSpeed bounds the vertical speed in both directions
	MaxFallSpeed float64

	// LayerName is the map layer holding solid tiles
	LayerName string

	// MaxStep splits longer frames into equal sub-steps so fast entities
	// cannot skip over a tile in one integration. Zero runs each frame as
	// a single step.
	MaxStep time.Duration
}

// DefaultConfig returns the platformer defaults
func DefaultConfig() Config {
	return Config{
		GravityAccel: 600.0, // 10 px per frame at 60 fps
		MaxFallSpeed: 350.0,
		LayerName:    tilemap.ForegroundLayer,
	}
}

// registryOp is a registration change requested while a tick was running
type registryOp struct {
	entity *Entity
	remove bool
}

// Scene is a physical scene: it owns the managed entities, indexes static
// tile geometry once at start, and each tick integrates, re-hashes and
// resolves collisions.
//
// A Scene is not safe for concurrent use; all calls must come from the
// simulation thread.
type Scene struct {
	config   Config
	maps     tilemap.Source
	resolver TileResolver
	collider EntityCollider
	state    State

	tileMap  *tilemap.Map
	grid     Grid
	tiles    []geom.Rect
	tileHash *SpatialHash

	entities   []*Entity
	entityHash *SpatialHash

	// Per-tick scratch space, reused across ticks
	grounded     []bool
	checkedPairs map[pairKey]struct{}

	updating bool
	pending  []registryOp

	log *logrus.Entry
}

// NewScene creates an uninitialized scene that loads its map from maps
func NewScene(config Config, maps tilemap.Source) *Scene {
	return &Scene{
		config:       config,
		maps:         maps,
		resolver:     EdgeResolver{},
		state:        StateUninitialized,
		entities:     make([]*Entity, 0, 16),
		checkedPairs: make(map[pairKey]struct{}),
		log:          logger.Component("physics"),
	}
}

// SetResolver replaces the tile collision resolver
func (s *Scene) SetResolver(r TileResolver) {
	s.resolver = r
}

// SetEntityCollider installs the entity-vs-entity pass; nil disables it
func (s *Scene) SetEntityCollider(c EntityCollider) {
	s.collider = c
}

// OnStart loads the map, builds the bucket grid and indexes every solid tile
// of the foreground layer. On error the scene stays uninitialized.
func (s *Scene) OnStart(mapAssetName string, hashCols, hashRows int) error {
	if s.state != StateUninitialized {
		return fmt.Errorf("%w: cannot start a %s scene", ErrSceneState, s.state)
	}

	m, err := s.maps.Load(mapAssetName)
	if err != nil {
		return fmt.Errorf("failed to load map: %w", err)
	}

	grid, err := NewGrid(float64(m.WidthInPixels()), float64(m.HeightInPixels()), hashCols, hashRows)
	if err != nil {
		return fmt.Errorf("map %q: %w", mapAssetName, err)
	}

	layer, err := m.Layer(s.config.LayerName)
	if err != nil {
		return err
	}

	tiles := make([]geom.Rect, 0, len(layer.Tiles))
	tileHash := NewSpatialHash(grid)
	tw, th := float64(m.TileWidth), float64(m.TileHeight)
	for _, tile := range layer.Tiles {
		if tile.Blank {
			continue
		}
		bounds := geom.NewRect(float64(tile.Col)*tw, float64(tile.Row)*th, tw, th)
		tileHash.InsertRect(bounds, len(tiles))
		tiles = append(tiles, bounds)
	}
	// Sort once; the tile hash is read-only from here on
	tileHash.BucketIDs()

	s.tileMap = m
	s.grid = grid
	s.tiles = tiles
	s.tileHash = tileHash
	s.entityHash = NewSpatialHash(grid)
	for _, e := range s.entities {
		s.checkEntitySize(e)
	}
	s.rebuildEntityHash()
	s.state = StateRunning

	s.log.WithFields(logrus.Fields{
		"map":           mapAssetName,
		"solid_tiles":   len(tiles),
		"tile_buckets":  tileHash.Len(),
		"bucket_width":  grid.BucketWidth,
		"bucket_height": grid.BucketHeight,
		"entities":      len(s.entities),
	}).Info("physical scene started")
	return nil
}

// OnUpdate runs one tick: integrate, rebuild the entity hash, resolve collisions.
// With MaxStep set, frames longer than it run as several equal sub-steps.
// It does nothing unless the scene is running.
func (s *Scene) OnUpdate(t gametime.Time) {
	if s.state != StateRunning {
		return
	}

	n := t.Substeps(s.config.MaxStep)
	dt := t.Delta() / float64(n)

	s.updating = true
	for i := 0; i < n; i++ {
		s.updateEntityPositions(dt)
		s.rebuildEntityHash()
		s.checkCollisions(dt)
	}
	for _, e := range s.entities {
		e.syncVisual()
	}
	s.updating = false

	s.applyPending()
}

// OnStop releases managed entities and spatial hashes
func (s *Scene) OnStop() {
	if s.state == StateStopped {
		return
	}
	s.log.WithField("entities", len(s.entities)).Info("physical scene stopped")

	s.state = StateStopped
	s.entities = nil
	s.pending = nil
	s.entityHash = nil
	s.tileHash = nil
	s.tiles = nil
	s.grounded = nil
}

// RegisterEntity adds an entity to the managed set.
// Registering an entity that is already managed is a no-op.
func (s *Scene) RegisterEntity(e *Entity) {
	if e == nil || s.state == StateStopped {
		return
	}
	if s.updating {
		s.pending = append(s.pending, registryOp{entity: e})
		return
	}
	s.register(e)
}

// RemoveEntity removes an entity from the managed set by identity.
// Removing an entity that is not managed is a no-op.
func (s *Scene) RemoveEntity(e *Entity) {
	if e == nil || s.state == StateStopped {
		return
	}
	if s.updating {
		s.pending = append(s.pending, registryOp{entity: e, remove: true})
		return
	}
	s.remove(e)
}

func (s *Scene) register(e *Entity) {
	if slices.Contains(s.entities, e) {
		s.log.WithField("entity", e.String()).Debug("entity already registered")
		return
	}
	s.entities = append(s.entities, e)
	if s.state == StateRunning {
		s.checkEntitySize(e)
		s.rebuildEntityHash()
	}
}

func (s *Scene) remove(e *Entity) {
	idx := slices.Index(s.entities, e)
	if idx < 0 {
		s.log.WithField("entity", e.String()).Debug("removing entity that is not registered")
		return
	}
	s.entities = slices.Delete(s.entities, idx, idx+1)
	if s.state == StateRunning {
		s.rebuildEntityHash()
	}
}

// applyPending replays registry changes requested during the last tick
func (s *Scene) applyPending() {
	if len(s.pending) == 0 {
		return
	}
	ops := s.pending
	s.pending = nil
	for _, op := range ops {
		if op.remove {
			s.remove(op.entity)
		} else {
			s.register(op.entity)
		}
	}
}

// checkEntitySize warns about entities larger than a bucket: the four-corner
// hashing only covers them when they span at most two buckets per axis.
func (s *Scene) checkEntitySize(e *Entity) {
	if e.Width() > s.grid.BucketWidth || e.Height() > s.grid.BucketHeight {
		s.log.WithFields(logrus.Fields{
			"entity":        e.String(),
			"width":         e.Width(),
			"height":        e.Height(),
			"bucket_width":  s.grid.BucketWidth,
			"bucket_height": s.grid.BucketHeight,
		}).Warn("entity is larger than a hash bucket; collisions may be missed")
	}
}

// updateEntityPositions integrates every managed entity
func (s *Scene) updateEntityPositions(dt float64) {
	for _, e := range s.entities {
		e.integrate(dt)
	}
}

// rebuildEntityHash re-indexes every managed entity by its four corners
func (s *Scene) rebuildEntityHash() {
	if s.entityHash == nil {
		return
	}
	s.entityHash.Rebuild(len(s.entities), func(i int) geom.Rect {
		return s.entities[i].BoundingBox()
	})
}

// checkCollisions resolves each entity against the tiles sharing its buckets,
// runs the entity-vs-entity pass, then applies gravity to unsupported entities
func (s *Scene) checkCollisions(dt float64) {
	n := len(s.entities)
	s.grounded = slices.Grow(s.grounded[:0], n)[:n]
	clear(s.grounded)
	clear(s.checkedPairs)

	for _, bucketID := range s.entityHash.BucketIDs() {
		occupants := s.entityHash.Bucket(bucketID)
		tiles := s.tileHash.Bucket(bucketID)

		for _, ei := range occupants {
			e := s.entities[ei]
			for _, ti := range tiles {
				if c := s.resolver.Resolve(e, s.tiles[ti]); c.Grounded {
					s.grounded[ei] = true
				}
			}
		}

		if s.collider != nil {
			s.collideEntities(occupants)
		}
	}

	for i, e := range s.entities {
		e.grounded = s.grounded[i]
		if !e.grounded {
			e.Velocity.Y = s.applyGravity(e.Velocity.Y, dt)
		}
	}
}

// collideEntities hands every not-yet-seen pair in a bucket to the collider
func (s *Scene) collideEntities(occupants []int) {
	for i := 0; i < len(occupants); i++ {
		a := s.entities[occupants[i]]
		for j := i + 1; j < len(occupants); j++ {
			b := s.entities[occupants[j]]
			key := makePairKey(a, b)
			if _, seen := s.checkedPairs[key]; seen {
				continue
			}
			s.checkedPairs[key] = struct{}{}
			s.collider.Collide(a, b)
		}
	}
}

// applyGravity accelerates a vertical velocity and clamps it to the fall speed
func (s *Scene) applyGravity(vy, dt float64) float64 {
	return geom.Clamp(vy+s.config.GravityAccel*dt, -s.config.MaxFallSpeed, s.config.MaxFallSpeed)
}

// State returns the lifecycle state
func (s *Scene) State() State {
	return s.state
}

// Config returns the physical constants
func (s *Scene) Config() Config {
	return s.config
}

// Map returns the loaded map, or nil before OnStart
func (s *Scene) Map() *tilemap.Map {
	return s.tileMap
}

// Grid returns the bucket layout, zero before OnStart
func (s *Scene) Grid() Grid {
	return s.grid
}

// TileBounds returns the bounds of every indexed solid tile.
// The slice must not be modified.
func (s *Scene) TileBounds() []geom.Rect {
	return s.tiles
}

// Entities returns the managed entities in registration order.
// The slice must not be modified.
func (s *Scene) Entities() []*Entity {
	return s.entities
}

// Len returns the number of managed entities
func (s *Scene) Len() int {
	return len(s.entities)
}

// Contains reports whether the entity is managed by this scene
func (s *Scene) Contains(e *Entity) bool {
	return slices.Contains(s.entities, e)
}

// EntityBuckets returns the entity-hash buckets currently holding e
func (s *Scene) EntityBuckets(e *Entity) []int {
	idx := slices.Index(s.entities, e)
	if idx < 0 || s.entityHash == nil {
		return nil
	}
	return s.entityHash.BucketsOf(idx)
}

// TilesInBucket returns the bounds of the solid tiles indexed under a bucket
func (s *Scene) TilesInBucket(bucketID int) []geom.Rect {
	if s.tileHash == nil {
		return nil
	}
	ids := s.tileHash.Bucket(bucketID)
	out := make([]geom.Rect, len(ids))
	for i, ti := range ids {
		out[i] = s.tiles[ti]
	}
	return out
}
