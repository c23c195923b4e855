package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"pluvia/actor"
	"pluvia/debugstream"
	"pluvia/gametime"
	"pluvia/input"
	"pluvia/logger"
	"pluvia/physics"
	"pluvia/scene"
	"pluvia/script"
	"pluvia/sprite"
	"pluvia/tilemap"
)

const (
	actorSize   = 16
	cameraZoom  = 2.0
	actorDepth  = 10
	playerDepth = 20

	// walkerFramerate is the number of updates each walker frame is shown for
	walkerFramerate = 12
)

// LevelScene runs a map: the player, the walkers and the physics scene
type LevelScene struct {
	config  Config
	manager *scene.Manager
	keys    *input.Manager[ebiten.Key]

	world    *physics.Scene
	player   *actor.Player
	actors   []actor.Actor
	walkers  []*sprite.AnimatedSprite
	visuals  []sprite.Drawable
	camera   *Camera
	renderer *Renderer

	// Set when the player touches a walker during a tick
	playerHit bool

	hub  *debugstream.Hub
	tick uint64

	log *logrus.Entry
}

// NewLevelScene creates the level scene for the configured map
func NewLevelScene(config Config, manager *scene.Manager) *LevelScene {
	return &LevelScene{
		config:  config,
		manager: manager,
		log:     logger.Component("level"),
	}
}

// WithDebugStream publishes a snapshot to hub after every tick
func (s *LevelScene) WithDebugStream(hub *debugstream.Hub) *LevelScene {
	s.hub = hub
	return s
}

func (s *LevelScene) String() string { return "level:" + s.config.MapAsset }

// OnStart implements scene.Scene
func (s *LevelScene) OnStart() error {
	s.world = physics.NewScene(s.config.PhysicsConfig(), tilemap.NewDirSource(s.config.ContentRoot))
	s.world.SetResolver(physics.ResolverByName(s.config.Resolver))
	s.world.SetEntityCollider(physics.NotifyCollider{})
	s.actors = s.actors[:0]
	s.walkers = s.walkers[:0]
	s.visuals = s.visuals[:0]
	s.tick = 0

	if err := s.spawnPlayer(); err != nil {
		return err
	}
	if err := s.spawnWalkers(); err != nil {
		return err
	}

	if err := s.world.OnStart(s.config.MapAsset, s.config.HashCols, s.config.HashRows); err != nil {
		return err
	}

	m := s.world.Map()
	tileImage, err := sprite.Builtin(sprite.TileArt, m.TileWidth, m.TileHeight)
	if err != nil {
		s.log.WithError(err).Warn("tile art unavailable, drawing flat tiles")
		tileImage = nil
	}
	s.camera = NewCamera(float64(s.config.ScreenWidth), float64(s.config.ScreenHeight), cameraZoom)
	s.renderer = NewRenderer(s.camera, tileImage)
	s.followPlayer()

	s.bindKeys()

	s.log.WithFields(logrus.Fields{
		"map":     s.config.MapAsset,
		"walkers": len(s.walkers),
		"tiles":   len(s.world.TileBounds()),
	}).Info("level started")
	return nil
}

func (s *LevelScene) spawnPlayer() error {
	img, err := sprite.Builtin(sprite.PlayerArt, actorSize, actorSize)
	if err != nil {
		return fmt.Errorf("player art: %w", err)
	}
	visual := sprite.New(img, actorSize, actorSize, playerDepth)

	spawn := s.config.PlayerSpawn
	entity := physics.NewEntity(spawn.X, spawn.Y, visual)
	entity.OnCollide = func(other *physics.Entity) {
		if other.Name == "walker" {
			s.playerHit = true
		}
	}

	s.player = actor.NewPlayer(entity)
	if s.config.RunSpeed > 0 {
		s.player.RunSpeed = s.config.RunSpeed
	}
	s.world.RegisterEntity(entity)
	s.actors = append(s.actors, s.player)
	s.visuals = append(s.visuals, visual)
	return nil
}

func (s *LevelScene) spawnWalkers() error {
	if s.config.WalkerScript == "" || len(s.config.Walkers) == 0 {
		return nil
	}

	sheet, err := walkerSheet()
	if err != nil {
		return err
	}

	for _, spawn := range s.config.Walkers {
		// Each walker gets its own runtime so script state is not shared
		behavior, err := script.LoadFile(s.config.WalkerScript)
		if err != nil {
			return err
		}

		visual, err := sprite.NewAnimated(sheet, 2, 2, walkerFramerate, false, actorDepth)
		if err != nil {
			return err
		}
		entity := physics.NewEntity(spawn.X, spawn.Y, visual)
		walker := actor.NewWalker(entity, behavior, s.player.Entity())

		s.world.RegisterEntity(entity)
		s.actors = append(s.actors, walker)
		s.walkers = append(s.walkers, visual)
		s.visuals = append(s.visuals, visual)
	}
	return nil
}

// walkerSheet builds a two-frame bobbing animation from the walker art
func walkerSheet() (*ebiten.Image, error) {
	frame, err := sprite.Builtin(sprite.WalkerArt, actorSize, actorSize)
	if err != nil {
		return nil, fmt.Errorf("walker art: %w", err)
	}

	sheet := ebiten.NewImage(2*actorSize, actorSize)
	op := &ebiten.DrawImageOptions{}
	sheet.DrawImage(frame, op)

	op.GeoM.Scale(1, float64(actorSize-1)/actorSize)
	op.GeoM.Translate(actorSize, 1)
	sheet.DrawImage(frame, op)
	return sheet, nil
}

func (s *LevelScene) bindKeys() {
	s.keys = input.NewManager(Keyboard)
	for _, k := range []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA} {
		s.keys.BindPress(k, s.player.MoveLeft)
	}
	for _, k := range []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD} {
		s.keys.BindPress(k, s.player.MoveRight)
	}
	for _, k := range []ebiten.Key{ebiten.KeySpace, ebiten.KeyArrowUp, ebiten.KeyW} {
		s.keys.BindPress(k, s.player.Jump)
	}
	s.keys.BindRelease(ebiten.KeyEscape, func(gametime.Time) {
		s.manager.Request(nil)
	})
}

// OnUpdate implements scene.Scene
func (s *LevelScene) OnUpdate(t gametime.Time) error {
	s.keys.Execute(t)
	actor.Update(s.actors, t)

	s.playerHit = false
	s.world.OnUpdate(t)
	s.tick++

	for _, w := range s.walkers {
		w.Update()
	}

	if s.playerHit || s.playerFellOut() {
		s.respawnPlayer()
	}
	s.followPlayer()

	if s.hub != nil {
		s.hub.Publish(debugstream.SnapshotOf(s.world, s.tick))
	}
	return nil
}

func (s *LevelScene) playerFellOut() bool {
	m := s.world.Map()
	return s.player.Entity().Position.Y > float64(m.HeightInPixels()+actorSize)
}

func (s *LevelScene) respawnPlayer() {
	e := s.player.Entity()
	e.SetPosition(s.config.PlayerSpawn.X, s.config.PlayerSpawn.Y)
	e.Velocity.X = 0
	e.Velocity.Y = 0
	s.log.WithField("tick", s.tick).Debug("player respawned")
}

func (s *LevelScene) followPlayer() {
	m := s.world.Map()
	s.camera.Follow(s.player.Entity().BoundingBox(), float64(m.WidthInPixels()), float64(m.HeightInPixels()))
}

// OnStop implements scene.Scene
func (s *LevelScene) OnStop() {
	if s.world != nil && s.world.State() == physics.StateRunning {
		s.world.OnStop()
	}
}

// Draw renders the level and the enabled debug overlays
func (s *LevelScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{28, 32, 52, 255})
	s.renderer.Render(screen, s.world.TileBounds(), s.visuals)

	debug := GetDebugState()
	if debug.ShowGrid {
		drawBucketGrid(screen, s.camera, s.world.Grid())
	}
	if debug.ShowBoxes {
		s.renderer.RenderBoxes(screen, s.world.Entities())
	}
}

// HUDLines implements hudProvider
func (s *LevelScene) HUDLines() []string {
	p := s.player.Entity()
	return []string{
		fmt.Sprintf("Entities: %d  Tick: %d", s.world.Len(), s.tick),
		fmt.Sprintf("Player: %.0f,%.0f  v %.0f,%.0f  ground %v", p.Position.X, p.Position.Y, p.Velocity.X, p.Velocity.Y, p.IsOnGround()),
	}
}
