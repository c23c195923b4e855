// Command simulate runs a map headless for a fixed number of ticks, dropping
// boxes or script-driven walkers into it, and optionally streams every tick
// to websocket clients.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"pluvia/actor"
	"pluvia/debugstream"
	"pluvia/gametime"
	"pluvia/logger"
	"pluvia/physics"
	"pluvia/profiling"
	"pluvia/script"
	"pluvia/tilemap"
)

// options are the command line settings of a run
type options struct {
	content    string
	mapName    string
	ticks      int
	dt         time.Duration
	maxStep    time.Duration
	cols, rows int
	count      int
	size       float64
	resolver   string
	scriptPath string
	debugAddr  string
	realtime   bool
	cpuProfile string
}

func main() {
	var opts options
	flag.StringVar(&opts.content, "content", "assets/maps", "Directory holding .tmx maps")
	flag.StringVar(&opts.mapName, "map", "level1", "Map asset name")
	flag.IntVar(&opts.ticks, "ticks", 600, "Number of ticks to simulate")
	flag.DurationVar(&opts.dt, "dt", time.Second/60, "Simulated time per tick")
	flag.DurationVar(&opts.maxStep, "max-step", time.Second/60, "Longest physics sub-step; 0 runs each tick whole")
	flag.IntVar(&opts.cols, "cols", 8, "Spatial hash columns")
	flag.IntVar(&opts.rows, "rows", 4, "Spatial hash rows")
	flag.IntVar(&opts.count, "entities", 4, "Number of entities to drop into the map")
	flag.Float64Var(&opts.size, "size", 16, "Entity width and height")
	flag.StringVar(&opts.resolver, "resolver", "edge", "Tile resolver: edge or mtv")
	flag.StringVar(&opts.scriptPath, "script", "", "Behaviour script; entities become walkers when set")
	flag.StringVar(&opts.debugAddr, "debug-addr", "", "Serve the websocket debug stream on this address")
	flag.BoolVar(&opts.realtime, "realtime", false, "Sleep between ticks so streamed output plays at game speed")
	flag.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	flag.Parse()

	logger.Init()

	if err := run(opts); err != nil {
		logger.Component("simulate").WithError(err).Fatal("simulation failed")
	}
}

func run(opts options) error {
	log := logger.Component("simulate")

	if opts.cpuProfile != "" {
		stop, err := profiling.StartCPUProfile(opts.cpuProfile)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var hub *debugstream.Hub
	if opts.debugAddr != "" {
		hub = debugstream.NewHub()
		go func() {
			if err := hub.ListenAndServe(ctx, opts.debugAddr); err != nil {
				log.WithError(err).Error("debug stream stopped")
			}
		}()
	}

	cfg := physics.DefaultConfig()
	cfg.MaxStep = opts.maxStep
	world := physics.NewScene(cfg, tilemap.NewDirSource(opts.content))
	world.SetResolver(physics.ResolverByName(opts.resolver))
	world.SetEntityCollider(physics.NotifyCollider{})

	if err := world.OnStart(opts.mapName, opts.cols, opts.rows); err != nil {
		return fmt.Errorf("failed to start scene: %w", err)
	}
	defer world.OnStop()

	actors, err := spawn(world, opts.count, opts.size, opts.scriptPath)
	if err != nil {
		return fmt.Errorf("failed to spawn entities: %w", err)
	}

	started := time.Now()
	var clock gametime.Time
	tick := 0
	for ; tick < opts.ticks && ctx.Err() == nil; tick++ {
		clock = clock.Step(opts.dt)
		actor.Update(actors, clock)
		world.OnUpdate(clock)

		if hub != nil {
			hub.Publish(debugstream.SnapshotOf(world, uint64(tick+1)))
		}
		if opts.realtime {
			time.Sleep(opts.dt)
		}
	}

	log.WithFields(logrus.Fields{
		"ticks":     tick,
		"simulated": clock.Total,
		"wall":      time.Since(started),
	}).Info("simulation finished")

	for _, e := range world.Entities() {
		log.WithFields(logrus.Fields{
			"entity":   e.String(),
			"x":        e.Position.X,
			"y":        e.Position.Y,
			"vx":       e.Velocity.X,
			"vy":       e.Velocity.Y,
			"onGround": e.IsOnGround(),
		}).Info("final state")
	}
	return nil
}

// spawn spreads count entities along the top of the map. With a script each
// entity is driven by its own copy of the behaviour.
func spawn(world *physics.Scene, count int, size float64, scriptPath string) ([]actor.Actor, error) {
	m := world.Map()
	width := float64(m.WidthInPixels())
	y := float64(m.TileHeight)

	var actors []actor.Actor
	for i := 0; i < count; i++ {
		x := width*float64(i+1)/float64(count+1) - size/2
		e := physics.NewEntity(x, y, physics.NewBox(size, size))
		e.Name = "box"

		if scriptPath != "" {
			behavior, err := script.LoadFile(scriptPath)
			if err != nil {
				return nil, err
			}
			e.Name = "walker"
			actors = append(actors, actor.NewWalker(e, behavior, nil))
		}
		world.RegisterEntity(e)
	}
	return actors, nil
}
