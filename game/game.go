// Package game runs pluvia in an ebiten window: the title and level scenes,
// the camera and renderer, and keyboard input.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"pluvia/debugstream"
	"pluvia/gametime"
	"pluvia/logger"
	"pluvia/profiling"
	"pluvia/scene"
)

// maxFrameTime bounds the simulated time per frame to prevent large jumps
const maxFrameTime = 100 * time.Millisecond

// drawer is implemented by scenes that render themselves
type drawer interface {
	Draw(screen *ebiten.Image)
}

// hudProvider is implemented by scenes that add lines to the debug HUD
type hudProvider interface {
	HUDLines() []string
}

// Game represents the main game state
type Game struct {
	config Config
	scenes *scene.Manager

	clock gametime.Time

	// FPS tracking and drop-triggered profiling
	frames   *profiling.FrameMeter
	profiler *profiling.Profiler

	// Last update time for delta time calculation
	lastUpdateTime time.Time

	log *logrus.Entry
}

// NewGame creates a game showing the title scene. A non-nil hub receives
// a snapshot after every level tick.
func NewGame(config Config, hub *debugstream.Hub) (*Game, error) {
	g := &Game{
		config: config,
		scenes: scene.NewManager(),
		frames: profiling.NewFrameMeter(config.FPSDropThreshold),
		log:    logger.Component("game"),
	}

	if config.ProfilesDir != "" {
		profiler, err := profiling.NewProfiler(config.ProfilesDir, 5*time.Second, 30*time.Second)
		if err != nil {
			return nil, err
		}
		g.profiler = profiler
	}

	newLevel := func() scene.Scene {
		return NewLevelScene(config, g.scenes).WithDebugStream(hub)
	}
	if err := g.scenes.Switch(NewTitleScene(config, g.scenes, newLevel)); err != nil {
		return nil, err
	}
	return g, nil
}

// Update implements ebiten.Game
func (g *Game) Update() error {
	// Calculate delta time
	now := time.Now()
	elapsed := time.Second / 60
	if !g.lastUpdateTime.IsZero() {
		elapsed = min(now.Sub(g.lastUpdateTime), maxFrameTime)
	}
	g.lastUpdateTime = now

	// Handle debug key presses
	debugState := GetDebugState()
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		debugState.ShowGrid = !debugState.ShowGrid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		debugState.ShowBoxes = !debugState.ShowBoxes
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		debugState.ShowHUD = !debugState.ShowHUD
	}

	if g.frames.Tick(elapsed) && g.frames.Drop() && g.profiler != nil {
		g.captureProfile()
	}

	g.clock = g.clock.Step(elapsed)
	err := g.scenes.Update(g.clock)
	if errors.Is(err, scene.ErrNoScene) {
		g.log.Info("no active scene, exiting")
		return ebiten.Termination
	}
	return err
}

func (g *Game) captureProfile() {
	reason := fmt.Sprintf("fps%.0f", g.frames.FPS())
	err := g.profiler.Capture(reason)
	switch {
	case errors.Is(err, profiling.ErrCooldown), errors.Is(err, profiling.ErrBusy):
		g.log.WithError(err).Debug("skipping profile capture")
	case err != nil:
		g.log.WithError(err).Warn("failed to capture profile")
	default:
		g.log.WithField("fps", g.frames.FPS()).Warn("frame rate drop detected, capturing profile")
	}
}

// Draw implements ebiten.Game
func (g *Game) Draw(screen *ebiten.Image) {
	active := g.scenes.Active()
	if d, ok := active.(drawer); ok {
		d.Draw(screen)
	}

	if GetDebugState().ShowHUD {
		var lines []string
		if h, ok := active.(hudProvider); ok {
			lines = h.HUDLines()
		}
		drawHUD(screen, g.frames.FPS(), lines...)
	}
}

// Layout implements ebiten.Game
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.config.ScreenWidth, g.config.ScreenHeight
}

// Close stops the active scene and waits for a running profile capture
func (g *Game) Close() {
	g.scenes.Stop()
	if g.profiler != nil {
		g.profiler.Wait()
	}
}
