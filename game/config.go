package game

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pluvia/physics"
)

// SpawnPoint is a world position in pixels
type SpawnPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Config holds game configuration
type Config struct {
	// ScreenWidth is the window width in pixels
	ScreenWidth int `yaml:"screen_width"`

	// ScreenHeight is the window height in pixels
	ScreenHeight int `yaml:"screen_height"`

	// Title is shown in the window bar
	Title string `yaml:"title"`

	// ContentRoot is the directory maps are loaded from
	ContentRoot string `yaml:"content_root"`

	// MapAsset is the level map name, without the .tmx extension
	MapAsset string `yaml:"map"`

	// HashCols and HashRows set the spatial hash bucket grid
	HashCols int `yaml:"hash_cols"`
	HashRows int `yaml:"hash_rows"`

	GravityAccel float64 `yaml:"gravity"`
	MaxFallSpeed float64 `yaml:"max_fall_speed"`
	RunSpeed     float64 `yaml:"run_speed"`

	// MaxPhysicsStep splits long frames into physics sub-steps, e.g. "16ms"
	MaxPhysicsStep time.Duration `yaml:"max_physics_step"`

	// Resolver is "edge" or "mtv"
	Resolver string `yaml:"resolver"`

	PlayerSpawn SpawnPoint `yaml:"player_spawn"`

	// WalkerScript is the behaviour script shared by every walker; empty disables walkers
	WalkerScript string       `yaml:"walker_script"`
	Walkers      []SpawnPoint `yaml:"walkers"`

	// DebugAddr serves the websocket debug stream when non-empty
	DebugAddr string `yaml:"debug_addr"`

	// ProfilesDir receives captures taken on frame rate drops; empty disables profiling
	ProfilesDir      string  `yaml:"profiles_dir"`
	FPSDropThreshold float64 `yaml:"fps_drop_threshold"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	physicsDefaults := physics.DefaultConfig()
	return Config{
		ScreenWidth:      640,
		ScreenHeight:     480,
		Title:            "Pluvia",
		ContentRoot:      "assets/maps",
		MapAsset:         "level1",
		HashCols:         8,
		HashRows:         4,
		GravityAccel:     physicsDefaults.GravityAccel,
		MaxFallSpeed:     physicsDefaults.MaxFallSpeed,
		RunSpeed:         150,
		MaxPhysicsStep:   time.Second / 60,
		Resolver:         "edge",
		PlayerSpawn:      SpawnPoint{X: 48, Y: 160},
		WalkerScript:     "assets/scripts/patrol.js",
		Walkers:          []SpawnPoint{{X: 480, Y: 176}, {X: 720, Y: 64}},
		FPSDropThreshold: 45,
	}
}

// LoadConfig overlays the YAML file at path on the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values the game cannot start without
func (c Config) Validate() error {
	switch {
	case c.ScreenWidth <= 0 || c.ScreenHeight <= 0:
		return fmt.Errorf("screen size %dx%d", c.ScreenWidth, c.ScreenHeight)
	case c.MapAsset == "":
		return errors.New("no map asset")
	case c.HashCols <= 0 || c.HashRows <= 0:
		return fmt.Errorf("hash grid %dx%d: %w", c.HashCols, c.HashRows, physics.ErrInvalidGrid)
	case c.MaxFallSpeed < 0:
		return fmt.Errorf("negative max fall speed %v", c.MaxFallSpeed)
	case c.MaxPhysicsStep < 0:
		return fmt.Errorf("negative max physics step %v", c.MaxPhysicsStep)
	case c.Resolver != "edge" && c.Resolver != "mtv":
		return fmt.Errorf("unknown resolver %q", c.Resolver)
	}
	return nil
}

// PhysicsConfig returns the physical constants for the level scene
func (c Config) PhysicsConfig() physics.Config {
	pc := physics.DefaultConfig()
	pc.GravityAccel = c.GravityAccel
	pc.MaxFallSpeed = c.MaxFallSpeed
	pc.MaxStep = c.MaxPhysicsStep
	return pc
}
