package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"pluvia/debugstream"
	"pluvia/game"
	"pluvia/logger"
)

func main() {
	configPath := flag.String("config", "pluvia.yaml", "YAML config file; missing files use the defaults")
	debugAddr := flag.String("debug-addr", "", "Serve the websocket debug stream on this address (overrides config)")
	flag.Parse()

	logger.Init()

	if err := run(*configPath, *debugAddr); err != nil {
		logger.Component("main").WithError(err).Fatal("game stopped")
	}
}

func run(configPath, debugAddr string) error {
	log := logger.Component("main")

	config, err := game.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if debugAddr != "" {
		config.DebugAddr = debugAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hub *debugstream.Hub
	if config.DebugAddr != "" {
		hub = debugstream.NewHub()
		go func() {
			if err := hub.ListenAndServe(ctx, config.DebugAddr); err != nil {
				log.WithError(err).Error("debug stream stopped")
			}
		}()
	}

	g, err := game.NewGame(config, hub)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	defer g.Close()

	ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowResizable(true)

	return ebiten.RunGame(g)
}
