package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"pluvia/input"
)

// Keyboard reads key state from ebiten
var Keyboard input.Source[ebiten.Key] = input.SourceFunc[ebiten.Key](ebiten.IsKeyPressed)
