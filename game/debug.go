package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"pluvia/physics"
)

// DebugState holds global debug flags that persist across scene switches
type DebugState struct {
	ShowGrid  bool // Show bucket grid lines and bucket ids
	ShowBoxes bool // Outline entity bounding boxes
	ShowHUD   bool // Frame rate and entity counts
}

// Global debug state instance (persists across scene switches)
var globalDebugState = &DebugState{
	ShowHUD: true,
}

// GetDebugState returns the global debug state
func GetDebugState() *DebugState {
	return globalDebugState
}

var gridColor = color.RGBA{255, 255, 0, 96}

// drawBucketGrid draws the spatial hash bucket boundaries with their ids
func drawBucketGrid(screen *ebiten.Image, camera *Camera, grid physics.Grid) {
	worldW := grid.BucketWidth * float64(grid.Cols)
	worldH := grid.BucketHeight * float64(grid.Rows)

	for col := 0; col <= grid.Cols; col++ {
		x := float64(col) * grid.BucketWidth
		x0, y0 := camera.WorldToScreen(x, 0)
		x1, y1 := camera.WorldToScreen(x, worldH)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, gridColor, false)
	}
	for row := 0; row <= grid.Rows; row++ {
		y := float64(row) * grid.BucketHeight
		x0, y0 := camera.WorldToScreen(0, y)
		x1, y1 := camera.WorldToScreen(worldW, y)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1, gridColor, false)
	}

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			sx, sy := camera.WorldToScreen(float64(col)*grid.BucketWidth, float64(row)*grid.BucketHeight)
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", col+grid.Cols*row), int(sx)+2, int(sy)+2)
		}
	}
}

// drawHUD prints frame rate and scene statistics in the top-left corner
func drawHUD(screen *ebiten.Image, fps float64, lines ...string) {
	msg := fmt.Sprintf("FPS: %.0f  TPS: %.0f", fps, ebiten.ActualTPS())
	for _, l := range lines {
		msg += "\n" + l
	}
	msg += "\nF1 grid  F2 boxes  F3 hud"
	ebitenutil.DebugPrintAt(screen, msg, 4, 4)
}
