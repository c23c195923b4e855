package sprite

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
)

//go:embed assets/*.svg
var assets embed.FS

// Built-in placeholder art
const (
	PlayerArt = "player"
	WalkerArt = "walker"
	TileArt   = "tile"
)

// Builtin rasterizes one of the embedded SVG assets at the given size
func Builtin(name string, width, height int) (*ebiten.Image, error) {
	data, err := assets.ReadFile("assets/" + name + ".svg")
	if err != nil {
		return nil, fmt.Errorf("unknown built-in sprite %q: %w", name, err)
	}
	return LoadSVG(data, width, height)
}

// LoadSVG rasterizes SVG data into an image of the given size
func LoadSVG(svgData []byte, width, height int) (*ebiten.Image, error) {
	img, err := svgToRGBA(svgData, width, height)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

// svgToRGBA parses and renders SVG data
func svgToRGBA(svgData []byte, width, height int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}

	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)

	return img, nil
}

// LoadImage decodes a PNG or BMP texture from disk
func LoadImage(path string) (*ebiten.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return ebiten.NewImageFromImage(img), nil
}

// Placeholder returns a solid rectangle with a dark outline
func Placeholder(width, height int, clr color.Color) *ebiten.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	outline := color.RGBA{0, 0, 0, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				img.Set(x, y, outline)
			} else {
				img.Set(x, y, clr)
			}
		}
	}
	return ebiten.NewImageFromImage(img)
}
