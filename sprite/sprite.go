// Package sprite is the ebiten visual representation of entities and tiles.
package sprite

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// Drawable is anything the renderer can draw in depth order
type Drawable interface {
	Depth() float64
	Draw(dst *ebiten.Image, view ebiten.GeoM)
}

// Sprite is a single image drawn at a world position.
// It satisfies physics.Visual, so entities can use it for their size.
type Sprite struct {
	Image *ebiten.Image

	X, Y float64 // World position (top-left)
	W, H float64 // Drawn size; the image is scaled to fit
	Z    float64 // Depth, lower values are drawn first

	Hidden bool
}

// New creates a sprite; a zero width or height takes the image's size
func New(img *ebiten.Image, w, h, depth float64) *Sprite {
	if img != nil {
		b := img.Bounds()
		if w == 0 {
			w = float64(b.Dx())
		}
		if h == 0 {
			h = float64(b.Dy())
		}
	}
	return &Sprite{Image: img, W: w, H: h, Z: depth}
}

func (s *Sprite) Width() float64  { return s.W }
func (s *Sprite) Height() float64 { return s.H }
func (s *Sprite) Depth() float64  { return s.Z }

// SetPosition moves the sprite; physics calls it after every tick
func (s *Sprite) SetPosition(x, y float64) {
	s.X = x
	s.Y = y
}

// Draw renders the sprite through view, the world-to-screen transform
func (s *Sprite) Draw(dst *ebiten.Image, view ebiten.GeoM) {
	drawImage(dst, s.Image, s.X, s.Y, s.W, s.H, view, s.Hidden)
}

func drawImage(dst, img *ebiten.Image, x, y, w, h float64, view ebiten.GeoM, hidden bool) {
	if img == nil || hidden {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	op.GeoM.Concat(view)
	dst.DrawImage(img, op)
}

// SortByDepth orders drawables back to front, keeping insertion order on ties
func SortByDepth(ds []Drawable) {
	slices.SortStableFunc(ds, func(a, b Drawable) int {
		switch {
		case a.Depth() < b.Depth():
			return -1
		case a.Depth() > b.Depth():
			return 1
		default:
			return 0
		}
	})
}
