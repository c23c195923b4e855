package sprite

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// AnimatedSprite cycles through frames cut from a sprite sheet.
// The frame advances every Framerate updates and wraps at either end.
type AnimatedSprite struct {
	*Sprite

	frames    []*ebiten.Image
	Framerate int
	Reverse   bool

	counter int
	current int
}

// NewAnimated cuts numFrames frames from sheet, laid out row-major in cols columns
func NewAnimated(sheet *ebiten.Image, cols, numFrames, framerate int, reverse bool, depth float64) (*AnimatedSprite, error) {
	if cols <= 0 || numFrames <= 0 {
		return nil, fmt.Errorf("invalid sprite sheet layout: %d frames in %d columns", numFrames, cols)
	}
	rows := (numFrames + cols - 1) / cols

	b := sheet.Bounds()
	fw, fh := b.Dx()/cols, b.Dy()/rows
	if fw == 0 || fh == 0 {
		return nil, fmt.Errorf("sprite sheet %dx%d too small for %d columns and %d rows", b.Dx(), b.Dy(), cols, rows)
	}

	frames := make([]*ebiten.Image, numFrames)
	for i := range frames {
		col, row := i%cols, i/cols
		r := image.Rect(col*fw, row*fh, (col+1)*fw, (row+1)*fh).Add(b.Min)
		frames[i] = sheet.SubImage(r).(*ebiten.Image)
	}

	a := &AnimatedSprite{
		Sprite:    New(frames[0], float64(fw), float64(fh), depth),
		frames:    frames,
		Framerate: framerate,
		Reverse:   reverse,
	}
	if reverse {
		a.current = numFrames - 1
		a.Image = frames[a.current]
	}
	return a, nil
}

// NumFrames returns the number of animation frames
func (a *AnimatedSprite) NumFrames() int {
	return len(a.frames)
}

// Frame returns the index of the frame being shown
func (a *AnimatedSprite) Frame() int {
	return a.current
}

// Update counts one game frame and advances the animation when due
func (a *AnimatedSprite) Update() {
	a.counter++
	if a.counter < a.Framerate {
		return
	}
	a.counter = 0

	if a.Reverse {
		a.current--
		if a.current < 0 {
			a.current = len(a.frames) - 1
		}
	} else {
		a.current++
		if a.current >= len(a.frames) {
			a.current = 0
		}
	}
	a.Image = a.frames[a.current]
}
