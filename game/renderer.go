package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"pluvia/geom"
	"pluvia/physics"
	"pluvia/sprite"
)

// Camera represents the viewport into the world.
// X and Y are the world position shown at the centre of the screen.
type Camera struct {
	X, Y   float64 // Camera position in world coordinates
	Zoom   float64 // Zoom level
	Width  float64 // Viewport width
	Height float64 // Viewport height
}

// NewCamera creates a new camera
func NewCamera(width, height, zoom float64) *Camera {
	return &Camera{
		Zoom:   zoom,
		Width:  width,
		Height: height,
	}
}

// WorldToScreen converts world coordinates to screen coordinates
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	sx := (wx-c.X)*c.Zoom + c.Width/2
	sy := (wy-c.Y)*c.Zoom + c.Height/2
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	wx := (sx-c.Width/2)/c.Zoom + c.X
	wy := (sy-c.Height/2)/c.Zoom + c.Y
	return wx, wy
}

// View returns the world-to-screen transform
func (c *Camera) View() ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-c.X, -c.Y)
	m.Scale(c.Zoom, c.Zoom)
	m.Translate(c.Width/2, c.Height/2)
	return m
}

// Visible returns the world rectangle covered by the viewport
func (c *Camera) Visible() geom.Rect {
	minX, minY := c.ScreenToWorld(0, 0)
	maxX, maxY := c.ScreenToWorld(c.Width, c.Height)
	return geom.NewRect(minX, minY, maxX-minX, maxY-minY)
}

// Follow centres the camera on target, keeping the view inside the world
// whenever the world is larger than the view
func (c *Camera) Follow(target geom.Rect, worldWidth, worldHeight float64) {
	halfW := c.Width / 2 / c.Zoom
	halfH := c.Height / 2 / c.Zoom

	c.X = target.X + target.W/2
	c.Y = target.Y + target.H/2

	if worldWidth > 2*halfW {
		c.X = geom.Clamp(c.X, halfW, worldWidth-halfW)
	} else {
		c.X = worldWidth / 2
	}
	if worldHeight > 2*halfH {
		c.Y = geom.Clamp(c.Y, halfH, worldHeight-halfH)
	} else {
		c.Y = worldHeight / 2
	}
}

// Renderer draws the level through a camera
type Renderer struct {
	camera *Camera

	tileImage *ebiten.Image
	tileColor color.Color
}

// NewRenderer creates a new renderer. A nil tile image draws tiles as
// filled rectangles.
func NewRenderer(camera *Camera, tileImage *ebiten.Image) *Renderer {
	return &Renderer{
		camera:    camera,
		tileImage: tileImage,
		tileColor: color.RGBA{90, 110, 140, 255},
	}
}

// Render draws the visible tiles, then the drawables back to front
func (r *Renderer) Render(screen *ebiten.Image, tiles []geom.Rect, drawables []sprite.Drawable) {
	view := r.camera.View()
	visible := r.camera.Visible()

	for _, t := range tiles {
		if !t.Intersects(visible, false) {
			continue
		}
		r.renderTile(screen, t, view)
	}

	sprite.SortByDepth(drawables)
	for _, d := range drawables {
		d.Draw(screen, view)
	}
}

func (r *Renderer) renderTile(screen *ebiten.Image, t geom.Rect, view ebiten.GeoM) {
	if r.tileImage != nil {
		b := r.tileImage.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(t.W/float64(b.Dx()), t.H/float64(b.Dy()))
		op.GeoM.Translate(t.X, t.Y)
		op.GeoM.Concat(view)
		screen.DrawImage(r.tileImage, op)
		return
	}

	sx, sy := r.camera.WorldToScreen(t.X, t.Y)
	vector.DrawFilledRect(screen, float32(sx), float32(sy),
		float32(t.W*r.camera.Zoom), float32(t.H*r.camera.Zoom), r.tileColor, false)
}

// RenderBoxes outlines entity bounding boxes; grounded entities are green
func (r *Renderer) RenderBoxes(screen *ebiten.Image, entities []*physics.Entity) {
	for _, e := range entities {
		box := e.BoundingBox()
		sx, sy := r.camera.WorldToScreen(box.X, box.Y)
		clr := color.RGBA{255, 80, 80, 255}
		if e.IsOnGround() {
			clr = color.RGBA{80, 255, 80, 255}
		}
		vector.StrokeRect(screen, float32(sx), float32(sy),
			float32(box.W*r.camera.Zoom), float32(box.H*r.camera.Zoom), 1, clr, false)
	}
}
