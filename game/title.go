package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"pluvia/gametime"
	"pluvia/input"
	"pluvia/scene"
)

// promptPulseRate is how fast the start prompt fades, in alpha per second
const promptPulseRate = 0.6

// TitleScene shows the game title and a pulsing start prompt.
// Enter starts the level; Escape exits.
type TitleScene struct {
	config  Config
	manager *scene.Manager
	keys    *input.Manager[ebiten.Key]

	// next builds the scene started by Enter
	next func() scene.Scene

	face text.Face

	// Prompt alpha and fade direction
	alpha  float64
	fading bool
}

// NewTitleScene creates the title scene
func NewTitleScene(config Config, manager *scene.Manager, next func() scene.Scene) *TitleScene {
	return &TitleScene{
		config:  config,
		manager: manager,
		next:    next,
		face:    text.NewGoXFace(basicfont.Face7x13),
	}
}

func (s *TitleScene) String() string { return "title" }

// OnStart implements scene.Scene
func (s *TitleScene) OnStart() error {
	s.alpha = 1
	s.fading = true

	s.keys = input.NewManager(Keyboard)
	s.keys.BindRelease(ebiten.KeyEnter, func(gametime.Time) {
		s.manager.Request(s.next())
	})
	s.keys.BindRelease(ebiten.KeyEscape, func(gametime.Time) {
		s.manager.Request(nil)
	})
	return nil
}

// OnUpdate implements scene.Scene
func (s *TitleScene) OnUpdate(t gametime.Time) error {
	s.keys.Execute(t)

	step := promptPulseRate * t.Delta()
	if s.fading {
		s.alpha -= step
		if s.alpha <= 0 {
			s.alpha = 0
			s.fading = false
		}
	} else {
		s.alpha += step
		if s.alpha >= 1 {
			s.alpha = 1
			s.fading = true
		}
	}
	return nil
}

// OnStop implements scene.Scene
func (s *TitleScene) OnStop() {}

// Draw renders the title and prompt centred on screen
func (s *TitleScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 24, 40, 255})

	cx := float64(s.config.ScreenWidth) / 2
	cy := float64(s.config.ScreenHeight) / 2

	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.GeoM.Scale(4, 4)
	op.GeoM.Translate(cx, cy-80)
	op.ColorScale.ScaleWithColor(color.RGBA{160, 200, 255, 255})
	text.Draw(screen, s.config.Title, s.face, op)

	op = &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.GeoM.Scale(2, 2)
	op.GeoM.Translate(cx, cy+40)
	op.ColorScale.ScaleAlpha(float32(s.alpha))
	text.Draw(screen, "Press Enter", s.face, op)
}
