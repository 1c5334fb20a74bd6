// Package game is the interactive window: a tree canvas on the left, the
// control panel on the right and recent status messages below the canvas.
package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/fractal-tree/internal/app"
	"github.com/iburimskiy/fractal-tree/internal/config"
	"github.com/iburimskiy/fractal-tree/internal/render"
	"github.com/iburimskiy/fractal-tree/internal/session"
	"github.com/iburimskiy/fractal-tree/internal/tree"
)

var (
	windowBackground = color.RGBA{20, 22, 28, 255}
	canvasBackground = color.RGBA{255, 255, 255, 255}
)

// Game implements ebiten.Game.
type Game struct {
	app     *app.App
	session *session.Session
	panel   *panel

	// The tree is drawn once per change onto surface, not every frame.
	surface *ebiten.Image
	dirty   bool

	// input edge detection
	prevKey map[ebiten.Key]bool
}

// New creates the window state for a. It takes over the session's change
// callback.
func New(a *app.App) *Game {
	g := &Game{
		app:     a,
		session: a.Session(),
		prevKey: map[ebiten.Key]bool{},
		dirty:   true,
	}
	g.session.OnChange(func() { g.dirty = true })
	g.panel = newPanel(a)
	return g
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	switch {
	case justPressed(ebiten.KeyR):
		g.app.Randomize()
	case justPressed(ebiten.KeyS):
		g.app.SaveSettings()
	case justPressed(ebiten.KeyL):
		g.app.LoadSettings()
	case justPressed(ebiten.KeyE):
		g.app.Export()
	case justPressed(ebiten.KeyH):
		g.app.Help()
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.app.Poll()
	g.panel.Update()

	if g.dirty {
		g.redraw()
		g.panel.sync()
		g.dirty = false
	}
	return nil
}

// redraw regenerates the tree with fresh jitter and paints it onto surface.
func (g *Game) redraw() {
	if g.surface == nil {
		g.surface = ebiten.NewImage(config.CanvasWidth, config.CanvasHeight)
	}
	g.surface.Fill(canvasBackground)
	render.Replay(g.session.Regenerate(), imageCanvas{g.surface})
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(windowBackground)
	if g.surface != nil {
		screen.DrawImage(g.surface, nil)
	}
	g.panel.Draw(screen)

	y := config.CanvasHeight + 8
	for _, line := range g.app.Status() {
		ebitenutil.DebugPrintAt(screen, line, 12, y)
		y += 20
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}

// imageCanvas draws tree primitives onto an ebiten image.
type imageCanvas struct {
	dst *ebiten.Image
}

func (c imageCanvas) StrokeLine(from, to tree.Point, width float64, clr color.RGBA) {
	if width <= 0 {
		return
	}
	vector.StrokeLine(c.dst, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), float32(width), clr, true)
}

func (c imageCanvas) FillCircle(center tree.Point, radius float64, clr color.RGBA) {
	if radius <= 0 {
		return
	}
	vector.DrawFilledCircle(c.dst, float32(center.X), float32(center.Y), float32(radius), clr, true)
}
