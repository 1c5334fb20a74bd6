package game

import (
	"bytes"
	"image/color"
	"strconv"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/fractal-tree/internal/app"
	"github.com/iburimskiy/fractal-tree/internal/config"
	"github.com/iburimskiy/fractal-tree/internal/tree"
)

var (
	panelBackground = color.RGBA{30, 35, 45, 255}
	titleColor      = color.RGBA{255, 220, 100, 255}
	labelColor      = color.RGBA{200, 200, 200, 255}
	valueColor      = color.RGBA{255, 255, 255, 255}
)

// control is the widget set bound to one parameter.
type control struct {
	field  tree.Field
	slider *widget.Slider
	value  *widget.Text
	lock   *widget.Button
}

// panel is the control surface to the right of the canvas. Every widget
// change goes through the App; sync pulls the session state back into the
// widgets after changes made elsewhere (randomize, load, hot reload).
type panel struct {
	ui       *ebitenui.UI
	app      *app.App
	fontFace text.Face
	controls []*control
}

func newPanel(a *app.App) *panel {
	p := &panel{app: a}
	p.fontFace = loadFont()
	p.ui = p.buildUI()
	p.sync()
	return p
}

func loadFont() text.Face {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic(err)
	}
	return &text.GoTextFace{
		Source: source,
		Size:   12,
	}
}

func (p *panel) buildUI() *ebitenui.UI {
	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	column := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(10)),
			widget.RowLayoutOpts.Spacing(6),
		)),
		widget.ContainerOpts.BackgroundImage(solid(panelBackground)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
				StretchVertical:    true,
			}),
			widget.WidgetOpts.MinSize(config.PanelWidth, config.WindowHeight),
		),
	)

	column.AddChild(p.label("TREE PARAMETERS", titleColor))
	for _, f := range tree.Fields {
		column.AddChild(p.fieldRow(f))
	}

	column.AddChild(p.label("-- Actions --", titleColor))
	column.AddChild(p.button("Randomize", p.app.Randomize))
	column.AddChild(p.button("Save Settings", p.app.SaveSettings))
	column.AddChild(p.button("Load Settings", p.app.LoadSettings))
	column.AddChild(p.button("Export Image", p.app.Export))
	column.AddChild(p.button("Help", p.app.Help))

	root.AddChild(column)
	return &ebitenui.UI{Container: root}
}

func (p *panel) label(s string, clr color.Color) *widget.Text {
	return widget.NewText(
		widget.TextOpts.Text(s, p.fontFace, clr),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Stretch: true,
			}),
		),
	)
}

// fieldRow lays out label, slider, value and lock toggle for f.
func (p *panel) fieldRow(f tree.Field) *widget.Container {
	c := &control{field: f}

	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
		)),
	)

	row.AddChild(widget.NewText(
		widget.TextOpts.Text(f.Label, p.fontFace, labelColor),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(100, 0),
		),
	))

	c.value = widget.NewText(
		widget.TextOpts.Text("", p.fontFace, valueColor),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(36, 0),
		),
	)

	c.slider = widget.NewSlider(
		widget.SliderOpts.Direction(widget.DirectionHorizontal),
		widget.SliderOpts.MinMax(f.Min, f.Max),
		widget.SliderOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(100, 20),
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
			}),
		),
		widget.SliderOpts.Images(trackImages(), handleImages()),
		widget.SliderOpts.PageSizeFunc(func() int {
			return 1
		}),
		widget.SliderOpts.ChangedHandler(func(args *widget.SliderChangedEventArgs) {
			// sync moves sliders too; only user moves reach the session.
			if args.Current == f.Slider(p.app.Session().Parameters()) {
				return
			}
			p.app.SetParameter(f.Name, f.FromSlider(args.Current))
			c.value.Label = strconv.Itoa(f.Slider(p.app.Session().Parameters()))
		}),
	)

	row.AddChild(c.slider)
	row.AddChild(c.value)

	if f.Lockable {
		c.lock = p.toggle(func() {
			p.app.ToggleLock(f.Name)
			p.syncLock(c)
		})
		row.AddChild(c.lock)
	}

	p.controls = append(p.controls, c)
	return row
}

func (p *panel) button(label string, onClick func()) *widget.Button {
	return widget.NewButton(
		widget.ButtonOpts.Image(handleImages()),
		widget.ButtonOpts.Text(label, p.fontFace, &widget.ButtonTextColor{
			Idle: valueColor,
		}),
		widget.ButtonOpts.TextPadding(widget.NewInsetsSimple(4)),
		widget.ButtonOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Stretch: true,
			}),
		),
		widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) {
			onClick()
		}),
	)
}

func (p *panel) toggle(onClick func()) *widget.Button {
	return widget.NewButton(
		widget.ButtonOpts.Image(handleImages()),
		widget.ButtonOpts.Text(lockLabel(false), p.fontFace, &widget.ButtonTextColor{
			Idle: labelColor,
		}),
		widget.ButtonOpts.TextPadding(widget.NewInsetsSimple(2)),
		widget.ButtonOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(40, 20),
		),
		widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) {
			onClick()
		}),
	)
}

// sync copies the session's parameters and locks into the widgets.
func (p *panel) sync() {
	params := p.app.Session().Parameters()
	for _, c := range p.controls {
		v := c.field.Slider(params)
		c.slider.Current = v
		c.value.Label = strconv.Itoa(v)
		if c.lock != nil {
			p.syncLock(c)
		}
	}
}

func (p *panel) syncLock(c *control) {
	c.lock.Text().Label = lockLabel(p.app.Session().Locked(c.field.Name))
}

func lockLabel(locked bool) string {
	if locked {
		return "lock"
	}
	return "open"
}

func (p *panel) Update() { p.ui.Update() }

func (p *panel) Draw(screen *ebiten.Image) { p.ui.Draw(screen) }

func solid(clr color.Color) *image.NineSlice {
	img := ebiten.NewImage(1, 1)
	img.Fill(clr)
	return image.NewNineSliceSimple(img, 0, 0)
}

func trackImages() *widget.SliderTrackImage {
	idle := ebiten.NewImage(32, 8)
	idle.Fill(color.RGBA{80, 80, 100, 255})

	hover := ebiten.NewImage(32, 8)
	hover.Fill(color.RGBA{100, 100, 120, 255})

	return &widget.SliderTrackImage{
		Idle:  image.NewNineSliceSimple(idle, 4, 4),
		Hover: image.NewNineSliceSimple(hover, 4, 4),
	}
}

func handleImages() *widget.ButtonImage {
	idle := ebiten.NewImage(20, 20)
	idle.Fill(color.RGBA{70, 80, 100, 255})

	hover := ebiten.NewImage(20, 20)
	hover.Fill(color.RGBA{100, 110, 140, 255})

	pressed := ebiten.NewImage(20, 20)
	pressed.Fill(color.RGBA{130, 140, 180, 255})

	return &widget.ButtonImage{
		Idle:    image.NewNineSliceSimple(idle, 4, 4),
		Hover:   image.NewNineSliceSimple(hover, 4, 4),
		Pressed: image.NewNineSliceSimple(pressed, 4, 4),
	}
}
