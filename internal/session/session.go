// Package session owns the live tree parameters, their lock flags and the
// random source, and hands generated trees to renderers and files.
package session

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/iburimskiy/fractal-tree/internal/render"
	"github.com/iburimskiy/fractal-tree/internal/tree"
)

// Rand is the random source a session draws from. *rand.Rand satisfies it.
type Rand interface {
	tree.RandomSource
	Intn(n int) int
}

// ExportLayout places the tree on an exported image. The root sits at
// (AnchorX*width, AnchorY*height) and lengths scale with
// min(width, height)/ReferenceSize.
type ExportLayout struct {
	AnchorX       float64
	AnchorY       float64
	ReferenceSize float64
	Background    color.Color
}

// DefaultExportLayout matches the reference 1600×1600 export.
func DefaultExportLayout() ExportLayout {
	return ExportLayout{
		AnchorX:       0.25,
		AnchorY:       0.79,
		ReferenceSize: 1600,
		Background:    color.White,
	}
}

// Session is the single owner of the live parameter set.
type Session struct {
	params   tree.Parameters
	locks    LockSet
	rng      Rand
	logger   *slog.Logger
	onChange func()

	origin tree.Point
	angle  float64
	export ExportLayout
}

// Option configures a Session.
type Option func(*Session)

// WithSeed makes generation and randomization reproducible.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand sets the random source. A nil source is ignored.
func WithRand(r Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnChange registers the callback run after every parameter change.
func WithOnChange(fn func()) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithCanvas sets where Regenerate roots the tree and the root angle in radians.
func WithCanvas(origin tree.Point, angle float64) Option {
	return func(s *Session) {
		s.origin = origin
		s.angle = angle
	}
}

// WithExportLayout overrides the export placement.
func WithExportLayout(l ExportLayout) Option {
	return func(s *Session) {
		s.export = l
	}
}

// New creates a session holding the default parameters with nothing locked.
func New(opts ...Option) *Session {
	s := &Session{
		params: tree.DefaultParameters(),
		locks:  LockSet{},
		logger: slog.Default(),
		origin: tree.Point{X: 400, Y: 550},
		angle:  -math.Pi / 2,
		export: DefaultExportLayout(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// OnChange replaces the change callback.
func (s *Session) OnChange(fn func()) { s.onChange = fn }

// Parameters returns a copy of the live parameters.
func (s *Session) Parameters() tree.Parameters { return s.params }

// SetParameter validates value, in natural units, against the field's
// range and stores it snapped to the slider grid. Out-of-range values are
// rejected and leave the session unchanged.
func (s *Session) SetParameter(name tree.Name, value float64) error {
	f, ok := tree.Lookup(name)
	if !ok {
		return &tree.ValidationError{Field: name, Reason: "unknown parameter"}
	}
	if err := f.Check(value); err != nil {
		s.logger.Warn("parameter rejected", "name", name, "value", value, "err", err)
		return err
	}
	f.Set(&s.params, f.Snap(value))
	s.logger.Debug("parameter set", "name", name, "value", f.Get(s.params))
	s.changed()
	return nil
}

// SetParameters replaces the whole parameter set after validating it.
func (s *Session) SetParameters(p tree.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = snapAll(p)
	s.changed()
	return nil
}

// Lock pins or releases a parameter for Randomize.
func (s *Session) Lock(name tree.Name, locked bool) error {
	if err := s.locks.Lock(name, locked); err != nil {
		return err
	}
	s.logger.Debug("lock changed", "name", name, "locked", locked)
	return nil
}

// Locked reports whether name is pinned.
func (s *Session) Locked(name tree.Name) bool { return s.locks.Locked(name) }

// Locks returns a copy of the lock flags.
func (s *Session) Locks() LockSet {
	out := make(LockSet, len(s.locks))
	for name, locked := range s.locks {
		if locked {
			out[name] = true
		}
	}
	return out
}

// Randomize draws every unlocked lockable parameter from its curated range.
// The base length is never touched.
func (s *Session) Randomize() {
	for _, f := range tree.Fields {
		if !f.Lockable || s.locks.Locked(f.Name) {
			continue
		}
		v := f.RandMin + s.rng.Intn(f.RandMax-f.RandMin+1)
		f.Set(&s.params, f.FromSlider(v))
	}
	s.logger.Info("parameters randomized", "locked", s.locks.String())
	s.changed()
}

// Regenerate builds a fresh tree at the interactive canvas anchor.
func (s *Session) Regenerate() tree.Tree {
	return tree.Generate(s.origin, s.angle, s.params, s.rng)
}

// ExportRaster renders a fresh tree, without joints, onto a w×h image.
func (s *Session) ExportRaster(w, h int) (image.Image, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	return render.Rasterize(s.exportSegments(w, h), w, h, s.background()), nil
}

// ExportFile renders a fresh tree to path; the extension picks PNG, JPEG or SVG.
// An invalid size is rejected before path is touched.
func (s *Session) ExportFile(path string, w, h int) error {
	if err := checkSize(w, h); err != nil {
		s.logger.Warn("export rejected", "path", path, "err", err)
		return err
	}
	err := render.SaveFile(render.Options{
		Path:       path,
		Width:      w,
		Height:     h,
		Background: s.background(),
	}, s.exportSegments(w, h))
	if err != nil {
		s.logger.Warn("export failed", "path", path, "err", err)
		return &IOError{Op: "export", Path: path, Err: err}
	}
	s.logger.Info("tree exported", "path", path, "width", w, "height", h)
	return nil
}

func checkSize(w, h int) error {
	if w < 1 || h < 1 {
		return &tree.ValidationError{Reason: fmt.Sprintf("export size must be positive, got %dx%d", w, h)}
	}
	return nil
}

func (s *Session) exportSegments(w, h int) []tree.Segment {
	scale := 1.0
	if s.export.ReferenceSize > 0 {
		scale = math.Min(float64(w), float64(h)) / s.export.ReferenceSize
	}
	origin := tree.Point{X: s.export.AnchorX * float64(w), Y: s.export.AnchorY * float64(h)}
	return tree.Generate(origin, s.angle, s.params.Scaled(scale), s.rng).Segments
}

func (s *Session) background() color.Color {
	if s.export.Background == nil {
		return color.White
	}
	return s.export.Background
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func snapAll(p tree.Parameters) tree.Parameters {
	for _, f := range tree.Fields {
		f.Set(&p, f.Snap(f.Get(p)))
	}
	return p
}
