package session

import (
	"errors"
	"image"
	"image/color"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/iburimskiy/fractal-tree/internal/render"
	"github.com/iburimskiy/fractal-tree/internal/tree"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// SessionSuite covers parameter editing, locking and file handling.
type SessionSuite struct {
	suite.Suite
	s       *Session
	changes int
}

func (s *SessionSuite) SetupTest() {
	s.changes = 0
	s.s = New(WithSeed(1), WithLogger(quiet), WithOnChange(func() { s.changes++ }))
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) TestStartsWithDefaults() {
	require.Equal(s.T(), tree.DefaultParameters(), s.s.Parameters())
	for _, f := range tree.Fields {
		require.False(s.T(), s.s.Locked(f.Name))
	}
}

func (s *SessionSuite) TestSetParameter() {
	require.NoError(s.T(), s.s.SetParameter(tree.NameDepth, 6))
	require.NoError(s.T(), s.s.SetParameter(tree.NameLengthFactor, 0.654))

	p := s.s.Parameters()
	require.Equal(s.T(), 6, p.MaxDepth)
	require.Equal(s.T(), 0.65, p.LengthFactor)
	require.Equal(s.T(), 2, s.changes)
}

func (s *SessionSuite) TestSetParameterRejectsOutOfRange() {
	before := s.s.Parameters()

	err := s.s.SetParameter(tree.NameAngleSpread, 80)
	require.ErrorIs(s.T(), err, tree.ErrValidation)

	err = s.s.SetParameter("leaf_count", 3)
	var ve *tree.ValidationError
	require.True(s.T(), errors.As(err, &ve))
	require.Equal(s.T(), tree.Name("leaf_count"), ve.Field)

	require.Equal(s.T(), before, s.s.Parameters())
	require.Zero(s.T(), s.changes)
}

func (s *SessionSuite) TestSetParameters() {
	p := tree.DefaultParameters()
	p.MaxDepth = 4
	p.AngleJitter = 0.123
	require.NoError(s.T(), s.s.SetParameters(p))
	require.Equal(s.T(), 4, s.s.Parameters().MaxDepth)
	require.Equal(s.T(), 0.12, s.s.Parameters().AngleJitter)

	p.MaxDepth = 40
	require.ErrorIs(s.T(), s.s.SetParameters(p), tree.ErrValidation)
	require.Equal(s.T(), 4, s.s.Parameters().MaxDepth)
}

func (s *SessionSuite) TestBaseLengthCannotBeLocked() {
	require.ErrorIs(s.T(), s.s.Lock(tree.NameBaseLength, true), tree.ErrValidation)
	require.ErrorIs(s.T(), s.s.Lock("bark", true), tree.ErrValidation)
	require.False(s.T(), s.s.Locked(tree.NameBaseLength))

	require.NoError(s.T(), s.s.Lock(tree.NameDepth, true))
	require.True(s.T(), s.s.Locked(tree.NameDepth))
	require.NoError(s.T(), s.s.Lock(tree.NameDepth, false))
	require.False(s.T(), s.s.Locked(tree.NameDepth))
}

func (s *SessionSuite) TestRandomizeRespectsLocks() {
	require.NoError(s.T(), s.s.SetParameter(tree.NameColor, 85))
	require.NoError(s.T(), s.s.Lock(tree.NameColor, true))

	for i := 0; i < 50; i++ {
		s.s.Randomize()
		require.Equal(s.T(), 85, s.s.Parameters().ColorSeed)
		require.Equal(s.T(), 100.0, s.s.Parameters().BaseLength)
	}
	require.Equal(s.T(), 51, s.changes)
}

func (s *SessionSuite) TestRegenerate() {
	tr := s.s.Regenerate()
	require.Len(s.T(), tr.Segments, tree.SegmentCount(10))
	require.Len(s.T(), tr.Joints, tree.JointCount(10))
	require.Equal(s.T(), tree.Point{X: 400, Y: 550}, tr.Segments[0].Start)
}

func (s *SessionSuite) TestExportRaster() {
	require.NoError(s.T(), s.s.SetParameter(tree.NameDepth, 3))

	img, err := s.s.ExportRaster(1600, 1600)
	require.NoError(s.T(), err)
	require.Equal(s.T(), image.Rect(0, 0, 1600, 1600), img.Bounds())
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	require.Equal(s.T(), white, color.RGBAModel.Convert(img.At(1599, 0)))

	// The trunk starts at (400, 1264) and grows straight up at least 90px.
	trunk := color.RGBAModel.Convert(img.At(400, 1250)).(color.RGBA)
	require.Equal(s.T(), tree.ColorFromSeed(130), trunk)
}

func (s *SessionSuite) TestExportFile() {
	path := filepath.Join(s.T().TempDir(), "tree.png")
	require.NoError(s.T(), s.s.ExportFile(path, 160, 160))
	info, err := os.Stat(path)
	require.NoError(s.T(), err)
	require.Positive(s.T(), info.Size())

	err = s.s.ExportFile(filepath.Join(s.T().TempDir(), "tree.tiff"), 160, 160)
	require.ErrorIs(s.T(), err, ErrIO)
	require.ErrorIs(s.T(), err, render.ErrUnsupportedFormat)
}

func (s *SessionSuite) TestSettingsFileRoundTrip() {
	require.NoError(s.T(), s.s.SetParameter(tree.NameDepth, 7))
	require.NoError(s.T(), s.s.SetParameter(tree.NameRandomness, 0.42))
	require.NoError(s.T(), s.s.Lock(tree.NameDepth, true))
	want := s.s.Parameters()

	path := filepath.Join(s.T().TempDir(), "tree.json")
	require.NoError(s.T(), s.s.SaveSettings(path))

	other := New(WithLogger(quiet))
	require.NoError(s.T(), other.LoadSettings(path))
	require.Equal(s.T(), want, other.Parameters())
	require.False(s.T(), other.Locked(tree.NameDepth))
}

func (s *SessionSuite) TestLoadSettingsMissingFile() {
	err := s.s.LoadSettings(filepath.Join(s.T().TempDir(), "nope.json"))
	require.ErrorIs(s.T(), err, ErrIO)
	require.ErrorIs(s.T(), err, fs.ErrNotExist)

	var ioErr *IOError
	require.True(s.T(), errors.As(err, &ioErr))
	require.Equal(s.T(), "load", ioErr.Op)
	require.Equal(s.T(), tree.DefaultParameters(), s.s.Parameters())
}

func (s *SessionSuite) TestSaveSettingsToDirectoryFails() {
	err := s.s.SaveSettings(s.T().TempDir())
	require.ErrorIs(s.T(), err, ErrIO)
}

func (s *SessionSuite) TestLoadsWholePercentSettingsFormat() {
	doc := `{"depth": 10, "angle_variation": 20, "length_factor": 70, "initial_length": 100,
		"randomness": 15, "branch_thickness": 10, "branch_color": 130,
		"angle_randomness": 10, "length_randomness": 10}`
	require.NoError(s.T(), s.s.SetParameter(tree.NameDepth, 3))
	require.NoError(s.T(), s.s.Deserialize([]byte(doc)))
	require.Equal(s.T(), tree.DefaultParameters(), s.s.Parameters())
}

func (s *SessionSuite) TestDeserializeMissingKeyIsAllOrNothing() {
	require.NoError(s.T(), s.s.SetParameter(tree.NameDepth, 5))
	data, err := s.s.Serialize()
	require.NoError(s.T(), err)

	other := New(WithLogger(quiet))
	before := other.Parameters()
	for _, f := range tree.Fields {
		broken := strings.Replace(string(data), `"`+string(f.Name)+`"`, `"x_`+string(f.Name)+`"`, 1)

		err := other.Deserialize([]byte(broken))
		var ve *tree.ValidationError
		require.True(s.T(), errors.As(err, &ve), "key %s", f.Name)
		require.Equal(s.T(), f.Name, ve.Field)
		require.Equal(s.T(), before, other.Parameters())
	}
}

func (s *SessionSuite) TestDeserializeRejectsBadContent() {
	before := s.s.Parameters()

	require.ErrorIs(s.T(), s.s.Deserialize([]byte(`{"depth": `)), tree.ErrValidation)
	require.ErrorIs(s.T(), s.s.Deserialize([]byte(`[1, 2]`)), tree.ErrValidation)

	outOfRange := `{"depth": 30, "angle_variation": 20, "length_factor": 70, "initial_length": 100,
		"randomness": 15, "branch_thickness": 10, "branch_color": 130,
		"angle_randomness": 10, "length_randomness": 10}`
	require.ErrorIs(s.T(), s.s.Deserialize([]byte(outOfRange)), tree.ErrValidation)

	require.Equal(s.T(), before, s.s.Parameters())
	require.Zero(s.T(), s.changes)
}

func (s *SessionSuite) TestDeserializeRejectsNullValues() {
	before := s.s.Parameters()

	doc := `{"depth": 10, "angle_variation": 20, "length_factor": 70, "initial_length": 100,
		"randomness": 15, "branch_thickness": 10, "branch_color": 130,
		"angle_randomness": null, "length_randomness": 10}`
	err := s.s.Deserialize([]byte(doc))
	var ve *tree.ValidationError
	require.True(s.T(), errors.As(err, &ve))
	require.Equal(s.T(), tree.NameAngleJitter, ve.Field)

	doc = strings.Replace(doc, `null`, `"10"`, 1)
	require.ErrorIs(s.T(), s.s.Deserialize([]byte(doc)), tree.ErrValidation)

	require.Equal(s.T(), before, s.s.Parameters())
	require.Zero(s.T(), s.changes)
}

func (s *SessionSuite) TestExportRejectsInvalidSize() {
	for _, size := range [][2]int{{0, 0}, {-1, 100}, {100, 0}} {
		_, err := s.s.ExportRaster(size[0], size[1])
		require.ErrorIs(s.T(), err, tree.ErrValidation, "%v", size)

		path := filepath.Join(s.T().TempDir(), "tree.png")
		require.ErrorIs(s.T(), s.s.ExportFile(path, size[0], size[1]), tree.ErrValidation, "%v", size)
		_, err = os.Stat(path)
		require.True(s.T(), os.IsNotExist(err), "%v", size)
	}
}

func (s *SessionSuite) TestExportInvalidSizeKeepsExistingFile() {
	path := filepath.Join(s.T().TempDir(), "tree.png")
	require.NoError(s.T(), os.WriteFile(path, []byte("keep"), 0o644))

	require.Error(s.T(), s.s.ExportFile(path, 0, 0))
	data, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "keep", string(data))
}

func (s *SessionSuite) TestLocksReturnsCopy() {
	require.NoError(s.T(), s.s.Lock(tree.NameDepth, true))
	require.NoError(s.T(), s.s.Lock(tree.NameColor, true))
	require.NoError(s.T(), s.s.Lock(tree.NameColor, false))

	locks := s.s.Locks()
	require.Equal(s.T(), LockSet{tree.NameDepth: true}, locks)

	locks[tree.NameAngleSpread] = true
	require.False(s.T(), s.s.Locked(tree.NameAngleSpread))
}

// scriptedRand returns midpoint floats and the lowest value for every Intn.
type scriptedRand struct{ intn int }

func (r *scriptedRand) Float64() float64 { return 0.5 }
func (r *scriptedRand) Intn(int) int     { r.intn++; return 0 }

func (s *SessionSuite) TestWithRand() {
	r := &scriptedRand{}
	sess := New(WithRand(r), WithLogger(quiet))

	sess.Randomize()
	p := sess.Parameters()
	for _, f := range tree.Fields {
		if !f.Lockable {
			continue
		}
		require.Equal(s.T(), f.RandMin, f.Slider(p), "field %s", f.Name)
	}
	require.Positive(s.T(), r.intn)

	want := tree.Generate(tree.Point{X: 400, Y: 550}, -math.Pi/2, p, &scriptedRand{})
	require.Equal(s.T(), want, sess.Regenerate())
}

func (s *SessionSuite) TestLegacyRandomnessHasNoEffect() {
	a := New(WithSeed(9), WithLogger(quiet))
	b := New(WithSeed(9), WithLogger(quiet))
	require.NoError(s.T(), b.SetParameter(tree.NameRandomness, 0.5))
	require.Equal(s.T(), a.Regenerate(), b.Regenerate())
}

// gridParameters draws a valid parameter set on the slider grid.
func gridParameters(t *rapid.T) tree.Parameters {
	p := tree.Parameters{ThicknessDecay: tree.DefaultThicknessDecay}
	for _, f := range tree.Fields {
		f.Set(&p, f.FromSlider(rapid.IntRange(f.Min, f.Max).Draw(t, string(f.Name))))
	}
	return p
}

func TestSerializeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := gridParameters(t)
		src := New(WithLogger(quiet))
		if err := src.SetParameters(p); err != nil {
			t.Fatalf("SetParameters: %v", err)
		}
		data, err := src.Serialize()
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}

		dst := New(WithLogger(quiet))
		if err := dst.Deserialize(data); err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if dst.Parameters() != p {
			t.Fatalf("round trip: got %+v, want %+v", dst.Parameters(), p)
		}
	})
}

func TestRandomizeStaysInCuratedRanges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(WithSeed(rapid.Int64().Draw(t, "seed")), WithLogger(quiet))
		if err := s.SetParameters(gridParameters(t)); err != nil {
			t.Fatalf("SetParameters: %v", err)
		}
		for _, f := range tree.Fields {
			if f.Lockable && rapid.Bool().Draw(t, "lock "+string(f.Name)) {
				if err := s.Lock(f.Name, true); err != nil {
					t.Fatalf("Lock: %v", err)
				}
			}
		}
		before := s.Parameters()

		s.Randomize()

		after := s.Parameters()
		for _, f := range tree.Fields {
			switch {
			case !f.Lockable || s.Locked(f.Name):
				if f.Get(after) != f.Get(before) {
					t.Fatalf("%s changed from %v to %v", f.Name, f.Get(before), f.Get(after))
				}
			default:
				v := f.Slider(after)
				if v < f.RandMin || v > f.RandMax {
					t.Fatalf("%s = %d outside %d..%d", f.Name, v, f.RandMin, f.RandMax)
				}
			}
		}
		if after.BaseLength != before.BaseLength {
			t.Fatalf("base length changed")
		}
	})
}
