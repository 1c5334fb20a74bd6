package tree

import (
	"fmt"
	"math"
)

// Field describes one tunable parameter as the controls expose it.
// Ranges are in slider units: whole degrees, pixels, shade steps or
// percents. Scale converts a natural value to slider units.
type Field struct {
	Name    Name
	Label   string
	Min     int
	Max     int
	RandMin int
	RandMax int
	Scale   float64

	// Lockable fields take part in randomization and can be pinned
	// with a lock flag. Non-lockable fields are never randomized.
	Lockable bool
}

// Fields lists every parameter in control panel order.
var Fields = []Field{
	{Name: NameDepth, Label: "Recursion Depth", Min: 2, Max: 12, RandMin: 4, RandMax: 10, Scale: 1, Lockable: true},
	{Name: NameAngleSpread, Label: "Branch Angle", Min: 5, Max: 45, RandMin: 15, RandMax: 35, Scale: 1, Lockable: true},
	{Name: NameLengthFactor, Label: "Length Factor (%)", Min: 50, Max: 90, RandMin: 65, RandMax: 80, Scale: 100, Lockable: true},
	{Name: NameBaseLength, Label: "Initial Length", Min: 50, Max: 150, Scale: 1},
	{Name: NameRandomness, Label: "Randomness (%)", Min: 0, Max: 50, RandMin: 10, RandMax: 30, Scale: 100, Lockable: true},
	{Name: NameThickness, Label: "Branch Thickness", Min: 1, Max: 50, RandMin: 5, RandMax: 12, Scale: 1, Lockable: true},
	{Name: NameColor, Label: "Branch Color Shade", Min: 80, Max: 160, RandMin: 100, RandMax: 140, Scale: 1, Lockable: true},
	{Name: NameAngleJitter, Label: "Angle Randomness (%)", Min: 0, Max: 50, RandMin: 5, RandMax: 20, Scale: 100, Lockable: true},
	{Name: NameLengthJitter, Label: "Length Randomness (%)", Min: 0, Max: 50, RandMin: 5, RandMax: 20, Scale: 100, Lockable: true},
}

// slack absorbs float noise when a fraction is converted to percents.
const slack = 1e-9

// Lookup finds the field with the given name.
func Lookup(name Name) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Get returns the field's value from p in natural units.
func (f Field) Get(p Parameters) float64 {
	switch f.Name {
	case NameDepth:
		return float64(p.MaxDepth)
	case NameAngleSpread:
		return p.AngleSpread
	case NameLengthFactor:
		return p.LengthFactor
	case NameBaseLength:
		return p.BaseLength
	case NameRandomness:
		return p.Randomness
	case NameThickness:
		return p.InitialThickness
	case NameColor:
		return float64(p.ColorSeed)
	case NameAngleJitter:
		return p.AngleJitter
	case NameLengthJitter:
		return p.LengthJitter
	}
	return 0
}

// Set stores v, in natural units, into p.
func (f Field) Set(p *Parameters, v float64) {
	switch f.Name {
	case NameDepth:
		p.MaxDepth = int(math.Round(v))
	case NameAngleSpread:
		p.AngleSpread = v
	case NameLengthFactor:
		p.LengthFactor = v
	case NameBaseLength:
		p.BaseLength = v
	case NameRandomness:
		p.Randomness = v
	case NameThickness:
		p.InitialThickness = v
	case NameColor:
		p.ColorSeed = int(math.Round(v))
	case NameAngleJitter:
		p.AngleJitter = v
	case NameLengthJitter:
		p.LengthJitter = v
	}
}

// Slider returns the field's value from p in slider units.
func (f Field) Slider(p Parameters) int {
	return int(math.Round(f.Get(p) * f.Scale))
}

// FromSlider converts a slider position to natural units.
func (f Field) FromSlider(v int) float64 {
	return float64(v) / f.Scale
}

// Snap rounds v to the nearest whole slider unit.
func (f Field) Snap(v float64) float64 {
	return f.FromSlider(int(math.Round(v * f.Scale)))
}

// Check rejects a natural value outside the field's slider range.
func (f Field) Check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: f.Name, Reason: "not a finite number"}
	}
	s := v * f.Scale
	if s < float64(f.Min)-slack || s > float64(f.Max)+slack {
		return &ValidationError{
			Field:  f.Name,
			Reason: fmt.Sprintf("%g outside %d..%d", s, f.Min, f.Max),
		}
	}
	return nil
}
