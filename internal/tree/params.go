package tree

import "math"

// Name identifies a tree parameter. Names double as settings file keys.
type Name string

const (
	NameDepth        Name = "depth"
	NameAngleSpread  Name = "angle_variation"
	NameLengthFactor Name = "length_factor"
	NameBaseLength   Name = "initial_length"
	NameRandomness   Name = "randomness"
	NameThickness    Name = "branch_thickness"
	NameColor        Name = "branch_color"
	NameAngleJitter  Name = "angle_randomness"
	NameLengthJitter Name = "length_randomness"
)

// DefaultThicknessDecay is the fixed per-level thickness multiplier.
const DefaultThicknessDecay = 0.7

// DepthLimit bounds the recursion depth the generator will honour.
// The tree doubles with every level, so 16 already means 65535 segments.
const DepthLimit = 16

// Parameters is the full input of one generation call.
type Parameters struct {
	MaxDepth         int
	BaseLength       float64
	LengthFactor     float64 // (0,1], per-level length decay
	AngleSpread      float64 // degrees between a branch and each child
	ThicknessDecay   float64 // (0,1], per-level thickness decay
	InitialThickness float64
	ColorSeed        int
	AngleJitter      float64 // [0,1]
	LengthJitter     float64 // [0,1]

	// Randomness is kept for settings file compatibility and has no
	// effect on generation.
	Randomness float64
}

// DefaultParameters returns the parameter set a new session starts with.
func DefaultParameters() Parameters {
	return Parameters{
		MaxDepth:         10,
		BaseLength:       100,
		LengthFactor:     0.7,
		AngleSpread:      20,
		ThicknessDecay:   DefaultThicknessDecay,
		InitialThickness: 10,
		ColorSeed:        130,
		AngleJitter:      0.1,
		LengthJitter:     0.1,
		Randomness:       0.15,
	}
}

// Scaled returns a copy with lengths and thickness multiplied by s.
func (p Parameters) Scaled(s float64) Parameters {
	p.BaseLength *= s
	p.InitialThickness *= s
	return p
}

// Validate reports the first field that falls outside its declared range.
func (p Parameters) Validate() error {
	for _, f := range Fields {
		if err := f.Check(f.Get(p)); err != nil {
			return err
		}
	}
	if !(p.ThicknessDecay > 0 && p.ThicknessDecay <= 1) {
		return &ValidationError{Field: "thickness_decay", Reason: "must be in (0,1]"}
	}
	return nil
}

// SegmentCount is the number of segments a tree of the given depth has.
func SegmentCount(depth int) int {
	depth = clampDepth(depth)
	if depth <= 0 {
		return 0
	}
	return 1<<depth - 1
}

// JointCount is the number of joints a tree of the given depth has.
func JointCount(depth int) int {
	depth = clampDepth(depth)
	if depth <= 1 {
		return 0
	}
	return 1<<(depth-1) - 1
}

func clampDepth(depth int) int {
	if depth > DepthLimit {
		return DepthLimit
	}
	return depth
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
