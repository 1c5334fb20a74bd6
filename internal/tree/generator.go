// Package tree generates binary fractal trees as flat lists of drawable
// line segments and joint caps.
package tree

import (
	"image/color"
	"math"
)

// Point is a position in canvas space: origin top-left, y grows downward.
type Point struct {
	X, Y float64
}

// Segment is one drawable branch.
type Segment struct {
	Start     Point
	End       Point
	Thickness float64
	Color     color.RGBA
	Depth     int
}

// Joint is the rounded cap drawn where a branch splits. Segment is the
// index of the segment whose end it covers.
type Joint struct {
	Center  Point
	Radius  float64
	Color   color.RGBA
	Segment int
}

// Tree is the full output of one generation call in emission order.
type Tree struct {
	Segments []Segment
	Joints   []Joint
}

// RandomSource supplies uniform samples in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Visitor receives generated elements in pre-order. Either callback may be nil.
type Visitor struct {
	Segment func(Segment)
	Joint   func(Joint)
}

// Generate builds the whole tree rooted at origin and growing along angle
// (radians). A nil rng disables jitter.
func Generate(origin Point, angle float64, p Parameters, rng RandomSource) Tree {
	t := Tree{
		Segments: make([]Segment, 0, SegmentCount(p.MaxDepth)),
		Joints:   make([]Joint, 0, JointCount(p.MaxDepth)),
	}
	Walk(origin, angle, p, rng, Visitor{
		Segment: func(s Segment) { t.Segments = append(t.Segments, s) },
		Joint:   func(j Joint) { t.Joints = append(t.Joints, j) },
	})
	return t
}

// Walk streams the tree to v without collecting it.
func Walk(origin Point, angle float64, p Parameters, rng RandomSource, v Visitor) {
	w := walker{p: p, rng: rng, color: ColorFromSeed(p.ColorSeed), v: v}
	w.branch(origin, angle, p.BaseLength, p.InitialThickness, clampDepth(p.MaxDepth))
}

type walker struct {
	p       Parameters
	rng     RandomSource
	color   color.RGBA
	v       Visitor
	emitted int
}

func (w *walker) branch(from Point, angle, length, thickness float64, depth int) {
	if depth <= 0 {
		return
	}

	actual := length * w.jitter(w.p.LengthJitter)
	end := Point{
		X: from.X + actual*math.Cos(angle),
		Y: from.Y + actual*math.Sin(angle),
	}

	idx := w.emitted
	w.emitted++
	if w.v.Segment != nil {
		w.v.Segment(Segment{Start: from, End: end, Thickness: thickness, Color: w.color, Depth: depth})
	}
	if depth != 1 && w.v.Joint != nil {
		w.v.Joint(Joint{Center: end, Radius: thickness / 2, Color: w.color, Segment: idx})
	}

	length *= w.p.LengthFactor
	thickness *= w.p.ThicknessDecay

	// Each child samples its own spread, the right one only after the
	// left subtree is complete.
	w.branch(end, angle-radians(w.p.AngleSpread*w.jitter(w.p.AngleJitter)), length, thickness, depth-1)
	w.branch(end, angle+radians(w.p.AngleSpread*w.jitter(w.p.AngleJitter)), length, thickness, depth-1)
}

// jitter returns a multiplier drawn uniformly from [1-j, 1+j]. A sample is
// consumed even when j is zero.
func (w *walker) jitter(j float64) float64 {
	if w.rng == nil {
		return 1
	}
	return 1 - j + 2*j*w.rng.Float64()
}
