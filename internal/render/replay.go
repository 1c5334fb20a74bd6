package render

import (
	"image/color"

	"github.com/iburimskiy/fractal-tree/internal/tree"
)

// Canvas is a drawing surface for Replay.
type Canvas interface {
	StrokeLine(from, to tree.Point, width float64, c color.RGBA)
	FillCircle(center tree.Point, radius float64, c color.RGBA)
}

// Replay draws t onto c in emission order: every segment is followed by
// the joint capping its end, if it has one.
func Replay(t tree.Tree, c Canvas) {
	j := 0
	for i, s := range t.Segments {
		c.StrokeLine(s.Start, s.End, s.Thickness, s.Color)
		for ; j < len(t.Joints) && t.Joints[j].Segment == i; j++ {
			jt := t.Joints[j]
			c.FillCircle(jt.Center, jt.Radius, jt.Color)
		}
	}
}
