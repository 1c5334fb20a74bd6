package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/iburimskiy/fractal-tree/internal/tree"
)

// WriteSVG writes segs as a w×h SVG document with a bg backdrop.
func WriteSVG(w io.Writer, segs []tree.Segment, width, height int, bg color.Color) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(bg)))
	for _, s := range segs {
		if s.Thickness <= 0 {
			continue
		}
		canvas.Line(
			round(s.Start.X), round(s.Start.Y), round(s.End.X), round(s.End.Y),
			fmt.Sprintf("stroke:%s;stroke-width:%.2f", css(s.Color), s.Thickness),
		)
	}
	canvas.End()
	return ew.err
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func css(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func round(v float64) int { return int(math.Round(v)) }
