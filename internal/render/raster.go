// Package render turns generated tree segments into images and files.
package render

import (
	"image"
	"image/color"

	"git.sr.ht/~sbinet/gg"

	"github.com/iburimskiy/fractal-tree/internal/tree"
)

// Rasterize strokes segs onto a w×h image filled with bg. Joints are not
// part of exported images.
func Rasterize(segs []tree.Segment, w, h int, bg color.Color) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(bg)
	dc.Clear()

	dc.SetLineCapButt()
	for _, s := range segs {
		if s.Thickness <= 0 {
			continue
		}
		dc.SetColor(s.Color)
		dc.SetLineWidth(s.Thickness)
		dc.DrawLine(s.Start.X, s.Start.Y, s.End.X, s.End.Y)
		dc.Stroke()
	}
	return dc.Image()
}
