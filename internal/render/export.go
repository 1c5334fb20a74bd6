package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iburimskiy/fractal-tree/internal/tree"
)

// Format is an export file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
)

// JPEGQuality is used for every JPEG export.
const JPEGQuality = 92

// ErrUnsupportedFormat is returned for paths whose extension maps to no Format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ErrInvalidSize is returned for exports with a non-positive width or height.
var ErrInvalidSize = errors.New("invalid export size")

// FormatFromPath infers the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q (want .png, .jpg, .jpeg or .svg)", ErrUnsupportedFormat, filepath.Ext(path))
}

// Encode writes img to w as PNG or JPEG.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	}
	return fmt.Errorf("%w: %q is not a raster format", ErrUnsupportedFormat, f)
}

// Options controls a file export.
type Options struct {
	Path       string
	Width      int
	Height     int
	Background color.Color
}

// SaveFile renders segs to opts.Path, picking the format from its extension.
// The file is closed on every path; a failed close is reported.
func SaveFile(opts Options, segs []tree.Segment) (err error) {
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := FormatFromPath(opts.Path)
	if err != nil {
		return err
	}
	if opts.Width < 1 || opts.Height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}

	if dir := filepath.Dir(opts.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if format == FormatSVG {
		return WriteSVG(f, segs, opts.Width, opts.Height, bg)
	}
	return Encode(f, Rasterize(segs, opts.Width, opts.Height, bg), format)
}
