package tree

import "image/color"

// ColorFromSeed maps a shade seed to the brownish #RR6540 branch colour,
// with the seed as the red channel.
func ColorFromSeed(seed int) color.RGBA {
	r := seed
	if r < 0 {
		r = 0
	}
	if r > 0xff {
		r = 0xff
	}
	return color.RGBA{R: uint8(r), G: 0x65, B: 0x40, A: 0xff}
}
