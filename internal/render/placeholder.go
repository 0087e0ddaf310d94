package render

import (
	"image"
	"image/color"
	"math"
)

// PlaceholderArt generates the label drawn when a song has no album art: a
// radial gradient with a contrasting half so the rotation stays visible.
func PlaceholderArt(size int) *image.RGBA {
	if size < 1 {
		size = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	inner := color.RGBA{R: 0xf2, G: 0x6d, B: 0x7d, A: 0xff}
	outer := color.RGBA{R: 0x6a, G: 0x3d, B: 0x9a, A: 0xff}
	accent := color.RGBA{R: 0xff, G: 0xd1, B: 0x66, A: 0xff}

	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			t := math.Min(1, math.Hypot(dx, dy)/c)
			px := blend(inner, outer, t)
			// A wedge between 0 and 30 degrees marks the label orientation.
			if a := math.Atan2(dy, dx); a >= 0 && a < math.Pi/6 && t > 0.3 {
				px = blend(px, accent, 0.6)
			}
			img.SetRGBA(x, y, px)
		}
	}
	return img
}
