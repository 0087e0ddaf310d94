package export

import "image"

// Canvas size defaults for a portrait player.
var (
	DefaultCanvasSize = image.Pt(720, 1280)
	MinCanvasSize     = image.Pt(320, 568)
)

// SizeHints are the candidate sources for the export canvas size, in the
// order they are tried. Zero values are skipped.
type SizeHints struct {
	// Player is the bounding box of the visible player.
	Player image.Point

	// Host is the size of the frame hosting the player.
	Host image.Point

	// Window is the size of the window; the largest 9:16 rectangle inside
	// it is used.
	Window image.Point
}

// CanvasSize picks the export canvas size from hints, falling back to def.
//
// The result is clamped to at least min in each dimension and rounded up to
// even dimensions, which the video encoder requires.
//
// Example:
//
//	CanvasSize(SizeHints{Window: image.Pt(1920, 1080)}, DefaultCanvasSize, MinCanvasSize)
//	// (608,1080)
func CanvasSize(h SizeHints, def, min image.Point) image.Point {
	var size image.Point
	switch {
	case positive(h.Player):
		size = h.Player
	case positive(h.Host):
		size = h.Host
	case positive(h.Window):
		size = fitPortrait(h.Window)
	case positive(def):
		size = def
	default:
		size = DefaultCanvasSize
	}

	size.X = even(max(size.X, min.X))
	size.Y = even(max(size.Y, min.Y))
	return size
}

func positive(p image.Point) bool {
	return p.X > 0 && p.Y > 0
}

// fitPortrait returns the largest 9:16 size that fits in w.
func fitPortrait(w image.Point) image.Point {
	if w.X*16 <= w.Y*9 {
		return image.Pt(w.X, w.X*16/9)
	}
	return image.Pt(w.Y*9/16, w.Y)
}

func even(v int) int {
	if v < 2 {
		return 2
	}
	return v + v%2
}
