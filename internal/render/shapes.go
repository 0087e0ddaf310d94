package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// kappa is the cubic Bezier control distance for a quarter circle.
const kappa = 0.5522847498

// pen fills vector paths onto an RGBA image.
type pen struct {
	dst *image.RGBA
	z   *vector.Rasterizer
}

func newPen(dst *image.RGBA) *pen {
	b := dst.Bounds()
	return &pen{dst: dst, z: vector.NewRasterizer(b.Dx(), b.Dy())}
}

func (p *pen) fill(c color.Color) {
	p.z.DrawOp = draw.Over
	p.z.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c), image.Point{})
	b := p.dst.Bounds()
	p.z.Reset(b.Dx(), b.Dy())
}

func (p *pen) circle(cx, cy, r float64, clockwise bool) {
	k := r * kappa
	z := p.z
	f := func(v float64) float32 { return float32(v) }
	if clockwise {
		z.MoveTo(f(cx+r), f(cy))
		z.CubeTo(f(cx+r), f(cy+k), f(cx+k), f(cy+r), f(cx), f(cy+r))
		z.CubeTo(f(cx-k), f(cy+r), f(cx-r), f(cy+k), f(cx-r), f(cy))
		z.CubeTo(f(cx-r), f(cy-k), f(cx-k), f(cy-r), f(cx), f(cy-r))
		z.CubeTo(f(cx+k), f(cy-r), f(cx+r), f(cy-k), f(cx+r), f(cy))
	} else {
		z.MoveTo(f(cx+r), f(cy))
		z.CubeTo(f(cx+r), f(cy-k), f(cx+k), f(cy-r), f(cx), f(cy-r))
		z.CubeTo(f(cx-k), f(cy-r), f(cx-r), f(cy-k), f(cx-r), f(cy))
		z.CubeTo(f(cx-r), f(cy+k), f(cx-k), f(cy+r), f(cx), f(cy+r))
		z.CubeTo(f(cx+k), f(cy+r), f(cx+r), f(cy+k), f(cx+r), f(cy))
	}
	z.ClosePath()
}

// fillCircle paints a disc.
func (p *pen) fillCircle(cx, cy, r float64, c color.Color) {
	if r <= 0 {
		return
	}
	p.circle(cx, cy, r, true)
	p.fill(c)
}

// fillRing paints the annulus between inner and outer radius.
func (p *pen) fillRing(cx, cy, inner, outer float64, c color.Color) {
	if outer <= inner || outer <= 0 {
		return
	}
	p.circle(cx, cy, outer, true)
	if inner > 0 {
		p.circle(cx, cy, inner, false)
	}
	p.fill(c)
}

// fillRoundRect paints r with corner radius rad.
func (p *pen) fillRoundRect(x0, y0, x1, y1, rad float64, c color.Color) {
	rad = math.Min(rad, math.Min((x1-x0)/2, (y1-y0)/2))
	if rad < 0 {
		rad = 0
	}
	k := rad * kappa
	f := func(v float64) float32 { return float32(v) }
	z := p.z
	z.MoveTo(f(x0+rad), f(y0))
	z.LineTo(f(x1-rad), f(y0))
	z.CubeTo(f(x1-rad+k), f(y0), f(x1), f(y0+rad-k), f(x1), f(y0+rad))
	z.LineTo(f(x1), f(y1-rad))
	z.CubeTo(f(x1), f(y1-rad+k), f(x1-rad+k), f(y1), f(x1-rad), f(y1))
	z.LineTo(f(x0+rad), f(y1))
	z.CubeTo(f(x0+rad-k), f(y1), f(x0), f(y1-rad+k), f(x0), f(y1-rad))
	z.LineTo(f(x0), f(y0+rad))
	z.CubeTo(f(x0), f(y0+rad-k), f(x0+rad-k), f(y0), f(x0+rad), f(y0))
	z.ClosePath()
	p.fill(c)
}

// fillPolygon paints a closed polygon given as x,y pairs.
func (p *pen) fillPolygon(c color.Color, pts ...float64) {
	if len(pts) < 6 {
		return
	}
	p.z.MoveTo(float32(pts[0]), float32(pts[1]))
	for i := 2; i+1 < len(pts); i += 2 {
		p.z.LineTo(float32(pts[i]), float32(pts[i+1]))
	}
	p.z.ClosePath()
	p.fill(c)
}

// circleMask is an anti-aliased circular alpha mask used to clip album art
// to the vinyl label.
type circleMask struct {
	cx, cy, r float64
	bounds    image.Rectangle
}

func (m *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (m *circleMask) Bounds() image.Rectangle { return m.bounds }

func (m *circleMask) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - m.cx
	dy := float64(y) + 0.5 - m.cy
	d := math.Sqrt(dx*dx+dy*dy) - m.r
	switch {
	case d <= -0.5:
		return color.Alpha{A: 255}
	case d >= 0.5:
		return color.Alpha{}
	default:
		return color.Alpha{A: uint8((0.5 - d) * 255)}
	}
}

// verticalGradient fills dst with a top-to-bottom blend.
func verticalGradient(dst *image.RGBA, top, bottom color.RGBA) {
	b := dst.Bounds()
	h := b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y-b.Min.Y) / float64(h-1)
		}
		row := blend(top, bottom, t)
		off := dst.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[off+0] = row.R
			dst.Pix[off+1] = row.G
			dst.Pix[off+2] = row.B
			dst.Pix[off+3] = 255
			off += 4
		}
	}
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
