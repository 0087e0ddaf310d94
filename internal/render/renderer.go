package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/handiism/vinyl-player/internal/lyrics"
)

// Playback is the read-only view of an audio element the renderer needs.
//
// Implementations may return NaN or infinite times while metadata is still
// loading; the renderer treats those as zero.
type Playback interface {
	CurrentTime() float64
	Duration() float64
	Paused() bool
}

// Scene is everything one frame depends on.
type Scene struct {
	// Rotation is the vinyl angle in degrees.
	Rotation float64

	// Art is the album art. Nil selects the placeholder label.
	Art image.Image

	// Playback drives the progress bar, time labels, play/pause glyph and
	// the active lyric. Nil renders a stopped player at 0:00.
	Playback Playback

	Lyrics      []lyrics.Cue
	LyricsColor string
	Title       string
	Artist      string
}

// Renderer paints player frames. A Renderer caches fonts and backgrounds and
// must be used from one goroutine at a time.
type Renderer struct {
	layout  Layout
	colors  palette
	fonts   *fonts
	bg      *image.RGBA
	holder  *image.RGBA
	lyricFb color.RGBA
}

// NewRenderer creates a renderer for the given layout.
func NewRenderer(layout Layout) (*Renderer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		layout:  layout,
		colors:  layout.palette(),
		fonts:   f,
		lyricFb: color.RGBA{255, 255, 255, 255},
	}, nil
}

// Layout returns the layout the renderer was built with.
func (r *Renderer) Layout() Layout {
	return r.layout
}

// Close releases cached font faces.
func (r *Renderer) Close() {
	r.fonts.regular.close()
	r.fonts.bold.close()
}

// Render paints one full frame of s onto c.
func (r *Renderer) Render(c *Canvas, s Scene) {
	c.Draw(func(img *image.RGBA) {
		r.RenderImage(img, s)
	})
}

// RenderImage paints one full frame of s onto img.
func (r *Renderer) RenderImage(img *image.RGBA, s Scene) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	l := r.layout

	current, duration, paused := playbackState(s.Playback)

	r.paintBackground(img)
	p := newPen(img)

	cardW := w * l.CardWidth
	cardH := h * l.CardHeight
	x0 := (w - cardW) / 2
	y0 := (h - cardH) / 2
	p.fillRoundRect(x0, y0, x0+cardW, y0+cardH, l.CardRadius*cardW, r.colors.card)

	cx := w / 2
	cy := y0 + cardH*l.DiscCenterY
	discR := cardW * l.DiscRadius
	r.paintDisc(img, p, cx, cy, discR, s.Rotation, s.Art)

	textW := int(cardW * (1 - 2*l.ProgressInset))
	drawCentered(img, r.fonts.bold.face(pixelSize(l.TitleSize, cardW)), s.Title,
		cx, y0+cardH*l.TitleY, textW, r.colors.title)
	drawCentered(img, r.fonts.regular.face(pixelSize(l.ArtistSize, cardW)), s.Artist,
		cx, y0+cardH*l.ArtistY, textW, r.colors.artist)

	if line := lyrics.ActiveText(s.Lyrics, current); line != "" {
		drawCentered(img, r.fonts.bold.face(pixelSize(l.LyricSize, cardW)), line,
			cx, y0+cardH*l.LyricY, textW, colorOr(s.LyricsColor, r.lyricFb))
	}

	px0 := x0 + cardW*l.ProgressInset
	px1 := x0 + cardW*(1-l.ProgressInset)
	py := y0 + cardH*l.ProgressY
	r.paintProgress(p, px0, px1, py, cardH*l.ProgressHeight, cardW*l.ThumbRadius, Progress(current, duration))

	timeFace := r.fonts.regular.face(pixelSize(l.TimeSize, cardW))
	drawAligned(img, timeFace, lyrics.SecondsToTime(current), px0, y0+cardH*l.TimeY, false, r.colors.time)
	drawAligned(img, timeFace, lyrics.SecondsToTime(duration), px1, y0+cardH*l.TimeY, true, r.colors.time)

	r.paintControls(p, cx, y0+cardH*l.ControlsY, cardW*l.ControlSize, cardW*l.ControlGap, paused)
}

func (r *Renderer) paintBackground(img *image.RGBA) {
	if r.bg == nil || r.bg.Bounds() != img.Bounds() {
		r.bg = image.NewRGBA(img.Bounds())
		verticalGradient(r.bg, r.colors.bgTop, r.colors.bgBottom)
	}
	copy(img.Pix, r.bg.Pix)
}

func (r *Renderer) paintDisc(img *image.RGBA, p *pen, cx, cy, discR, rotation float64, art image.Image) {
	l := r.layout
	p.fillCircle(cx, cy, discR, r.colors.disc)

	artR := discR * l.ArtRadius
	if l.Grooves > 0 {
		span := (discR - artR) * 0.9
		step := span / float64(l.Grooves)
		for i := 0; i < l.Grooves; i++ {
			rr := artR + step*(float64(i)+0.5)
			p.fillRing(cx, cy, rr, rr+math.Max(1, step*0.25), r.colors.groove)
		}
	}

	if art == nil {
		size := int(math.Ceil(artR * 2))
		if r.holder == nil || r.holder.Bounds().Dx() != size {
			r.holder = PlaceholderArt(size)
		}
		art = r.holder
	}
	drawRotated(img, art, cx, cy, artR, rotation)

	p.fillCircle(cx, cy, discR*l.HoleRadius, r.colors.hole)
}

// drawRotated draws src scaled to a circle of radius rad centered on
// (cx, cy), rotated by deg degrees and clipped to the circle.
func drawRotated(dst *image.RGBA, src image.Image, cx, cy, rad, deg float64) {
	sb := src.Bounds()
	side := float64(min(sb.Dx(), sb.Dy()))
	if side <= 0 || rad <= 0 {
		return
	}
	scale := 2 * rad / side
	theta := deg * math.Pi / 180
	cos, sin := math.Cos(theta)*scale, math.Sin(theta)*scale

	sx := float64(sb.Min.X) + float64(sb.Dx())/2
	sy := float64(sb.Min.Y) + float64(sb.Dy())/2
	s2d := f64.Aff3{
		cos, -sin, cx - (cos*sx - sin*sy),
		sin, cos, cy - (sin*sx + cos*sy),
	}
	mask := &circleMask{cx: cx, cy: cy, r: rad, bounds: dst.Bounds()}
	draw.BiLinear.Transform(dst, s2d, src, sb, draw.Over, &draw.Options{
		DstMask:  mask,
		DstMaskP: image.Point{},
	})
}

func (r *Renderer) paintProgress(p *pen, x0, x1, y, height, thumbR, ratio float64) {
	if height < 2 {
		height = 2
	}
	p.fillRoundRect(x0, y-height/2, x1, y+height/2, height/2, r.colors.track)
	fx := x0 + (x1-x0)*ratio
	if fx > x0 {
		p.fillRoundRect(x0, y-height/2, fx, y+height/2, height/2, r.colors.fill)
	}
	p.fillCircle(fx, y, thumbR, r.colors.fill)
}

func (r *Renderer) paintControls(p *pen, cx, cy, size, gap float64, paused bool) {
	half := size / 2
	c := r.colors.controls

	// previous: bar and left-pointing triangle
	lx := cx - gap
	p.fillPolygon(c, lx-half, cy-half, lx-half+size*0.14, cy-half, lx-half+size*0.14, cy+half, lx-half, cy+half)
	p.fillPolygon(c, lx+half, cy-half, lx+half, cy+half, lx-half+size*0.2, cy)

	if paused {
		p.fillPolygon(c, cx-half*0.7, cy-half, cx-half*0.7, cy+half, cx+half, cy)
	} else {
		bw := size * 0.28
		p.fillPolygon(c, cx-half*0.8, cy-half, cx-half*0.8+bw, cy-half, cx-half*0.8+bw, cy+half, cx-half*0.8, cy+half)
		p.fillPolygon(c, cx+half*0.8-bw, cy-half, cx+half*0.8, cy-half, cx+half*0.8, cy+half, cx+half*0.8-bw, cy+half)
	}

	// next: right-pointing triangle and bar
	rx := cx + gap
	p.fillPolygon(c, rx-half, cy-half, rx+half-size*0.2, cy, rx-half, cy+half)
	p.fillPolygon(c, rx+half-size*0.14, cy-half, rx+half, cy-half, rx+half, cy+half, rx+half-size*0.14, cy+half)
}

// Progress returns current/duration clamped to [0, 1]. Unknown or zero
// durations give 0.
func Progress(current, duration float64) float64 {
	current, duration = finite(current), finite(duration)
	if duration <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, current/duration))
}

func playbackState(pb Playback) (current, duration float64, paused bool) {
	if pb == nil {
		return 0, 0, true
	}
	return finite(pb.CurrentTime()), finite(pb.Duration()), pb.Paused()
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
