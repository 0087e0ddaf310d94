package render

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/handiism/vinyl-player/internal/lyrics"
)

type fakePlayback struct {
	current, duration float64
	paused            bool
}

func (f fakePlayback) CurrentTime() float64 { return f.current }
func (f fakePlayback) Duration() float64    { return f.duration }
func (f fakePlayback) Paused() bool         { return f.paused }

func TestAngle(t *testing.T) {
	tests := []struct {
		elapsed, speed, want float64
	}{
		{0, DefaultRotationSpeed, 0},
		{1000, DefaultRotationSpeed, 18},
		{25000, DefaultRotationSpeed, 90},
		{41000, DefaultRotationSpeed, 18},
		{-1000, DefaultRotationSpeed, 342},
		{500, 1, 140},
	}
	for _, tt := range tests {
		got := Angle(tt.elapsed, tt.speed)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Angle(%v, %v) = %v, want %v", tt.elapsed, tt.speed, got, tt.want)
		}
	}
}

func TestAngle_RangeAndForwardOnly(t *testing.T) {
	prev := Angle(0, DefaultRotationSpeed)
	for e := 1.0; e < 120000; e += 16.7 {
		a := Angle(e, DefaultRotationSpeed)
		if a < 0 || a >= 360 {
			t.Fatalf("Angle(%v) = %v out of range", e, a)
		}
		delta := math.Mod(a-prev+360, 360)
		if delta > 180 {
			t.Fatalf("rotation went backwards at %v: %v -> %v", e, prev, a)
		}
		prev = a
	}
}

func TestRotationClock_UsesWallClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	clock := &RotationClock{Start: start, Speed: DefaultRotationSpeed, now: func() time.Time { return now }}

	now = start.Add(2 * time.Second)
	if got := clock.Angle(); math.Abs(got-36) > 1e-9 {
		t.Errorf("Angle after 2s = %v, want 36", got)
	}
	// The angle only depends on elapsed time, not on how often it is read.
	for i := 0; i < 100; i++ {
		clock.Angle()
	}
	if got := clock.Angle(); math.Abs(got-36) > 1e-9 {
		t.Errorf("Angle after repeated reads = %v, want 36", got)
	}
}

func TestNewRotationClock_DefaultSpeed(t *testing.T) {
	if c := NewRotationClock(0); c.Speed != DefaultRotationSpeed {
		t.Errorf("Speed = %v, want default", c.Speed)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		current, duration, want float64
	}{
		{0, 10, 0},
		{5, 10, 0.5},
		{15, 10, 1},
		{5, 0, 0},
		{math.NaN(), 10, 0},
		{5, math.NaN(), 0},
		{5, math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := Progress(tt.current, tt.duration); got != tt.want {
			t.Errorf("Progress(%v, %v) = %v, want %v", tt.current, tt.duration, got, tt.want)
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("default layout invalid: %v", err)
	}

	bad := DefaultLayout()
	bad.DiscRadius = 0
	bad.Fill = "pink"
	if err := bad.Validate(); err == nil {
		t.Error("expected validation error")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{255, 0, 0, 255}, false},
		{"#0f0", color.RGBA{0, 255, 0, 255}, false},
		{"blue", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRender_NaNPlaybackDoesNotPanic(t *testing.T) {
	r, err := NewRenderer(DefaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	c := NewCanvas(180, 320)
	scenes := []Scene{
		{},
		{Playback: fakePlayback{current: math.NaN(), duration: math.NaN(), paused: true}},
		{Playback: fakePlayback{current: math.Inf(1), duration: 0}},
		{
			Rotation:    123,
			Playback:    fakePlayback{current: 2, duration: 4},
			Lyrics:      []lyrics.Cue{{Start: 0, End: 5, Text: "hello"}},
			LyricsColor: "not-a-color",
			Title:       "A very long title that will certainly not fit on a tiny card",
			Artist:      "Artist",
		},
	}
	for _, s := range scenes {
		r.Render(c, s)
	}
}

func TestRender_PaintsCardAndArt(t *testing.T) {
	layout := DefaultLayout()
	r, err := NewRenderer(layout)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	art := image.NewRGBA(image.Rect(0, 0, 64, 64))
	red := color.RGBA{255, 0, 0, 255}
	for i := 0; i < len(art.Pix); i += 4 {
		art.Pix[i], art.Pix[i+1], art.Pix[i+2], art.Pix[i+3] = 255, 0, 0, 255
	}

	c := NewCanvas(360, 640)
	r.Render(c, Scene{Art: art, Playback: fakePlayback{current: 1, duration: 2}})
	frame := c.Snapshot()

	// Corner pixel is background, not card.
	bgTop, _ := ParseColor(layout.BackgroundTop)
	if got := frame.RGBAAt(0, 0); got != bgTop {
		t.Errorf("corner = %v, want background %v", got, bgTop)
	}

	// A point on the label, off the spindle hole, shows the album art.
	cardW := 360 * layout.CardWidth
	cardH := 640 * layout.CardHeight
	cy := (640-cardH)/2 + cardH*layout.DiscCenterY
	artR := cardW * layout.DiscRadius * layout.ArtRadius
	x := int(180 + artR/2)
	if got := frame.RGBAAt(x, int(cy)); got != red {
		t.Errorf("label pixel = %v, want %v", got, red)
	}
}

func TestRender_RotationChangesFrame(t *testing.T) {
	r, err := NewRenderer(DefaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	c := NewCanvas(180, 320)
	r.Render(c, Scene{Rotation: 0})
	a := c.Snapshot()
	r.Render(c, Scene{Rotation: 90})
	b := c.Snapshot()

	same := true
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("rotating the placeholder label should change the frame")
	}
}

func TestCanvas_CopyFrame(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.FrameSize() != 4*2*4 {
		t.Fatalf("FrameSize = %d", c.FrameSize())
	}
	c.Draw(func(img *image.RGBA) { img.Pix[0] = 7 })
	buf := make([]byte, c.FrameSize())
	if n := c.CopyFrame(buf); n != len(buf) || buf[0] != 7 {
		t.Errorf("CopyFrame copied %d bytes, first = %d", n, buf[0])
	}
	if w, h := c.Size(); w != 4 || h != 2 {
		t.Errorf("Size = %dx%d", w, h)
	}
}

func TestPlaceholderArt(t *testing.T) {
	img := PlaceholderArt(32)
	if img.Bounds().Dx() != 32 {
		t.Fatalf("size = %v", img.Bounds())
	}
	if PlaceholderArt(0).Bounds().Dx() != 1 {
		t.Error("non-positive size should clamp to 1")
	}
}

func TestLayout_LabelDiameter(t *testing.T) {
	l := DefaultLayout()
	if got := l.LabelDiameter(720); got != 315 {
		t.Errorf("LabelDiameter(720) = %d, want 315", got)
	}
	if got := l.LabelDiameter(0); got != 1 {
		t.Errorf("LabelDiameter(0) = %d, want 1", got)
	}
}
