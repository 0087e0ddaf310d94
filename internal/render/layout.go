package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Layout is the geometry and color table of the player card.
//
// Horizontal measures are fractions of the card width and vertical positions
// are fractions of the card height, so one table serves every canvas size.
// Colors are hex strings. The values mirror a visual design; they are meant
// to be supplied by configuration, not derived.
type Layout struct {
	CardWidth   float64 `toml:"card_width"`
	CardHeight  float64 `toml:"card_height"`
	CardRadius  float64 `toml:"card_radius"`
	DiscCenterY float64 `toml:"disc_center_y"`
	DiscRadius  float64 `toml:"disc_radius"`
	ArtRadius   float64 `toml:"art_radius"` // fraction of the disc radius
	HoleRadius  float64 `toml:"hole_radius"` // fraction of the disc radius
	Grooves     int     `toml:"grooves"`

	TitleY    float64 `toml:"title_y"`
	ArtistY   float64 `toml:"artist_y"`
	LyricY    float64 `toml:"lyric_y"`
	ProgressY float64 `toml:"progress_y"`
	TimeY     float64 `toml:"time_y"`
	ControlsY float64 `toml:"controls_y"`

	ProgressInset  float64 `toml:"progress_inset"`
	ProgressHeight float64 `toml:"progress_height"` // fraction of the card height
	ThumbRadius    float64 `toml:"thumb_radius"`
	ControlSize    float64 `toml:"control_size"`
	ControlGap     float64 `toml:"control_gap"`

	TitleSize  float64 `toml:"title_size"`
	ArtistSize float64 `toml:"artist_size"`
	LyricSize  float64 `toml:"lyric_size"`
	TimeSize   float64 `toml:"time_size"`

	BackgroundTop    string `toml:"background_top"`
	BackgroundBottom string `toml:"background_bottom"`
	Card             string `toml:"card"`
	Disc             string `toml:"disc"`
	Groove           string `toml:"groove"`
	Hole             string `toml:"hole"`
	Title            string `toml:"title"`
	Artist           string `toml:"artist"`
	Time             string `toml:"time"`
	Track            string `toml:"track"`
	Fill             string `toml:"fill"`
	Controls         string `toml:"controls"`
}

// DefaultLayout returns the standard portrait player card.
func DefaultLayout() Layout {
	return Layout{
		CardWidth:   0.88,
		CardHeight:  0.90,
		CardRadius:  0.06,
		DiscCenterY: 0.33,
		DiscRadius:  0.40,
		ArtRadius:   0.62,
		HoleRadius:  0.04,
		Grooves:     12,

		TitleY:    0.66,
		ArtistY:   0.71,
		LyricY:    0.79,
		ProgressY: 0.86,
		TimeY:     0.895,
		ControlsY: 0.945,

		ProgressInset:  0.08,
		ProgressHeight: 0.006,
		ThumbRadius:    0.018,
		ControlSize:    0.07,
		ControlGap:     0.16,

		TitleSize:  0.065,
		ArtistSize: 0.045,
		LyricSize:  0.05,
		TimeSize:   0.032,

		BackgroundTop:    "#1d1b2f",
		BackgroundBottom: "#0b0a12",
		Card:             "#24223a",
		Disc:             "#111111",
		Groove:           "#262626",
		Hole:             "#0b0a12",
		Title:            "#ffffff",
		Artist:           "#b9b6d3",
		Time:             "#8d8aa8",
		Track:            "#3a3852",
		Fill:             "#e94f64",
		Controls:         "#ffffff",
	}
}

// LabelDiameter is the album art diameter in pixels on a canvas of the
// given width.
func (l Layout) LabelDiameter(canvasWidth int) int {
	d := 2 * float64(canvasWidth) * l.CardWidth * l.DiscRadius * l.ArtRadius
	return max(1, int(math.Ceil(d)))
}

// Validate reports every out-of-range fraction and unparsable color.
func (l Layout) Validate() error {
	var errs []error

	fractions := map[string]float64{
		"card_width": l.CardWidth, "card_height": l.CardHeight, "card_radius": l.CardRadius,
		"disc_center_y": l.DiscCenterY, "disc_radius": l.DiscRadius, "art_radius": l.ArtRadius,
		"hole_radius": l.HoleRadius, "title_y": l.TitleY, "artist_y": l.ArtistY,
		"lyric_y": l.LyricY, "progress_y": l.ProgressY, "time_y": l.TimeY,
		"controls_y": l.ControlsY, "progress_inset": l.ProgressInset,
		"progress_height": l.ProgressHeight, "thumb_radius": l.ThumbRadius,
		"control_size": l.ControlSize, "control_gap": l.ControlGap,
		"title_size": l.TitleSize, "artist_size": l.ArtistSize,
		"lyric_size": l.LyricSize, "time_size": l.TimeSize,
	}
	for name, v := range fractions {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("layout.%s must be in (0, 1], got %v", name, v))
		}
	}
	if l.Grooves < 0 {
		errs = append(errs, fmt.Errorf("layout.grooves must not be negative"))
	}

	for name, hex := range l.colors() {
		if _, err := ParseColor(hex); err != nil {
			errs = append(errs, fmt.Errorf("layout.%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (l Layout) colors() map[string]string {
	return map[string]string{
		"background_top": l.BackgroundTop, "background_bottom": l.BackgroundBottom,
		"card": l.Card, "disc": l.Disc, "groove": l.Groove, "hole": l.Hole,
		"title": l.Title, "artist": l.Artist, "time": l.Time,
		"track": l.Track, "fill": l.Fill, "controls": l.Controls,
	}
}

// ParseColor parses a "#rrggbb" or "#rgb" hex color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// colorOr parses hex, returning fallback when it is invalid.
func colorOr(hex string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

// palette is the parsed color set of a Layout.
type palette struct {
	bgTop, bgBottom, card, disc, groove, hole color.RGBA
	title, artist, time, track, fill, controls color.RGBA
}

func (l Layout) palette() palette {
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	return palette{
		bgTop:    colorOr(l.BackgroundTop, black),
		bgBottom: colorOr(l.BackgroundBottom, black),
		card:     colorOr(l.Card, black),
		disc:     colorOr(l.Disc, black),
		groove:   colorOr(l.Groove, black),
		hole:     colorOr(l.Hole, black),
		title:    colorOr(l.Title, white),
		artist:   colorOr(l.Artist, white),
		time:     colorOr(l.Time, white),
		track:    colorOr(l.Track, black),
		fill:     colorOr(l.Fill, white),
		controls: colorOr(l.Controls, white),
	}
}
