package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

const ellipsis = "…"

// typeface caches faces of one font by pixel size.
type typeface struct {
	font  *sfnt.Font
	faces map[int]font.Face
}

func parseTypeface(ttf []byte) (*typeface, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &typeface{font: f, faces: make(map[int]font.Face)}, nil
}

func (t *typeface) face(px int) font.Face {
	if px < 1 {
		px = 1
	}
	if f, ok := t.faces[px]; ok {
		return f
	}
	f, err := opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		f = nil
	}
	t.faces[px] = f
	return f
}

func (t *typeface) close() {
	for _, f := range t.faces {
		if f != nil {
			f.Close()
		}
	}
	t.faces = make(map[int]font.Face)
}

type fonts struct {
	regular *typeface
	bold    *typeface
}

func loadFonts() (*fonts, error) {
	regular, err := parseTypeface(goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := parseTypeface(gobold.TTF)
	if err != nil {
		return nil, err
	}
	return &fonts{regular: regular, bold: bold}, nil
}

// fitText shortens s with an ellipsis until it fits within maxWidth pixels.
func fitText(face font.Face, s string, maxWidth int) string {
	limit := fixed.I(maxWidth)
	if font.MeasureString(face, s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if font.MeasureString(face, candidate) <= limit {
			return candidate
		}
	}
	return ""
}

// drawCentered draws s horizontally centered on cx with its baseline at y.
func drawCentered(dst *image.RGBA, face font.Face, s string, cx, y float64, maxWidth int, c color.Color) {
	if face == nil || s == "" {
		return
	}
	s = fitText(face, s, maxWidth)
	w := font.MeasureString(face, s)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(cx*64) - w/2, Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(s)
}

// drawAligned draws s with its left (alignRight false) or right edge at x.
func drawAligned(dst *image.RGBA, face font.Face, s string, x, y float64, alignRight bool, c color.Color) {
	if face == nil || s == "" {
		return
	}
	dot := fixed.Int26_6(x * 64)
	if alignRight {
		dot -= font.MeasureString(face, s)
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: dot, Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(s)
}

func pixelSize(fraction, cardWidth float64) int {
	return int(math.Round(fraction * cardWidth))
}
