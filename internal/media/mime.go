package media

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MIMEWebM is the least specific recorder type and the final fallback.
const MIMEWebM = "video/webm"

// PreferredMIMETypes is probed in order; the first supported type wins.
var PreferredMIMETypes = []string{
	"video/webm;codecs=vp9,opus",
	"video/webm;codecs=vp8,opus",
	"video/webm;codecs=vp9",
	"video/webm;codecs=vp8",
	MIMEWebM,
}

// ErrUnsupported is returned when the recorder cannot produce WebM at all.
var ErrUnsupported = errors.New("webm recording is not supported")

// codecEncoders maps MIME codec names to ffmpeg encoders, best first.
var codecEncoders = map[string][]string{
	"vp9":    {"libvpx-vp9"},
	"vp8":    {"libvpx"},
	"opus":   {"libopus", "opus"},
	"vorbis": {"libvorbis", "vorbis"},
}

var (
	videoCodecs = []string{"vp9", "vp8"}
	audioCodecs = []string{"opus", "vorbis"}
)

// Encoding is the ffmpeg encoder pair chosen for a MIME type.
type Encoding struct {
	MIMEType     string
	VideoEncoder string
	AudioEncoder string
}

// ParseMIMEType splits "video/webm;codecs=vp9,opus" into its media type and
// codec list. Codec names are lower-cased.
func ParseMIMEType(mime string) (string, []string, error) {
	base, params, _ := strings.Cut(mime, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		return "", nil, fmt.Errorf("empty MIME type")
	}

	var codecs []string
	params = strings.TrimSpace(params)
	if params != "" {
		key, value, ok := strings.Cut(params, "=")
		if !ok || strings.ToLower(strings.TrimSpace(key)) != "codecs" {
			return "", nil, fmt.Errorf("unsupported MIME parameter %q", params)
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		for _, c := range strings.Split(value, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				codecs = append(codecs, c)
			}
		}
	}
	return base, codecs, nil
}

// Capabilities describes what the local ffmpeg can encode and mux.
type Capabilities struct {
	FFmpegPath string
	Version    string
	Encoders   map[string]bool
	Muxers     map[string]bool
}

// IsTypeSupported reports whether mime can be recorded.
func (c Capabilities) IsTypeSupported(mime string) bool {
	_, err := c.EncodingFor(mime)
	return err == nil
}

// EncodingFor resolves mime to ffmpeg encoders. Codecs missing from the MIME
// type are filled in with the best available choice.
func (c Capabilities) EncodingFor(mime string) (Encoding, error) {
	base, codecs, err := ParseMIMEType(mime)
	if err != nil {
		return Encoding{}, err
	}
	if base != MIMEWebM {
		return Encoding{}, fmt.Errorf("%w: container %s", ErrUnsupported, base)
	}
	if !c.Muxers["webm"] {
		return Encoding{}, fmt.Errorf("%w: ffmpeg has no webm muxer", ErrUnsupported)
	}

	enc := Encoding{MIMEType: mime}
	for _, codec := range codecs {
		encoder, ok := c.encoderFor(codec)
		if !ok {
			return Encoding{}, fmt.Errorf("%w: codec %s", ErrUnsupported, codec)
		}
		switch {
		case slices.Contains(videoCodecs, codec) && enc.VideoEncoder == "":
			enc.VideoEncoder = encoder
		case slices.Contains(audioCodecs, codec) && enc.AudioEncoder == "":
			enc.AudioEncoder = encoder
		default:
			return Encoding{}, fmt.Errorf("%w: codec list %v", ErrUnsupported, codecs)
		}
	}

	if enc.VideoEncoder == "" {
		enc.VideoEncoder, _ = c.firstEncoder(videoCodecs)
	}
	if enc.AudioEncoder == "" {
		enc.AudioEncoder, _ = c.firstEncoder(audioCodecs)
	}
	if enc.VideoEncoder == "" {
		return Encoding{}, fmt.Errorf("%w: no VP8/VP9 encoder", ErrUnsupported)
	}
	if enc.AudioEncoder == "" {
		return Encoding{}, fmt.Errorf("%w: no Opus/Vorbis encoder", ErrUnsupported)
	}
	return enc, nil
}

// SelectMIMEType returns the encoding of the first supported type in
// PreferredMIMETypes.
func SelectMIMEType(c Capabilities) (Encoding, error) {
	var lastErr error
	for _, mime := range PreferredMIMETypes {
		enc, err := c.EncodingFor(mime)
		if err == nil {
			return enc, nil
		}
		lastErr = err
	}
	return Encoding{}, lastErr
}

func (c Capabilities) encoderFor(codec string) (string, bool) {
	for _, name := range codecEncoders[codec] {
		if c.Encoders[name] {
			return name, true
		}
	}
	return "", false
}

func (c Capabilities) firstEncoder(codecs []string) (string, bool) {
	for _, codec := range codecs {
		if e, ok := c.encoderFor(codec); ok {
			return e, true
		}
	}
	return "", false
}
