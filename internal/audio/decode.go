package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/handiism/vinyl-player/internal/model"
)

const (
	// SampleRate is the rate every stream is resampled to before routing.
	SampleRate = 48000

	// Channels is the number of interleaved output channels.
	Channels = 2

	// FrameDuration is the length of one routed PCM chunk.
	FrameDuration = 20 * time.Millisecond

	// FrameSize is the number of samples per channel in one chunk.
	FrameSize = SampleRate / 50

	// FrameBytes is the size of one s16le chunk.
	FrameBytes = FrameSize * Channels * 2
)

// ErrUnsupportedFormat is returned when an asset is not MP3, WAV, FLAC or
// Ogg Vorbis.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrEmptyAudio is returned for streams with no samples.
var ErrEmptyAudio = errors.New("audio has no samples")

// Format identifies a container/codec the decoder understands.
type Format string

const (
	FormatMP3    Format = "mp3"
	FormatWAV    Format = "wav"
	FormatFLAC   Format = "flac"
	FormatVorbis Format = "vorbis"
)

// DetectFormat guesses the format from the file extension, then from the
// leading magic bytes.
func DetectFormat(a model.Asset) (Format, error) {
	switch a.Ext() {
	case ".mp3":
		return FormatMP3, nil
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".flac":
		return FormatFLAC, nil
	case ".ogg", ".oga":
		return FormatVorbis, nil
	}

	d := a.Data
	switch {
	case bytes.HasPrefix(d, []byte("ID3")), len(d) > 1 && d[0] == 0xFF && d[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	case bytes.HasPrefix(d, []byte("RIFF")):
		return FormatWAV, nil
	case bytes.HasPrefix(d, []byte("fLaC")):
		return FormatFLAC, nil
	case bytes.HasPrefix(d, []byte("OggS")):
		return FormatVorbis, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, a.Name)
}

// readSeekNopCloser lets in-memory data satisfy the decoders' ReadCloser
// parameters while keeping Seek available.
type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// Decode opens a decoder for the asset.
func Decode(a model.Asset) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := DetectFormat(a)
	if err != nil {
		return nil, beep.Format{}, err
	}

	r := readSeekNopCloser{bytes.NewReader(a.Data)}
	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch f {
	case FormatMP3:
		s, format, err = mp3.Decode(r)
	case FormatWAV:
		s, format, err = wav.Decode(r)
	case FormatFLAC:
		s, format, err = flac.Decode(r)
	case FormatVorbis:
		s, format, err = vorbis.Decode(r)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s as %s: %w", a.Name, f, err)
	}
	if s.Len() <= 0 {
		s.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrEmptyAudio, a.Name)
	}
	return s, format, nil
}

// resampled returns s converted to SampleRate.
func resampled(s beep.Streamer, format beep.Format) beep.Streamer {
	if format.SampleRate == SampleRate {
		return s
	}
	return beep.Resample(4, format.SampleRate, SampleRate, s)
}

// encodeS16LE writes samples as interleaved little-endian int16 into out,
// which must hold len(samples)*4 bytes.
func encodeS16LE(samples [][2]float64, out []byte) {
	for i, s := range samples {
		for ch := 0; ch < 2; ch++ {
			v := s[ch]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			n := int16(v * 32767)
			out[i*4+ch*2] = byte(n)
			out[i*4+ch*2+1] = byte(uint16(n) >> 8)
		}
	}
}
