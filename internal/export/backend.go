package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/handiism/vinyl-player/internal/audio"
	"github.com/handiism/vinyl-player/internal/media"
	"github.com/handiism/vinyl-player/internal/model"
	"github.com/handiism/vinyl-player/internal/render"
)

// Recorder is the media recorder a session drives. *media.Recorder
// implements it.
type Recorder interface {
	MIMEType() string
	OnData(fn func(chunk []byte))
	Start(ctx context.Context) error
	VideoInput() io.Writer
	AudioInput() io.Writer
	Stop()
	Abort()
	Done() <-chan struct{}
	Err() error
}

// AudioSource is the export audio element. *audio.Element implements it.
type AudioSource interface {
	render.Playback
	Route(dst io.Writer)
	Play() error
	Pause()
	Errors() <-chan error
	Close() error
}

// Backend creates the platform resources of a session.
type Backend struct {
	// Capabilities reports what the recorder can produce.
	Capabilities func(ctx context.Context) (media.Capabilities, error)

	// NewRecorder constructs an inactive recorder.
	NewRecorder func(opts media.RecorderOptions) (Recorder, error)

	// LoadAudio decodes the export audio, failing after timeout.
	LoadAudio func(ctx context.Context, a model.Asset, timeout time.Duration) (AudioSource, error)
}

// FFmpegBackend records with the local ffmpeg and decodes audio with
// audio.Load. An empty ffmpegPath searches PATH and the usual install
// locations.
func FFmpegBackend(ffmpegPath string) Backend {
	return Backend{
		Capabilities: func(ctx context.Context) (media.Capabilities, error) {
			path, err := media.LocateFFmpeg(ffmpegPath)
			if err != nil {
				return media.Capabilities{}, err
			}
			return media.Probe(ctx, path, nil)
		},
		NewRecorder: func(opts media.RecorderOptions) (Recorder, error) {
			r, err := media.NewRecorder(opts)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		LoadAudio: func(ctx context.Context, a model.Asset, timeout time.Duration) (AudioSource, error) {
			el, err := audio.Load(ctx, a, timeout)
			if err != nil {
				return nil, err
			}
			return el, nil
		},
	}
}

func (b Backend) validate() error {
	if b.Capabilities == nil || b.NewRecorder == nil || b.LoadAudio == nil {
		return fmt.Errorf("export backend is incomplete")
	}
	return nil
}
