package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/handiism/vinyl-player/internal/model"
)

var speakerInit struct {
	once sync.Once
	err  error
}

func initSpeaker() error {
	speakerInit.once.Do(func() {
		sr := beep.SampleRate(SampleRate)
		speakerInit.err = speaker.Init(sr, sr.N(100*time.Millisecond))
	})
	return speakerInit.err
}

// SpeakerOutput plays the on-screen player's song through the sound card.
//
// One track is loaded at a time. Pausing flips a beep.Ctrl under the
// speaker lock; the speaker itself is initialized on first Play.
type SpeakerOutput struct {
	mu     sync.Mutex
	source beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	queued bool
}

// NewSpeakerOutput creates an idle output.
func NewSpeakerOutput() *SpeakerOutput {
	return &SpeakerOutput{}
}

// Load decodes a and replaces the current track, leaving it paused.
func (o *SpeakerOutput) Load(a model.Asset) error {
	s, format, err := Decode(a)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLocked()
	o.source = s
	o.format = format
	o.ctrl = &beep.Ctrl{Streamer: resampled(s, format), Paused: true}
	o.queued = false
	return nil
}

// Play starts or resumes the loaded track.
func (o *SpeakerOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctrl == nil {
		return fmt.Errorf("no track loaded")
	}
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	if !o.queued {
		o.queued = true
		ctrl := o.ctrl
		speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
			// Runs with the speaker lock held.
			ctrl.Paused = true
		})))
	}
	speaker.Lock()
	o.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause pauses the loaded track.
func (o *SpeakerOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctrl == nil || !o.queued {
		return
	}
	speaker.Lock()
	o.ctrl.Paused = true
	speaker.Unlock()
}

// Playing reports whether audio is currently audible.
func (o *SpeakerOutput) Playing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctrl == nil || !o.queued {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return !o.ctrl.Paused
}

// Position returns the playback position in seconds.
func (o *SpeakerOutput) Position() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.source == nil {
		return 0
	}
	if o.queued {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return o.format.SampleRate.D(o.source.Position()).Seconds()
}

// Duration returns the loaded track length in seconds.
func (o *SpeakerOutput) Duration() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.source == nil {
		return 0
	}
	return o.format.SampleRate.D(o.source.Len()).Seconds()
}

// Close stops and releases the current track.
func (o *SpeakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLocked()
	return nil
}

func (o *SpeakerOutput) closeLocked() {
	if o.source == nil {
		return
	}
	if o.queued {
		speaker.Clear()
	}
	o.source.Close()
	o.source = nil
	o.ctrl = nil
	o.queued = false
}
