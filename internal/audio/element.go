package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/handiism/vinyl-player/internal/model"
)

// ErrClosed is returned by Play after Close.
var ErrClosed = errors.New("audio element closed")

// maxCatchUp bounds how many chunks the pump writes in one tick after a
// stall, so a blocked destination cannot trigger an unbounded burst.
const maxCatchUp = 50

// Element is a decoded song that plays in real time into a destination.
//
// Element is used to:
//   - Expose the playback clock (CurrentTime, Duration, Paused)
//   - Route paced 48 kHz stereo s16le PCM to a writer, such as a recorder's
//     audio input
//   - Signal the end of the song and decoding errors
//
// Until Route is called the audio is discarded, but the clock still
// advances while playing. After the song ends the element keeps producing
// silence so the destination stream never starves.
//
// Example:
//
//	el, err := audio.Load(ctx, asset, 10*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer el.Close()
//	el.Route(recorder.AudioInput())
//	if err := el.Play(); err != nil {
//	    return err
//	}
//	<-el.Ended()
type Element struct {
	name     string
	source   beep.StreamSeekCloser
	duration float64

	mu      sync.Mutex
	ctrl    *beep.Ctrl
	sink    io.Writer
	played  int
	started bool
	ended   bool
	closed  bool

	endedCh   chan struct{}
	endOnce   sync.Once
	errCh     chan error
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Open decodes the asset and returns a paused element.
func Open(a model.Asset) (*Element, error) {
	s, format, err := Decode(a)
	if err != nil {
		return nil, err
	}
	return &Element{
		name:     a.Name,
		source:   s,
		duration: format.SampleRate.D(s.Len()).Seconds(),
		ctrl:     &beep.Ctrl{Streamer: resampled(s, format), Paused: true},
		sink:     io.Discard,
		endedCh:  make(chan struct{}),
		errCh:    make(chan error, 1),
		stop:     make(chan struct{}),
	}, nil
}

// Load opens the asset, giving up after timeout. An element that finishes
// decoding after the deadline is closed in the background.
func Load(ctx context.Context, a model.Asset, timeout time.Duration) (*Element, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		el  *Element
		err error
	}
	ch := make(chan result, 1)
	go func() {
		el, err := Open(a)
		ch <- result{el, err}
	}()

	select {
	case r := <-ch:
		return r.el, r.err
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.el != nil {
				r.el.Close()
			}
		}()
		return nil, fmt.Errorf("load audio %s: %w", a.Name, ctx.Err())
	}
}

// Name returns the asset name the element was opened from.
func (e *Element) Name() string { return e.name }

// Duration returns the song length in seconds.
func (e *Element) Duration() float64 { return e.duration }

// CurrentTime returns the seconds of audio played so far.
func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.played) / SampleRate
}

// Paused reports whether playback is paused, not yet started, or ended.
func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.started || e.ctrl.Paused
}

// Ended is closed when the song has played to its end.
func (e *Element) Ended() <-chan struct{} { return e.endedCh }

// Errors delivers the first decoding or routing error.
func (e *Element) Errors() <-chan error { return e.errCh }

// Route sends the element's output to dst instead of discarding it.
func (e *Element) Route(dst io.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dst == nil {
		dst = io.Discard
	}
	e.sink = dst
}

// Play starts or resumes playback.
func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.ended {
		return nil
	}
	e.ctrl.Paused = false
	if !e.started {
		e.started = true
		e.wg.Add(1)
		go e.pump()
	}
	return nil
}

// Pause pauses playback. The destination receives silence while paused.
func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctrl.Paused = true
}

// Close stops the pump and releases the decoder. It is safe to call more
// than once.
func (e *Element) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.stop)
		e.wg.Wait()
		err = e.source.Close()
	})
	return err
}

// pump writes one chunk per FrameDuration, catching up on late ticks.
func (e *Element) pump() {
	defer e.wg.Done()

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	buf := make([][2]float64, FrameSize)
	out := make([]byte, FrameBytes)
	start := time.Now()
	sent := 0

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
		}

		due := int(time.Since(start)/FrameDuration) + 1
		if due-sent > maxCatchUp {
			sent = due - maxCatchUp
		}
		for ; sent < due; sent++ {
			if err := e.step(buf, out); err != nil {
				select {
				case e.errCh <- err:
				default:
				}
				return
			}
		}
	}
}

// step produces one chunk and writes it to the sink.
func (e *Element) step(buf [][2]float64, out []byte) error {
	e.mu.Lock()
	playing := !e.ctrl.Paused && !e.ended
	n := len(buf)
	ok := true
	if playing {
		n, ok = e.ctrl.Stream(buf)
		e.played += n
	}
	for i := range buf {
		if i >= n || !playing {
			buf[i] = [2]float64{}
		}
	}
	streamErr := e.source.Err()
	finished := playing && (!ok || n < len(buf))
	if finished {
		e.ended = true
		e.ctrl.Paused = true
	}
	sink := e.sink
	e.mu.Unlock()

	if streamErr != nil {
		return fmt.Errorf("decode %s: %w", e.name, streamErr)
	}
	if finished {
		e.endOnce.Do(func() { close(e.endedCh) })
	}

	encodeS16LE(buf, out)
	if _, err := sink.Write(out); err != nil {
		return fmt.Errorf("route audio: %w", err)
	}
	return nil
}
