package media

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// FrameSource is a drawing surface that can be sampled.
type FrameSource interface {
	FrameSize() int
	CopyFrame(dst []byte) int
}

// CanvasStream samples a FrameSource at a fixed rate and writes each frame
// to a destination. Late ticks are caught up, up to one second, so the
// written frame count tracks wall-clock time.
type CanvasStream struct {
	src FrameSource
	fps int

	frames   atomic.Int64
	errCh    chan error
	stop     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	wg       sync.WaitGroup
}

// NewCanvasStream creates a stream capturing src at fps frames per second.
func NewCanvasStream(src FrameSource, fps int) *CanvasStream {
	if fps <= 0 {
		fps = 30
	}
	return &CanvasStream{
		src:   src,
		fps:   fps,
		errCh: make(chan error, 1),
		stop:  make(chan struct{}),
	}
}

// FrameRate returns the capture rate.
func (s *CanvasStream) FrameRate() int { return s.fps }

// Frames returns the number of frames written so far.
func (s *CanvasStream) Frames() int64 { return s.frames.Load() }

// Errors delivers the first write error.
func (s *CanvasStream) Errors() <-chan error { return s.errCh }

// Start begins writing frames to dst. Subsequent calls do nothing.
func (s *CanvasStream) Start(dst io.Writer) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.run(dst)
}

// Stop signals the writer goroutine to end. It does not wait; a write
// blocked on the destination returns once the destination is closed. It is
// safe to call more than once.
func (s *CanvasStream) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Wait blocks until the writer goroutine has exited.
func (s *CanvasStream) Wait() {
	s.wg.Wait()
}

func (s *CanvasStream) run(dst io.Writer) {
	defer s.wg.Done()

	interval := time.Second / time.Duration(s.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frame := make([]byte, s.src.FrameSize())
	start := time.Now()
	var sent int64

	// The first frame goes out immediately.
	if !s.write(dst, frame) {
		return
	}
	sent++

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		due := int64(time.Since(start)/interval) + 1
		if due-sent > int64(s.fps) {
			sent = due - int64(s.fps)
		}
		for ; sent < due; sent++ {
			select {
			case <-s.stop:
				return
			default:
			}
			if !s.write(dst, frame) {
				return
			}
		}
	}
}

func (s *CanvasStream) write(dst io.Writer, frame []byte) bool {
	s.src.CopyFrame(frame)
	if _, err := dst.Write(frame); err != nil {
		select {
		case s.errCh <- fmt.Errorf("write frame %d: %w", s.frames.Load()+1, err):
		default:
		}
		return false
	}
	s.frames.Add(1)
	return true
}
