package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/vinyl-player/internal/audio"
	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/media"
	"github.com/handiism/vinyl-player/internal/model"
	"github.com/handiism/vinyl-player/internal/render"
)

const playRetryDelay = 100 * time.Millisecond

// Result is a finished export.
type Result struct {
	SessionID string
	Title     string

	// Video is the complete WebM file.
	Video []byte

	// FileName is the sanitized name, Path the written file. Path is empty
	// when no output directory is configured.
	FileName string
	Path     string

	MIMEType string
	Size     image.Point
	Elapsed  time.Duration

	// Frames counts the frames sent to the recorder. Rendered counts the
	// scene redraws and FrameErrors the redraws that failed and were skipped.
	Frames      int64
	Rendered    int64
	FrameErrors int64
}

// Failure is a failed export.
type Failure struct {
	SessionID string
	Title     string
	Err       error
	Elapsed   time.Duration
}

func (f Failure) Error() string { return f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// Session is one capture from asset loading to the finished video. It owns
// the canvas, audio element, recorder and timers of that capture and
// releases all of them through a single cleanup routine.
type Session struct {
	id      string
	req     model.ExportRequest
	caps    media.Capabilities
	enc     media.Encoding
	opts    Options
	backend Backend
	images  *ioutils.ImageService
	logger  *slog.Logger
	emit    func(ProgressEvent)

	mu     sync.Mutex
	state  State
	chunks [][]byte
	sealed bool

	rendered    atomic.Int64
	frameErrors atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once

	reached     chan struct{}
	reachedOnce sync.Once
	timedOut    chan struct{}
	timeoutOnce sync.Once

	// Owned resources, nil once released.
	canvas   *render.Canvas
	renderer *render.Renderer
	art      image.Image
	audio    AudioSource
	recorder Recorder
	stream   *media.CanvasStream
	reporter *ProgressReporter
	rotation *render.RotationClock

	renderStop chan struct{}
	renderWG   sync.WaitGroup
}

func newSession(id string, req model.ExportRequest, caps media.Capabilities, enc media.Encoding,
	opts Options, backend Backend, images *ioutils.ImageService, emit func(ProgressEvent)) *Session {
	if emit == nil {
		emit = func(ProgressEvent) {}
	}
	return &Session{
		id:       id,
		req:      req,
		caps:     caps,
		enc:      enc,
		opts:     opts,
		backend:  backend,
		images:   images,
		logger:   opts.Logger.With("session", id),
		emit:     emit,
		state:    StateIdle,
		stop:     make(chan struct{}),
		reached:  make(chan struct{}),
		timedOut: make(chan struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stop ends the recording early and finalizes what was captured. It is safe
// to call more than once and in any state.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Run executes the session and returns the finished video or the error that
// ended it. Every resource is released before Run returns.
func (s *Session) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	s.setState(StateInitializing)
	s.progress(0, "Preparing export", LevelInfo)

	size := CanvasSize(s.opts.Size, s.opts.DefaultSize, s.opts.MinSize)
	s.logger.Info("export starting",
		"request", s.req.String(),
		"mime", s.enc.MIMEType,
		"width", size.X,
		"height", size.Y,
	)

	if err := s.loadAssets(ctx, size); err != nil {
		return Result{}, s.fail(err)
	}
	if err := s.prepare(size); err != nil {
		return Result{}, s.fail(err)
	}
	if err := s.record(ctx); err != nil {
		return Result{}, s.fail(err)
	}
	if err := s.await(); err != nil {
		return Result{}, s.fail(err)
	}
	return s.finalize(ctx, started, size)
}

// loadAssets loads album art and audio concurrently. Both are awaited with
// the asset timeout.
func (s *Session) loadAssets(ctx context.Context, size image.Point) error {
	s.progress(0, "Loading assets", LevelVerbose)

	g, gctx := errgroup.WithContext(ctx)

	var art *image.RGBA
	if s.req.HasArtwork() {
		g.Go(func() error {
			img, err := s.loadArt(gctx, s.opts.Layout.LabelDiameter(size.X))
			if err != nil {
				return fmt.Errorf("%w: album art %s: %w", ErrAsset, s.req.AlbumArt.Name, err)
			}
			art = img
			return nil
		})
	}

	var el AudioSource
	g.Go(func() error {
		a, err := s.backend.LoadAudio(gctx, s.req.Audio, s.opts.AssetTimeout)
		if err != nil {
			return fmt.Errorf("%w: audio %s: %w", ErrAsset, s.req.Audio.Name, err)
		}
		el = a
		return nil
	})

	err := g.Wait()
	if el != nil {
		s.audio = el
	}
	if err != nil {
		return err
	}
	if art != nil {
		s.art = art
	}
	return nil
}

func (s *Session) loadArt(ctx context.Context, size int) (*image.RGBA, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.AssetTimeout)
	defer cancel()

	type result struct {
		img *image.RGBA
		err error
	}
	ch := make(chan result, 1)
	go func() {
		img, err := s.images.LoadArt(ctx, s.req.AlbumArt.Data, size)
		ch <- result{img, err}
	}()

	select {
	case r := <-ch:
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// prepare allocates the canvas, renderer, recorder and capture stream.
func (s *Session) prepare(size image.Point) error {
	renderer, err := render.NewRenderer(s.opts.Layout)
	if err != nil {
		return fmt.Errorf("%w: renderer: %w", ErrRecording, err)
	}
	s.renderer = renderer
	s.canvas = render.NewCanvas(size.X, size.Y)

	rec, err := s.backend.NewRecorder(media.RecorderOptions{
		FFmpegPath:   s.caps.FFmpegPath,
		Encoding:     s.enc,
		Width:        size.X,
		Height:       size.Y,
		FrameRate:    s.opts.CaptureFPS,
		SampleRate:   audio.SampleRate,
		Channels:     audio.Channels,
		VideoBitrate: s.opts.VideoBitrate,
		AudioBitrate: s.opts.AudioBitrate,
		Logger:       s.logger,
	})
	if err != nil {
		return fmt.Errorf("%w: create recorder: %w", ErrRecording, err)
	}
	s.recorder = rec
	s.stream = media.NewCanvasStream(s.canvas, s.opts.CaptureFPS)
	s.reporter = NewProgressReporter(s.opts.ProgressInterval, s.opts.ExportTimeout)
	return nil
}

// record starts the recorder, then audio playback, then the render loop and
// progress polling.
func (s *Session) record(ctx context.Context) error {
	s.progress(0, "Starting recorder", LevelVerbose)

	s.recorder.OnData(s.appendChunk)
	s.audio.Route(s.recorder.AudioInput())

	s.rotation = render.NewRotationClock(s.opts.RotationSpeed)
	s.renderFrame()

	if err := s.recorder.Start(ctx); err != nil {
		return fmt.Errorf("%w: start recorder: %w", ErrRecording, err)
	}
	s.stream.Start(s.recorder.VideoInput())

	if err := s.play(); err != nil {
		return err
	}

	s.setState(StateRecording)
	s.progress(0, "Recording", LevelInfo)
	s.startRenderLoop()
	s.reporter.Start(s.audio,
		func(percent float64, message string) {
			s.progress(percent, message, LevelVerbose)
		},
		func() { s.reachedOnce.Do(func() { close(s.reached) }) },
		func() { s.timeoutOnce.Do(func() { close(s.timedOut) }) },
	)
	return nil
}

// play starts audio playback, retrying once.
func (s *Session) play() error {
	err := s.audio.Play()
	if err == nil {
		return nil
	}
	s.logger.Warn("audio play failed, retrying", "error", err)
	time.Sleep(playRetryDelay)
	if err := s.audio.Play(); err != nil {
		return fmt.Errorf("%w: audio play rejected: %w", ErrRecording, err)
	}
	return nil
}

// await blocks until the recording should end. A nil error means finalize.
func (s *Session) await() error {
	select {
	case <-s.reached:
		s.logger.Debug("audio duration reached")
		return nil
	case <-s.stop:
		s.logger.Info("export stopped by request")
		return nil
	case <-s.timedOut:
		return fmt.Errorf("%w after %s", ErrTimeout, s.opts.ExportTimeout)
	case err := <-s.audio.Errors():
		return fmt.Errorf("%w: audio: %w", ErrRecording, err)
	case err := <-s.stream.Errors():
		return fmt.Errorf("%w: capture stream: %w", ErrRecording, err)
	case <-s.recorder.Done():
		err := s.recorder.Err()
		if err == nil {
			err = errors.New("recorder exited early")
		}
		return fmt.Errorf("%w: %w", ErrRecording, err)
	}
}

// finalize stops capture, waits for the recorder to flush and assembles the
// chunks into one video.
func (s *Session) finalize(ctx context.Context, started time.Time, size image.Point) (Result, error) {
	s.reporter.Stop()
	s.setState(StateFinalizing)
	s.progress(100, "Finalizing video", LevelInfo)

	frames := s.streamFrames()
	if err := s.release(false); err != nil {
		return Result{}, s.fail(fmt.Errorf("%w: %w", ErrRecording, err))
	}

	video := s.takeChunks()
	if len(video) == 0 {
		return Result{}, s.fail(fmt.Errorf("%w: recorder produced no data", ErrRecording))
	}

	res := Result{
		SessionID: s.id,
		Title:     s.req.Title,
		Video:     video,
		FileName:  s.req.FileName(s.opts.Names),
		MIMEType:  s.enc.MIMEType,
		Size:      size,

		Frames:      frames,
		Rendered:    s.rendered.Load(),
		FrameErrors: s.frameErrors.Load(),
	}
	if s.opts.OutputDir != "" {
		res.Path = filepath.Join(s.opts.OutputDir, res.FileName)
		if err := ioutils.WriteFile(ctx, res.Path, video); err != nil {
			return Result{}, s.fail(fmt.Errorf("save video: %w", err))
		}
	}
	res.Elapsed = time.Since(started)

	s.setState(StateIdle)
	s.logger.Info("export complete",
		"file", res.FileName,
		"bytes", len(video),
		"frames", frames,
		"rendered", res.Rendered,
		"frame_errors", res.FrameErrors,
		"elapsed", res.Elapsed.Round(time.Millisecond),
	)
	return res, nil
}

// fail releases everything without finalizing the recording and returns err.
func (s *Session) fail(err error) error {
	s.setState(StateFailed)
	s.release(true)
	s.takeChunks()
	s.logger.Warn("export failed", "error", err)
	s.setState(StateIdle)
	return err
}

// release is the single cleanup routine for both outcomes. It stops timers
// and the render loop, pauses audio and stops the recorder, then waits for
// the writers and the recorder to finish. It returns the recorder error when
// finalizing. Released resources are cleared, so calling it again does
// nothing.
func (s *Session) release(abort bool) error {
	if s.reporter != nil {
		s.reporter.Stop()
		s.reporter = nil
	}
	s.stopRenderLoop()
	if s.stream != nil {
		s.stream.Stop()
	}
	if s.audio != nil {
		s.audio.Pause()
	}

	// Stopping the recorder closes its inputs, which unblocks writers.
	if s.recorder != nil {
		if abort {
			s.recorder.Abort()
		} else {
			s.recorder.Stop()
		}
	}
	if s.stream != nil {
		s.stream.Wait()
		s.stream = nil
	}
	if s.audio != nil {
		if err := s.audio.Close(); err != nil {
			s.logger.Debug("close audio", "error", err)
		}
		s.audio = nil
	}

	var recErr error
	if s.recorder != nil {
		select {
		case <-s.recorder.Done():
		case <-time.After(s.opts.FinalizeTimeout):
			s.recorder.Abort()
			<-s.recorder.Done()
			recErr = fmt.Errorf("recorder did not finish within %s", s.opts.FinalizeTimeout)
		}
		if recErr == nil && !abort {
			recErr = s.recorder.Err()
		}
		s.recorder = nil
	}

	if s.renderer != nil {
		s.renderer.Close()
		s.renderer = nil
	}
	s.canvas = nil
	s.art = nil
	return recErr
}

func (s *Session) startRenderLoop() {
	s.renderStop = make(chan struct{})
	interval := time.Second / time.Duration(s.opts.RenderFPS)
	s.renderWG.Add(1)
	go func() {
		defer s.renderWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.renderStop:
				return
			case <-ticker.C:
				s.renderFrame()
			}
		}
	}()
}

func (s *Session) stopRenderLoop() {
	if s.renderStop == nil {
		return
	}
	close(s.renderStop)
	s.renderWG.Wait()
	s.renderStop = nil
}

// renderFrame draws one frame. A failing frame is counted and skipped; the
// loop keeps going.
func (s *Session) renderFrame() {
	defer func() {
		if r := recover(); r != nil {
			if s.frameErrors.Add(1) == 1 {
				s.logger.Warn("frame render failed", "panic", r)
			}
		}
	}()
	s.renderer.Render(s.canvas, render.Scene{
		Rotation:    s.rotation.Angle(),
		Art:         s.art,
		Playback:    s.audio,
		Lyrics:      s.req.Lyrics,
		LyricsColor: s.req.LyricsColor,
		Title:       s.req.Title,
		Artist:      s.req.Artist,
	})
	s.rendered.Add(1)
}

func (s *Session) streamFrames() int64 {
	if s.stream == nil {
		return 0
	}
	return s.stream.Frames()
}

func (s *Session) appendChunk(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return
	}
	s.chunks = append(s.chunks, chunk)
}

// takeChunks joins and discards the recorded chunks. Later chunks are
// dropped.
func (s *Session) takeChunks() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
	video := bytes.Join(s.chunks, nil)
	s.chunks = nil
	return video
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()
	if prev != state {
		s.logger.Debug("session state", "from", prev.String(), "to", state.String())
	}
}

func (s *Session) progress(percent float64, message string, level ProgressLevel) {
	s.emit(ProgressEvent{Percent: percent, Message: message, Level: level, State: s.State()})
}
