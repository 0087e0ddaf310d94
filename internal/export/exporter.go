package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/logging"
	"github.com/handiism/vinyl-player/internal/media"
	"github.com/handiism/vinyl-player/internal/model"
)

// HostPlayer is the on-screen player an export runs beside. It is paused
// for the duration of an export and resumed afterwards if it was playing.
type HostPlayer interface {
	Playing() bool
	Pause()
	Resume() error
	SetControlsEnabled(enabled bool)
}

// Callbacks receive export events. Any field may be nil. Callbacks run on
// exporter goroutines.
type Callbacks struct {
	OnProgress func(ProgressEvent)
	OnComplete func(Result)
	OnError    func(Failure)
}

// Exporter runs one export at a time.
//
// Start is fire-and-forget: it returns once the export has begun and the
// outcome arrives later through exactly one of OnComplete or OnError. Start
// itself fails only when the export could not begin, either because one is
// already running or because recording is unsupported.
//
// Example:
//
//	exp := export.NewExporter(opts, export.FFmpegBackend(""), player, export.Callbacks{
//	    OnProgress: func(e export.ProgressEvent) { fmt.Printf("%3.0f%% %s\n", e.Percent, e.Message) },
//	    OnComplete: func(r export.Result) { fmt.Println("saved", r.Path) },
//	    OnError:    func(f export.Failure) { fmt.Println("failed:", f.Err) },
//	})
//	if _, err := exp.Start(ctx, req); err != nil {
//	    return err
//	}
//	exp.Wait()
type Exporter struct {
	opts    Options
	backend Backend
	host    HostPlayer
	cb      Callbacks
	logger  *slog.Logger
	images  *ioutils.ImageService

	exporting atomic.Bool

	mu      sync.Mutex
	session *Session
	done    chan struct{}
	caps    *media.Capabilities
	sampler *logging.ProgressSampler[State]
}

// NewExporter creates an exporter. A nil host means no player needs pausing.
func NewExporter(opts Options, backend Backend, host HostPlayer, cb Callbacks) *Exporter {
	opts = opts.withDefaults()
	if host == nil {
		host = noHost{}
	}
	return &Exporter{
		opts:    opts,
		backend: backend,
		host:    host,
		cb:      cb,
		logger:  opts.Logger.With("component", "exporter"),
		images:  ioutils.NewImageService(),
		sampler: logging.NewProgressSampler[State](5),
	}
}

// Exporting reports whether an export is running.
func (e *Exporter) Exporting() bool {
	return e.exporting.Load()
}

// State returns the lifecycle stage of the running session, or StateIdle.
func (e *Exporter) State() State {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s == nil {
		return StateIdle
	}
	return s.State()
}

// Capabilities probes the recorder once and caches a successful result.
func (e *Exporter) Capabilities(ctx context.Context) (media.Capabilities, error) {
	e.mu.Lock()
	cached := e.caps
	e.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}
	if err := e.backend.validate(); err != nil {
		return media.Capabilities{}, err
	}

	caps, err := e.backend.Capabilities(ctx)
	if err != nil {
		return media.Capabilities{}, err
	}
	e.mu.Lock()
	e.caps = &caps
	e.mu.Unlock()
	return caps, nil
}

// Start begins exporting req and returns the session id.
//
// It returns ErrExportInProgress if an export is running and an error
// wrapping ErrUnsupported if WebM cannot be recorded; in both cases nothing
// has been allocated and no callback fires.
func (e *Exporter) Start(ctx context.Context, req model.ExportRequest) (string, error) {
	if !e.exporting.CompareAndSwap(false, true) {
		return "", ErrExportInProgress
	}

	caps, enc, err := e.encoding(ctx)
	if err != nil {
		e.exporting.Store(false)
		return "", err
	}
	if req.Audio.Empty() {
		e.exporting.Store(false)
		return "", fmt.Errorf("%w: %w", ErrAsset, model.ErrNoAudio)
	}

	id := uuid.NewString()
	s := newSession(id, req, caps, enc, e.opts, e.backend, e.images, e.progress)

	wasPlaying := e.host.Playing()
	if wasPlaying {
		e.host.Pause()
	}
	e.host.SetControlsEnabled(false)

	done := make(chan struct{})
	e.mu.Lock()
	e.session = s
	e.done = done
	e.sampler.Reset()
	e.mu.Unlock()

	go e.run(context.WithoutCancel(ctx), s, wasPlaying, done)
	return id, nil
}

// Stop ends the running export early; what was recorded so far is
// finalized. Stop does nothing when no export is running.
func (e *Exporter) Stop() {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// Wait blocks until the running export, if any, has finished and its
// callback has returned.
func (e *Exporter) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (e *Exporter) encoding(ctx context.Context) (media.Capabilities, media.Encoding, error) {
	caps, err := e.Capabilities(ctx)
	if err != nil {
		return caps, media.Encoding{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	enc, err := media.SelectMIMEType(caps)
	if err != nil {
		return caps, media.Encoding{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return caps, enc, nil
}

func (e *Exporter) run(ctx context.Context, s *Session, wasPlaying bool, done chan struct{}) {
	defer close(done)
	started := time.Now()

	res, err := e.runSession(ctx, s)

	e.host.SetControlsEnabled(true)
	if wasPlaying {
		if rerr := e.host.Resume(); rerr != nil {
			e.logger.Warn("resume host player", "session", s.ID(), "error", rerr)
		}
	}

	e.mu.Lock()
	if e.session == s {
		e.session = nil
	}
	e.mu.Unlock()
	e.exporting.Store(false)

	if err != nil {
		if e.cb.OnError != nil {
			e.cb.OnError(Failure{SessionID: s.ID(), Title: s.req.Title, Err: err, Elapsed: time.Since(started)})
		}
		return
	}
	if e.cb.OnComplete != nil {
		e.cb.OnComplete(res)
	}
}

// runSession turns a panic inside the session into an error so the guard is
// always reset.
func (e *Exporter) runSession(ctx context.Context, s *Session) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.release(true)
			err = fmt.Errorf("%w: %v", ErrRecording, r)
		}
	}()
	return s.Run(ctx)
}

func (e *Exporter) progress(ev ProgressEvent) {
	e.mu.Lock()
	log := e.sampler.Allow(ev.State, ev.Percent)
	e.mu.Unlock()
	if log {
		e.logger.Debug("export progress", "state", ev.State.String(), "percent", fmt.Sprintf("%.0f", ev.Percent), "message", ev.Message)
	}
	if e.cb.OnProgress != nil {
		e.cb.OnProgress(ev)
	}
}

// IsUserError reports whether err was caused by the request or environment
// rather than a fault in the recording pipeline.
func IsUserError(err error) bool {
	return errors.Is(err, ErrExportInProgress) || errors.Is(err, ErrUnsupported) || errors.Is(err, ErrAsset)
}

type noHost struct{}

func (noHost) Playing() bool           { return false }
func (noHost) Pause()                  {}
func (noHost) Resume() error           { return nil }
func (noHost) SetControlsEnabled(bool) {}
