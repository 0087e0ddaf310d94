package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handiism/vinyl-player/internal/lyrics"
	"github.com/handiism/vinyl-player/internal/media"
	"github.com/handiism/vinyl-player/internal/model"
)

// events records the order of calls across fakes.
type events struct {
	mu  sync.Mutex
	log []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = append(e.log, s)
}

func (e *events) index(s string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, v := range e.log {
		if v == s {
			return i
		}
	}
	return -1
}

type fakeRecorder struct {
	ev       *events
	startErr error
	exitErr  error // closes Done with this error right after Start

	mu      sync.Mutex
	onData  func([]byte)
	video   atomic.Int64
	stopped atomic.Int32
	aborted atomic.Int32

	done     chan struct{}
	doneOnce sync.Once
	err      error
}

func newFakeRecorder(ev *events) *fakeRecorder {
	return &fakeRecorder{ev: ev, done: make(chan struct{})}
}

func (r *fakeRecorder) MIMEType() string { return "video/webm;codecs=vp9,opus" }

func (r *fakeRecorder) OnData(fn func([]byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onData = fn
}

func (r *fakeRecorder) Start(ctx context.Context) error {
	r.ev.add("recorder.start")
	if r.startErr != nil {
		return r.startErr
	}
	if r.exitErr != nil {
		go func() {
			time.Sleep(50 * time.Millisecond)
			r.finish(nil, r.exitErr)
		}()
	}
	return nil
}

func (r *fakeRecorder) VideoInput() io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		r.video.Add(1)
		return len(p), nil
	})
}

func (r *fakeRecorder) AudioInput() io.Writer { return io.Discard }

func (r *fakeRecorder) Stop() {
	r.stopped.Add(1)
	r.finish([]byte("webm-data"), nil)
}

func (r *fakeRecorder) Abort() {
	r.aborted.Add(1)
	r.finish(nil, nil)
}

func (r *fakeRecorder) finish(chunk []byte, err error) {
	r.doneOnce.Do(func() {
		r.mu.Lock()
		fn := r.onData
		r.err = err
		r.mu.Unlock()
		if chunk != nil && fn != nil {
			fn(chunk)
		}
		close(r.done)
	})
}

func (r *fakeRecorder) Done() <-chan struct{} { return r.done }

func (r *fakeRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

type fakeAudio struct {
	ev       *events
	duration float64
	playErrs int

	mu      sync.Mutex
	start   time.Time
	playing bool
	closed  atomic.Int32
	errCh   chan error
}

func newFakeAudio(ev *events, duration float64) *fakeAudio {
	return &fakeAudio{ev: ev, duration: duration, errCh: make(chan error, 1)}
}

func (a *fakeAudio) CurrentTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.start.IsZero() {
		return 0
	}
	return time.Since(a.start).Seconds()
}

func (a *fakeAudio) Duration() float64 { return a.duration }

func (a *fakeAudio) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.playing
}

func (a *fakeAudio) Route(io.Writer) {}

func (a *fakeAudio) Play() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.playErrs > 0 {
		a.playErrs--
		return errors.New("play rejected")
	}
	a.ev.add("audio.play")
	a.playing = true
	a.start = time.Now()
	return nil
}

func (a *fakeAudio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
}

func (a *fakeAudio) Errors() <-chan error { return a.errCh }

func (a *fakeAudio) Close() error {
	a.closed.Add(1)
	return nil
}

type fakeHost struct {
	mu       sync.Mutex
	playing  bool
	pauses   int
	resumes  int
	controls bool
}

func newFakeHost(playing bool) *fakeHost {
	return &fakeHost{playing: playing, controls: true}
}

func (h *fakeHost) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *fakeHost) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauses++
	h.playing = false
}

func (h *fakeHost) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resumes++
	h.playing = true
	return nil
}

func (h *fakeHost) SetControlsEnabled(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controls = enabled
}

func (h *fakeHost) snapshot() (playing bool, pauses, resumes int, controls bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing, h.pauses, h.resumes, h.controls
}

func fullCaps() media.Capabilities {
	return media.Capabilities{
		FFmpegPath: "ffmpeg",
		Encoders:   map[string]bool{"libvpx-vp9": true, "libvpx": true, "libopus": true},
		Muxers:     map[string]bool{"webm": true},
	}
}

type harness struct {
	ev       *events
	rec      *fakeRecorder
	audio    *fakeAudio
	host     *fakeHost
	caps     media.Capabilities
	recNew   atomic.Int32
	loads    atomic.Int32
	mu       sync.Mutex
	results  []Result
	failures []Failure
	progress []ProgressEvent
}

func newHarness(duration float64, hostPlaying bool) *harness {
	ev := &events{}
	return &harness{
		ev:    ev,
		rec:   newFakeRecorder(ev),
		audio: newFakeAudio(ev, duration),
		host:  newFakeHost(hostPlaying),
		caps:  fullCaps(),
	}
}

func (h *harness) backend() Backend {
	return Backend{
		Capabilities: func(ctx context.Context) (media.Capabilities, error) {
			return h.caps, nil
		},
		NewRecorder: func(opts media.RecorderOptions) (Recorder, error) {
			h.recNew.Add(1)
			return h.rec, nil
		},
		LoadAudio: func(ctx context.Context, a model.Asset, timeout time.Duration) (AudioSource, error) {
			h.loads.Add(1)
			return h.audio, nil
		},
	}
}

func (h *harness) exporter(t *testing.T, mutate func(o *Options)) *Exporter {
	t.Helper()
	opts := Options{
		OutputDir:        t.TempDir(),
		Size:             SizeHints{Player: image.Pt(64, 112)},
		MinSize:          image.Pt(16, 16),
		ProgressInterval: 20 * time.Millisecond,
		ExportTimeout:    10 * time.Second,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewExporter(opts, h.backend(), h.host, Callbacks{
		OnProgress: func(e ProgressEvent) {
			h.mu.Lock()
			h.progress = append(h.progress, e)
			h.mu.Unlock()
		},
		OnComplete: func(r Result) {
			h.mu.Lock()
			h.results = append(h.results, r)
			h.mu.Unlock()
		},
		OnError: func(f Failure) {
			h.mu.Lock()
			h.failures = append(h.failures, f)
			h.mu.Unlock()
		},
	})
}

func (h *harness) outcome() ([]Result, []Failure) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Result(nil), h.results...), append([]Failure(nil), h.failures...)
}

func testRequest(t *testing.T, art *model.Asset) model.ExportRequest {
	t.Helper()
	req, err := model.NewExportRequest(model.Asset{Name: "song.mp3", Data: []byte{1, 2, 3}}, "My: Song?", "Artist", art)
	if err != nil {
		t.Fatal(err)
	}
	return req.WithLyrics([]lyrics.Cue{{Start: 0, End: 5, Text: "hello"}}, "#ffcc00")
}

func pngAsset(t *testing.T) *model.Asset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &model.Asset{Name: "cover.png", Data: buf.Bytes()}
}

func waitDone(t *testing.T, e *Exporter) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		e.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("export did not finish")
	}
}

func TestExporter_Complete(t *testing.T) {
	h := newHarness(0.3, true)
	exp := h.exporter(t, nil)

	id, err := exp.Start(context.Background(), testRequest(t, pngAsset(t)))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if id == "" {
		t.Error("empty session id")
	}
	if !exp.Exporting() {
		t.Error("Exporting() should be true right after Start")
	}
	if _, pauses, _, controls := h.host.snapshot(); pauses != 1 || controls {
		t.Errorf("host pauses = %d, controls = %v; want paused with controls disabled", pauses, controls)
	}

	waitDone(t, exp)

	results, failures := h.outcome()
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	res := results[0]
	if res.SessionID != id {
		t.Errorf("SessionID = %q, want %q", res.SessionID, id)
	}
	if res.FileName != "My Song.webm" {
		t.Errorf("FileName = %q", res.FileName)
	}
	if string(res.Video) != "webm-data" {
		t.Errorf("Video = %q", res.Video)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil || string(data) != "webm-data" {
		t.Errorf("written file = %q, %v", data, err)
	}
	if res.Size != image.Pt(64, 112) {
		t.Errorf("Size = %v", res.Size)
	}
	if res.Frames == 0 || h.rec.video.Load() == 0 {
		t.Error("no frames were captured")
	}

	if playing, _, resumes, controls := h.host.snapshot(); !playing || resumes != 1 || !controls {
		t.Errorf("host playing=%v resumes=%d controls=%v after success", playing, resumes, controls)
	}
	if exp.Exporting() || exp.State() != StateIdle {
		t.Errorf("Exporting=%v State=%v after completion", exp.Exporting(), exp.State())
	}
	if h.audio.closed.Load() != 1 || h.rec.stopped.Load() != 1 || h.rec.aborted.Load() != 0 {
		t.Errorf("audio closed %d, recorder stopped %d aborted %d",
			h.audio.closed.Load(), h.rec.stopped.Load(), h.rec.aborted.Load())
	}

	if rs, ap := h.ev.index("recorder.start"), h.ev.index("audio.play"); rs < 0 || ap < 0 || rs > ap {
		t.Errorf("recorder must start before audio playback: %v", h.ev.log)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	last := h.progress[len(h.progress)-1]
	if last.Percent != 100 || last.State != StateFinalizing {
		t.Errorf("last progress = %+v", last)
	}
	for i := 1; i < len(h.progress); i++ {
		if h.progress[i].Percent < 0 || h.progress[i].Percent > 100 {
			t.Errorf("percent out of range: %+v", h.progress[i])
		}
	}
}

// flakyAudio panics on its first few CurrentTime calls, which the renderer
// makes once per frame.
type flakyAudio struct {
	*fakeAudio
	failures atomic.Int32
}

func (a *flakyAudio) CurrentTime() float64 {
	if a.failures.Add(-1) >= 0 {
		panic("current time unavailable")
	}
	return a.fakeAudio.CurrentTime()
}

func TestExporter_RenderLoopSurvivesFailingFrames(t *testing.T) {
	h := newHarness(0.5, false)
	audio := &flakyAudio{fakeAudio: h.audio}
	audio.failures.Store(5)
	exp := h.exporter(t, nil)
	exp.backend.LoadAudio = func(ctx context.Context, a model.Asset, timeout time.Duration) (AudioSource, error) {
		return audio, nil
	}

	if _, err := exp.Start(context.Background(), testRequest(t, nil)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, exp)

	results, failures := h.outcome()
	if len(failures) != 0 || len(results) != 1 {
		t.Fatalf("results = %d, failures = %v", len(results), failures)
	}
	res := results[0]
	if res.FrameErrors != 5 {
		t.Errorf("FrameErrors = %d, want 5", res.FrameErrors)
	}
	if res.Rendered == 0 {
		t.Error("no frame rendered after the failing ones")
	}
	if string(res.Video) != "webm-data" {
		t.Errorf("Video = %q", res.Video)
	}
	if exp.Exporting() {
		t.Error("Exporting() should be false after completion")
	}
}

func TestExporter_RejectsConcurrentStart(t *testing.T) {
	h := newHarness(0.3, false)
	exp := h.exporter(t, nil)
	req := testRequest(t, nil)

	if _, err := exp.Start(context.Background(), req); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := exp.Start(context.Background(), req); !errors.Is(err, ErrExportInProgress) {
		t.Fatalf("second Start = %v, want ErrExportInProgress", err)
	}
	if err := ErrExportInProgress; err.Error() != "export already in progress" {
		t.Errorf("message = %q", err)
	}

	waitDone(t, exp)
	results, failures := h.outcome()
	if len(results) != 1 || len(failures) != 0 {
		t.Fatalf("results=%d failures=%v, want the first export to complete", len(results), failures)
	}
	if n := h.recNew.Load(); n != 1 {
		t.Errorf("recorders created = %d, want 1", n)
	}
}

func TestExporter_BadAlbumArt(t *testing.T) {
	h := newHarness(0.3, true)
	exp := h.exporter(t, nil)

	bad := &model.Asset{Name: "cover.png", Data: []byte("not an image")}
	if _, err := exp.Start(context.Background(), testRequest(t, bad)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, exp)

	results, failures := h.outcome()
	if len(results) != 0 || len(failures) != 1 {
		t.Fatalf("results=%d failures=%d, want one failure", len(results), len(failures))
	}
	if !errors.Is(failures[0].Err, ErrAsset) {
		t.Errorf("err = %v, want ErrAsset", failures[0].Err)
	}
	if playing, _, resumes, controls := h.host.snapshot(); !playing || resumes != 1 || !controls {
		t.Errorf("host playing=%v resumes=%d controls=%v after failure", playing, resumes, controls)
	}
	if exp.Exporting() {
		t.Error("Exporting() should be false after failure")
	}
	if n := h.recNew.Load(); n != 0 {
		t.Errorf("recorder created %d times before assets loaded", n)
	}
	if h.audio.closed.Load() != 1 {
		t.Error("loaded audio must be released")
	}

	// The exporter is usable again right away.
	h2 := newHarness(0.2, false)
	exp.backend = h2.backend()
	if _, err := exp.Start(context.Background(), testRequest(t, nil)); err != nil {
		t.Fatalf("Start after failure: %v", err)
	}
	waitDone(t, exp)
}

func TestExporter_Unsupported(t *testing.T) {
	h := newHarness(0.3, true)
	h.caps = media.Capabilities{Encoders: map[string]bool{}, Muxers: map[string]bool{}}
	exp := h.exporter(t, nil)

	_, err := exp.Start(context.Background(), testRequest(t, nil))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Start = %v, want ErrUnsupported", err)
	}
	if h.loads.Load() != 0 || h.recNew.Load() != 0 {
		t.Error("nothing may be allocated when recording is unsupported")
	}
	if _, pauses, _, controls := h.host.snapshot(); pauses != 0 || !controls {
		t.Error("host player must not be touched")
	}
	if exp.Exporting() {
		t.Error("guard must be reset")
	}
	exp.Wait()
	if _, failures := h.outcome(); len(failures) != 0 {
		t.Error("no callback may fire for a rejected start")
	}
}

func TestExporter_ProbeError(t *testing.T) {
	h := newHarness(0.3, false)
	exp := h.exporter(t, nil)
	exp.backend.Capabilities = func(context.Context) (media.Capabilities, error) {
		return media.Capabilities{}, media.ErrFFmpegNotFound
	}
	_, err := exp.Start(context.Background(), testRequest(t, nil))
	if !errors.Is(err, ErrUnsupported) || !errors.Is(err, media.ErrFFmpegNotFound) {
		t.Fatalf("Start = %v", err)
	}
}

func TestExporter_Stop(t *testing.T) {
	h := newHarness(60, false)
	exp := h.exporter(t, nil)

	if _, err := exp.Start(context.Background(), testRequest(t, nil)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	exp.Stop()
	exp.Stop()
	waitDone(t, exp)
	exp.Stop()

	results, failures := h.outcome()
	if len(results) != 1 || len(failures) != 0 {
		t.Fatalf("results=%d failures=%v", len(results), failures)
	}
	if _, _, resumes, _ := h.host.snapshot(); resumes != 0 {
		t.Error("host was not playing and must not be resumed")
	}
}

func TestExporter_Timeout(t *testing.T) {
	h := newHarness(60, true)
	exp := h.exporter(t, func(o *Options) { o.ExportTimeout = 200 * time.Millisecond })

	if _, err := exp.Start(context.Background(), testRequest(t, nil)); err != nil {
		t.Fatal(err)
	}
	waitDone(t, exp)

	_, failures := h.outcome()
	if len(failures) != 1 || !errors.Is(failures[0].Err, ErrTimeout) {
		t.Fatalf("failures = %v, want ErrTimeout", failures)
	}
	if h.rec.aborted.Load() != 1 {
		t.Error("recorder must be aborted on timeout")
	}
	if _, _, resumes, controls := h.host.snapshot(); resumes != 1 || !controls {
		t.Error("host must be resumed on timeout")
	}
}

func TestExporter_PlayRetry(t *testing.T) {
	tests := []struct {
		name     string
		playErrs int
		wantErr  bool
	}{
		{"succeeds first time", 0, false},
		{"retry succeeds", 1, false},
		{"retry fails", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(0.2, true)
			h.audio.playErrs = tt.playErrs
			exp := h.exporter(t, nil)
			if _, err := exp.Start(context.Background(), testRequest(t, nil)); err != nil {
				t.Fatal(err)
			}
			waitDone(t, exp)

			results, failures := h.outcome()
			if tt.wantErr {
				if len(failures) != 1 || !errors.Is(failures[0].Err, ErrRecording) {
					t.Fatalf("failures = %v, want ErrRecording", failures)
				}
			} else if len(results) != 1 {
				t.Fatalf("results = %d, failures = %v", len(results), failures)
			}
			if _, _, resumes, _ := h.host.snapshot(); resumes != 1 {
				t.Errorf("resumes = %d, want 1", resumes)
			}
		})
	}
}

func TestExporter_RecorderFailures(t *testing.T) {
	t.Run("start error", func(t *testing.T) {
		h := newHarness(1, false)
		h.rec.startErr = errors.New("exec: not found")
		exp := h.exporter(t, nil)
		exp.Start(context.Background(), testRequest(t, nil))
		waitDone(t, exp)
		if _, failures := h.outcome(); len(failures) != 1 || !errors.Is(failures[0].Err, ErrRecording) {
			t.Fatalf("failures = %v", failures)
		}
		if h.audio.closed.Load() != 1 {
			t.Error("audio must be released")
		}
	})

	t.Run("exits early", func(t *testing.T) {
		h := newHarness(60, false)
		h.rec.exitErr = errors.New("encoder crashed")
		exp := h.exporter(t, nil)
		exp.Start(context.Background(), testRequest(t, nil))
		waitDone(t, exp)
		_, failures := h.outcome()
		if len(failures) != 1 || !errors.Is(failures[0].Err, ErrRecording) {
			t.Fatalf("failures = %v", failures)
		}
	})

	t.Run("construction error", func(t *testing.T) {
		h := newHarness(1, true)
		exp := h.exporter(t, nil)
		exp.backend.NewRecorder = func(media.RecorderOptions) (Recorder, error) {
			return nil, errors.New("bad options")
		}
		exp.Start(context.Background(), testRequest(t, nil))
		waitDone(t, exp)
		if _, failures := h.outcome(); len(failures) != 1 || !errors.Is(failures[0].Err, ErrRecording) {
			t.Fatalf("failures = %v", failures)
		}
		if _, _, resumes, _ := h.host.snapshot(); resumes != 1 {
			t.Error("host must be resumed")
		}
	})
}

func TestProgressReporter_DurationReachedOnce(t *testing.T) {
	r := NewProgressReporter(100*time.Millisecond, time.Minute)
	base := time.Unix(1000, 0)
	var now time.Time
	r.now = func() time.Time { return now }
	r.start = base

	src := newFakeAudio(&events{}, 3.0)
	var reached []time.Duration
	var ticks []float64
	for ms := 0; ms <= 3500; ms += 100 {
		elapsed := time.Duration(ms) * time.Millisecond
		now = base.Add(elapsed)
		r.poll(src,
			func(p float64, _ string) { ticks = append(ticks, p) },
			func() { reached = append(reached, elapsed) },
		)
	}

	if len(reached) != 1 {
		t.Fatalf("onDurationReached called %d times, want 1", len(reached))
	}
	if reached[0] != 3*time.Second {
		t.Errorf("reached at %v, want 3s", reached[0])
	}
	if len(ticks) != 31 {
		t.Errorf("ticks = %d, want 31 (polling stops once reached)", len(ticks))
	}
	if ticks[15] != 50 || ticks[len(ticks)-1] != 100 {
		t.Errorf("ticks[15] = %v, last = %v", ticks[15], ticks[len(ticks)-1])
	}
}

func TestProgressReporter_Live(t *testing.T) {
	r := NewProgressReporter(10*time.Millisecond, time.Minute)
	reached := make(chan struct{}, 2)
	start := time.Now()
	r.Start(newFakeAudio(&events{}, 0.1), nil, func() { reached <- struct{}{} }, nil)
	defer r.Stop()

	select {
	case <-reached:
		if time.Since(start) < 100*time.Millisecond {
			t.Error("duration reached too early")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("duration never reached")
	}
	time.Sleep(50 * time.Millisecond)
	if len(reached) != 0 {
		t.Error("onDurationReached fired more than once")
	}
}

func TestProgressReporter_Timeout(t *testing.T) {
	r := NewProgressReporter(10*time.Millisecond, 50*time.Millisecond)
	timedOut := make(chan struct{})
	// An unknown duration never completes; only the timeout ends it.
	r.Start(newFakeAudio(&events{}, 0), nil, nil, func() { close(timedOut) })
	select {
	case <-timedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout did not fire")
	}
	r.Stop()
	r.Stop()
}

func TestProgressReporter_StopCancelsTimeout(t *testing.T) {
	r := NewProgressReporter(10*time.Millisecond, 50*time.Millisecond)
	var fired atomic.Bool
	r.Start(newFakeAudio(&events{}, 0), nil, nil, func() { fired.Store(true) })
	r.Stop()
	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Error("timeout fired after Stop")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		elapsed  time.Duration
		duration float64
		want     float64
	}{
		{0, 3, 0},
		{1500 * time.Millisecond, 3, 50},
		{3 * time.Second, 3, 100},
		{10 * time.Second, 3, 100},
		{time.Second, 0, 0},
		{time.Second, -1, 0},
	}
	for _, tt := range tests {
		if got := Percent(tt.elapsed, tt.duration); got != tt.want {
			t.Errorf("Percent(%v, %v) = %v, want %v", tt.elapsed, tt.duration, got, tt.want)
		}
	}
}

func TestCanvasSize(t *testing.T) {
	min := image.Pt(320, 568)
	def := image.Pt(720, 1280)
	tests := []struct {
		name  string
		hints SizeHints
		want  image.Point
	}{
		{"player wins", SizeHints{Player: image.Pt(400, 700), Host: image.Pt(800, 900)}, image.Pt(400, 700)},
		{"host fallback", SizeHints{Player: image.Pt(0, 700), Host: image.Pt(500, 900)}, image.Pt(500, 900)},
		{"landscape window", SizeHints{Window: image.Pt(1920, 1080)}, image.Pt(608, 1080)},
		{"portrait window", SizeHints{Window: image.Pt(900, 2000)}, image.Pt(900, 1600)},
		{"default", SizeHints{}, def},
		{"clamped", SizeHints{Player: image.Pt(100, 100)}, min},
		{"odd rounded up", SizeHints{Player: image.Pt(401, 701)}, image.Pt(402, 702)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanvasSize(tt.hints, def, min); got != tt.want {
				t.Errorf("CanvasSize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		StateIdle:         "idle",
		StateInitializing: "initializing",
		StateRecording:    "recording",
		StateFinalizing:   "finalizing",
		StateFailed:       "failed",
		State(42):         "unknown",
	}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), w)
		}
	}
}

func TestIsUserError(t *testing.T) {
	if !IsUserError(ErrExportInProgress) || !IsUserError(Failure{Err: ErrAsset}) {
		t.Error("expected user errors")
	}
	if IsUserError(ErrTimeout) || IsUserError(ErrRecording) {
		t.Error("timeouts and recorder faults are not user errors")
	}
}
