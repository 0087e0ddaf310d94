package export

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/handiism/vinyl-player/internal/lyrics"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	}
	return "unknown"
}

// ProgressEvent represents an export progress update.
type ProgressEvent struct {
	// Percent is in [0, 100].
	Percent float64
	Message string
	Level   ProgressLevel
	State   State
}

// Default progress timings.
const (
	DefaultProgressInterval = 100 * time.Millisecond
	DefaultExportTimeout    = 5 * time.Minute
)

// Timed is anything with a duration in seconds, such as an audio element.
type Timed interface {
	Duration() float64
}

// ProgressReporter polls export progress at a fixed interval and owns the
// overall export timeout.
//
// Progress is measured as wall-clock time since Start against the audio
// duration:
//
//	percent = min(100, elapsed_ms / (duration_s * 1000) * 100)
//
// Once elapsed reaches the duration, polling stops and onDurationReached is
// called exactly once. The timeout runs on its own timer, so it fires even if
// the duration is unknown or never reached.
//
// Example:
//
//	r := NewProgressReporter(100*time.Millisecond, 5*time.Minute)
//	r.Start(element,
//	    func(p float64, msg string) { fmt.Printf("%.0f%% %s\n", p, msg) },
//	    func() { session.Finish() },
//	    func() { session.Fail(ErrTimeout) },
//	)
//	defer r.Stop()
type ProgressReporter struct {
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	start   time.Time
	reached bool
	started bool

	timer    *time.Timer
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewProgressReporter creates a reporter. Non-positive values select
// DefaultProgressInterval and DefaultExportTimeout.
func NewProgressReporter(interval, timeout time.Duration) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	if timeout <= 0 {
		timeout = DefaultExportTimeout
	}
	return &ProgressReporter{
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start begins polling src. Calls after the first are ignored. Callbacks run
// on the reporter's goroutines and must not call Stop synchronously if they
// block on its completion.
func (r *ProgressReporter) Start(src Timed, onTick func(percent float64, message string), onDurationReached, onTimeout func()) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.start = r.now()
	r.timer = time.AfterFunc(r.timeout, func() {
		select {
		case <-r.stop:
			return
		default:
		}
		if onTimeout != nil {
			onTimeout()
		}
	})
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
			}
			if r.poll(src, onTick, onDurationReached) {
				return
			}
		}
	}()
}

// Stop cancels polling and the timeout. It is safe to call more than once.
func (r *ProgressReporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		r.mu.Lock()
		if r.timer != nil {
			r.timer.Stop()
		}
		r.mu.Unlock()
	})
	r.wg.Wait()
}

// poll reports progress once and returns true when polling should end.
func (r *ProgressReporter) poll(src Timed, onTick func(float64, string), onDurationReached func()) bool {
	r.mu.Lock()
	if r.reached {
		r.mu.Unlock()
		return true
	}
	elapsed := r.now().Sub(r.start)
	r.mu.Unlock()

	duration := src.Duration()
	percent := Percent(elapsed, duration)
	if onTick != nil {
		onTick(percent, fmt.Sprintf("Recording %s / %s",
			lyrics.SecondsToTime(elapsed.Seconds()), lyrics.SecondsToTime(duration)))
	}

	if !durationReached(elapsed, duration) {
		return false
	}

	r.mu.Lock()
	first := !r.reached
	r.reached = true
	r.mu.Unlock()
	if first && onDurationReached != nil {
		onDurationReached()
	}
	return true
}

// Percent returns elapsed as a percentage of duration seconds, capped at
// 100. Unknown or zero durations give 0.
func Percent(elapsed time.Duration, duration float64) float64 {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return 0
	}
	ms := float64(elapsed) / float64(time.Millisecond)
	return math.Min(100, ms/(duration*1000)*100)
}

func durationReached(elapsed time.Duration, duration float64) bool {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return false
	}
	return elapsed.Seconds() >= duration
}
