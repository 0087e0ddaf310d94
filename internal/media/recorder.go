package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

const (
	defaultChunkSize    = 64 * 1024
	defaultVideoBitrate = "2500k"
	defaultAudioBitrate = "128k"
	stderrTail          = 4 * 1024
)

// Recorder states.
const (
	StateInactive  = "inactive"
	StateRecording = "recording"
	StateStopped   = "stopped"
)

var (
	// ErrRecorderFailed is returned when ffmpeg exits with an error.
	ErrRecorderFailed = errors.New("recorder failed")

	// ErrRecorderState is returned when Start is called twice.
	ErrRecorderState = errors.New("recorder already started")
)

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	// FFmpegPath is the ffmpeg binary to run.
	FFmpegPath string

	// Encoding selects the container type and encoders.
	Encoding Encoding

	// Width and Height are the raw RGBA frame dimensions. Both must be even.
	Width, Height int

	// FrameRate is the capture rate of the video input.
	FrameRate int

	// SampleRate and Channels describe the s16le audio input.
	SampleRate int
	Channels   int

	// VideoBitrate and AudioBitrate are ffmpeg bitrate strings such as
	// "2500k". Empty selects a default.
	VideoBitrate string
	AudioBitrate string

	// ChunkSize is the largest chunk handed to the data callback.
	ChunkSize int

	Logger *slog.Logger
}

func (o *RecorderOptions) validate() error {
	switch {
	case o.FFmpegPath == "":
		return errors.New("ffmpeg path is required")
	case o.Encoding.VideoEncoder == "" || o.Encoding.AudioEncoder == "":
		return errors.New("encoders are required")
	case o.Width <= 0 || o.Height <= 0 || o.Width%2 != 0 || o.Height%2 != 0:
		return fmt.Errorf("invalid frame size %dx%d", o.Width, o.Height)
	case o.FrameRate <= 0:
		return fmt.Errorf("invalid frame rate %d", o.FrameRate)
	case o.SampleRate <= 0 || o.Channels <= 0:
		return fmt.Errorf("invalid audio format %d Hz x %d", o.SampleRate, o.Channels)
	}
	return nil
}

// Recorder muxes raw canvas frames and PCM audio into WebM with ffmpeg.
//
// Video frames are written to VideoInput (ffmpeg stdin) and audio to
// AudioInput (an extra pipe). Encoded WebM is read from ffmpeg stdout and
// handed to the data callback in order.
//
// Example:
//
//	rec, err := media.NewRecorder(opts)
//	rec.OnData(func(chunk []byte) { chunks = append(chunks, chunk) })
//	if err := rec.Start(ctx); err != nil {
//	    return err
//	}
//	// ... write frames and audio ...
//	rec.Stop()
//	<-rec.Done()
//	if err := rec.Err(); err != nil {
//	    return err
//	}
type Recorder struct {
	opts   RecorderOptions
	logger *slog.Logger

	mu     sync.Mutex
	state  string
	onData func([]byte)

	cmd    *exec.Cmd
	video  io.WriteCloser
	audio  *os.File
	stderr *tailBuffer

	stopOnce sync.Once
	done     chan struct{}
	err      error
}

// NewRecorder validates opts and returns an inactive recorder.
func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	if opts.VideoBitrate == "" {
		opts.VideoBitrate = defaultVideoBitrate
	}
	if opts.AudioBitrate == "" {
		opts.AudioBitrate = defaultAudioBitrate
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		opts:   opts,
		logger: logger.With("component", "recorder"),
		state:  StateInactive,
		done:   make(chan struct{}),
		stderr: &tailBuffer{limit: stderrTail},
	}, nil
}

// MIMEType returns the negotiated container type.
func (r *Recorder) MIMEType() string {
	return r.opts.Encoding.MIMEType
}

// OnData sets the callback that receives encoded chunks. It must be set
// before Start.
func (r *Recorder) OnData(fn func(chunk []byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onData = fn
}

// State returns "inactive", "recording" or "stopped".
func (r *Recorder) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Args returns the ffmpeg arguments for the configured options.
func (r *Recorder) Args() []string {
	o := r.opts
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", o.Width, o.Height),
		"-r", strconv.Itoa(o.FrameRate),
		"-i", "pipe:0",
		"-f", "s16le", "-ar", strconv.Itoa(o.SampleRate), "-ac", strconv.Itoa(o.Channels),
		"-i", "pipe:3",
		"-map", "0:v", "-map", "1:a",
		"-c:v", o.Encoding.VideoEncoder,
		"-b:v", o.VideoBitrate,
		"-pix_fmt", "yuv420p",
	}
	if strings.HasPrefix(o.Encoding.VideoEncoder, "libvpx") {
		args = append(args, "-deadline", "realtime", "-cpu-used", "8")
	}
	args = append(args,
		"-c:a", o.Encoding.AudioEncoder,
		"-b:a", o.AudioBitrate,
		"-f", "webm",
		"pipe:1",
	)
	return args
}

// Start launches ffmpeg. The context only bounds process startup; use Stop
// or Abort to end the recording.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateInactive {
		return ErrRecorderState
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	audioR, audioW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("audio pipe: %w", err)
	}

	cmd := exec.Command(r.opts.FFmpegPath, r.Args()...)
	cmd.ExtraFiles = []*os.File{audioR}
	cmd.Stderr = r.stderr

	video, err := cmd.StdinPipe()
	if err != nil {
		audioR.Close()
		audioW.Close()
		return fmt.Errorf("video pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		audioR.Close()
		audioW.Close()
		video.Close()
		return fmt.Errorf("output pipe: %w", err)
	}

	r.logger.Debug("starting ffmpeg", "path", r.opts.FFmpegPath, "args", strings.Join(r.Args(), " "))
	if err := cmd.Start(); err != nil {
		audioR.Close()
		audioW.Close()
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	audioR.Close()

	r.cmd = cmd
	r.video = video
	r.audio = audioW
	r.state = StateRecording

	go r.wait(stdout, r.onData)
	return nil
}

// VideoInput is where raw RGBA frames are written.
func (r *Recorder) VideoInput() io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		r.mu.Lock()
		w := r.video
		r.mu.Unlock()
		if w == nil {
			return 0, io.ErrClosedPipe
		}
		return w.Write(p)
	})
}

// AudioInput is where s16le PCM is written.
func (r *Recorder) AudioInput() io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		r.mu.Lock()
		w := r.audio
		r.mu.Unlock()
		if w == nil {
			return 0, io.ErrClosedPipe
		}
		return w.Write(p)
	})
}

// Stop closes both inputs so ffmpeg flushes and finalizes the file. It is
// safe to call more than once and before Start.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		started := r.cmd != nil
		video, audio := r.video, r.audio
		r.mu.Unlock()

		if !started {
			r.mu.Lock()
			r.state = StateStopped
			r.mu.Unlock()
			close(r.done)
			return
		}
		if video != nil {
			video.Close()
		}
		if audio != nil {
			audio.Close()
		}
	})
}

// Abort kills ffmpeg without finalizing the output.
func (r *Recorder) Abort() {
	r.mu.Lock()
	cmd := r.cmd
	r.mu.Unlock()
	r.Stop()
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
}

// Done is closed once ffmpeg has exited and all output has been delivered.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

// Err returns the recording error after Done is closed.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) wait(stdout io.Reader, onData func([]byte)) {
	buf := make([]byte, r.opts.ChunkSize)
	var readErr error
	for {
		n, err := stdout.Read(buf)
		if n > 0 && onData != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onData(chunk)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
	}

	waitErr := r.cmd.Wait()

	r.mu.Lock()
	audio := r.audio
	r.video = nil
	r.audio = nil
	r.state = StateStopped
	switch {
	case waitErr != nil:
		r.err = fmt.Errorf("%w: %v: %s", ErrRecorderFailed, waitErr, strings.TrimSpace(r.stderr.String()))
	case readErr != nil:
		r.err = fmt.Errorf("%w: read output: %v", ErrRecorderFailed, readErr)
	}
	err := r.err
	r.mu.Unlock()

	// ffmpeg may exit on its own before Stop.
	if audio != nil {
		audio.Close()
	}

	if err != nil {
		r.logger.Warn("ffmpeg exited with error", "error", err)
	} else {
		r.logger.Debug("ffmpeg finished")
	}
	close(r.done)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
