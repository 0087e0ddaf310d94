package export

import "errors"

var (
	// ErrExportInProgress is returned when an export is requested while
	// another one is still running.
	ErrExportInProgress = errors.New("export already in progress")

	// ErrUnsupported means the recorder cannot produce WebM in this
	// environment. It is returned before any resource is allocated.
	ErrUnsupported = errors.New("video recording is not supported")

	// ErrAsset wraps album art and audio load failures and timeouts.
	ErrAsset = errors.New("asset error")

	// ErrRecording wraps recorder, capture stream and audio playback
	// failures.
	ErrRecording = errors.New("recording error")

	// ErrTimeout is reported when an export exceeds the overall time limit.
	ErrTimeout = errors.New("export timed out")
)
