// Package export records the vinyl player to a WebM video.
//
// # Overview
//
// An Exporter runs at most one Session at a time. A session re-renders the
// player card on an off-screen canvas, samples it into a recorder together
// with the song audio and assembles the encoded chunks into one file:
//
//  1. Check that WebM can be recorded (before anything is allocated)
//  2. Pause the host player and disable its controls
//  3. Load album art and audio concurrently, each with a timeout
//  4. Start the recorder, then audio playback, then the render loop
//  5. Poll progress until the song duration is reached
//  6. Stop the recorder, join the chunks and write <title>.webm
//  7. Re-enable controls and resume the host player if it was playing
//
// # States
//
// A session moves through
//
//	Idle -> Initializing -> Recording -> Finalizing -> Idle
//
// or, on any error or the overall timeout,
//
//	Initializing|Recording -> Failed -> Idle
//
// Both paths release resources through the same cleanup routine, and both
// resume the host player.
//
// # Errors
//
// Start returns ErrExportInProgress or an error wrapping ErrUnsupported when
// an export cannot begin. Failures after that are delivered to
// Callbacks.OnError and wrap ErrAsset, ErrRecording or ErrTimeout:
//
//	OnError: func(f export.Failure) {
//	    if errors.Is(f.Err, export.ErrTimeout) {
//	        // ...
//	    }
//	}
//
// # Progress
//
// ProgressReporter polls every 100 ms by default and reports
//
//	percent = min(100, elapsed_ms / (duration_s * 1000) * 100)
//
// through Callbacks.OnProgress.
package export
