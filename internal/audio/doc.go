// Package audio provides the audio side of the vinyl player: decoding,
// real-time routing into a recorder, ID3 metadata and speaker playback.
//
// # Export Audio
//
// Element is the export's audio element. It decodes an MP3, WAV, FLAC or
// Ogg Vorbis asset with beep, resamples it to 48 kHz and, once playing,
// writes 20 ms chunks of stereo s16le PCM to its routed destination in real
// time:
//
//	el, err := audio.Load(ctx, asset, 10*time.Second)
//	el.Route(recorder.AudioInput())
//	el.Play()
//
// CurrentTime, Duration and Paused expose the playback clock the renderer
// and progress reporter read.
//
// # Metadata
//
// ReadMetadata reads the ID3v2 tag of an MP3:
//
//	meta, _ := audio.ReadMetadata(asset)
//
// It supports:
//   - Title, Artist, Album
//   - Unsynchronized lyrics (USLT)
//   - Synchronized lyrics (SYLT), converted to lyric cues
//   - Cover art (APIC)
//
// # Speaker Output
//
// SpeakerOutput plays the on-screen player's song through the sound card
// and can be paused while an export runs.
package audio
