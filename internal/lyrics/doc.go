// Package lyrics provides timed lyric cues and the clock that resolves which
// cue is active at a given playback position.
//
// # Cues
//
// A Cue is a line of text that is active on the half-open interval
// [Start, End):
//
//	cues := []lyrics.Cue{
//	    {Start: 0, End: 5, Text: "a"},
//	    {Start: 5, End: 10, Text: "b"},
//	}
//	cue, ok := lyrics.Active(cues, 5) // cue.Text == "b"
//
// Cue lists are scanned in list order and the first match wins. Overlapping
// cues are not rejected here; use Validate in the editor before publishing.
//
// # Time Formatting
//
// SecondsToTime and TimeToSeconds convert between seconds and the "mm:ss"
// strings shown by the player and the lyrics editor. The conversion is lossy:
// fractional seconds are truncated.
//
//	lyrics.SecondsToTime(75.9)   // "01:15"
//	lyrics.TimeToSeconds("01:15") // 75
//
// # Import
//
// ParseJSON reads the JSON array produced by the lyrics editor's export
// button. Start and end may be numbers of seconds or "mm:ss" strings.
package lyrics
