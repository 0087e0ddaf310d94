// Package render paints the vinyl player onto an off-screen canvas.
//
// # Rendering
//
// A Renderer draws one complete frame per call from a Scene: gradient
// background, rounded player card, grooved disc with the album art rotated
// and clipped to the label, title, artist, active lyric, progress bar with
// thumb, elapsed and total time, and transport glyphs.
//
//	r, err := render.NewRenderer(render.DefaultLayout())
//	canvas := render.NewCanvas(720, 1280)
//	r.Render(canvas, render.Scene{Rotation: clock.Angle(), Playback: el, Title: "Song"})
//
// Geometry and colors come from a Layout table.
//
// # Rotation
//
// RotationClock computes the vinyl angle from elapsed wall-clock time, so a
// slow frame never makes the disc fall behind the audio:
//
//	clock := render.NewRotationClock(render.DefaultRotationSpeed)
//	angle := clock.Angle() // [0, 360)
package render
