// Package player is the on-screen vinyl player that hosts exports.
//
// A Player consumes command messages from a bus.Bus, keeps the song state
// (title, artist, album art, lyrics, lyric color) and plays the song through
// an Output. It implements export.HostPlayer, so an export pauses it and
// locks its controls, then resumes it afterwards. Export progress,
// completion and errors are published back on the bus.
//
// Wiring:
//
//	b := bus.New(0)
//	p := player.New(player.Options{Bus: b, Output: audio.NewSpeakerOutput(), Fetcher: http.NewClient()})
//	exp := export.NewExporter(opts, export.FFmpegBackend(""), p, p.ExportCallbacks())
//	p.SetExporter(exp)
//	go p.Run(ctx)
//
//	b.Publish(bus.StartPlay{AudioURL: "~/Music/song.mp3", SongTitle: "Song"})
package player
