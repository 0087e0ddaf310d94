// Package model defines the core data structures used throughout
// the vinyl player.
//
// # Song
//
// Song is what the on-screen player shows: title, artist, asset locations,
// lyric cues and the lyric color.
//
// # ExportRequest
//
// ExportRequest is one export click, holding the audio and optional album
// art in memory:
//
//	audio, _ := model.LoadAsset("/music/song.mp3")
//	req, _ := model.NewExportRequest(audio, "Song Title", "Artist", nil)
//	fmt.Println(req.FileName(model.NameConfig{})) // "Song Title.webm"
//
// # File Names
//
// NameConfig controls how the output file name is computed using placeholders:
//
//	cfg := model.NameConfig{FileNameFormat: "{artist} - {title}"}
//
// Available placeholders: {title}, {artist}
package model
