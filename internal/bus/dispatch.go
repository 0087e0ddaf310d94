package bus

// CommandHandler handles every command message. Implementations get a
// compile error when a command is added.
type CommandHandler interface {
	StartPlay(StartPlay)
	UpdateSongTitle(UpdateSongTitle)
	UpdateArtistName(UpdateArtistName)
	UpdateAlbumArt(UpdateAlbumArt)
	RemoveAlbumArt(RemoveAlbumArt)
	UpdateLyrics(UpdateLyrics)
	UpdateLyricsColor(UpdateLyricsColor)
	ExportWebM(ExportWebM)
	StopExport(StopExport)
	TogglePlayback(TogglePlayback)
	DebugBrowserSupport(DebugBrowserSupport)
}

// Dispatch calls the handler method for m. It returns false if m is an
// event rather than a command.
func Dispatch(h CommandHandler, m Message) bool {
	switch m := m.(type) {
	case StartPlay:
		h.StartPlay(m)
	case UpdateSongTitle:
		h.UpdateSongTitle(m)
	case UpdateArtistName:
		h.UpdateArtistName(m)
	case UpdateAlbumArt:
		h.UpdateAlbumArt(m)
	case RemoveAlbumArt:
		h.RemoveAlbumArt(m)
	case UpdateLyrics:
		h.UpdateLyrics(m)
	case UpdateLyricsColor:
		h.UpdateLyricsColor(m)
	case ExportWebM:
		h.ExportWebM(m)
	case StopExport:
		h.StopExport(m)
	case TogglePlayback:
		h.TogglePlayback(m)
	case DebugBrowserSupport:
		h.DebugBrowserSupport(m)
	default:
		return false
	}
	return true
}

// IsCommand reports whether k is sent from the control panel to the player.
func IsCommand(k Kind) bool {
	switch k {
	case KindStartPlay, KindUpdateSongTitle, KindUpdateArtistName, KindUpdateAlbumArt,
		KindRemoveAlbumArt, KindUpdateLyrics, KindUpdateLyricsColor, KindExportWebM,
		KindStopExport, KindTogglePlayback, KindDebugBrowserSupport:
		return true
	}
	return false
}
