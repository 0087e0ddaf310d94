package bus

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned by Decode for an unrecognized type tag.
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the JSON form of a message.
//
//	{"type": "UPDATE_SONG_TITLE", "payload": {"songTitle": "Song"}}
type Envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var decoders = map[Kind]func(json.RawMessage) (Message, error){
	KindStartPlay:           decodeAs[StartPlay],
	KindUpdateSongTitle:     decodeAs[UpdateSongTitle],
	KindUpdateArtistName:    decodeAs[UpdateArtistName],
	KindUpdateAlbumArt:      decodeAs[UpdateAlbumArt],
	KindRemoveAlbumArt:      decodeAs[RemoveAlbumArt],
	KindUpdateLyrics:        decodeAs[UpdateLyrics],
	KindUpdateLyricsColor:   decodeAs[UpdateLyricsColor],
	KindExportWebM:          decodeAs[ExportWebM],
	KindStopExport:          decodeAs[StopExport],
	KindTogglePlayback:      decodeAs[TogglePlayback],
	KindDebugBrowserSupport: decodeAs[DebugBrowserSupport],
	KindExportProgress:      decodeAs[ExportProgress],
	KindExportComplete:      decodeAs[ExportComplete],
	KindExportError:         decodeAs[ExportError],
	KindCapabilityReport:    decodeAs[CapabilityReport],
	KindPlayerState:         decodeAs[PlayerState],
}

type validator interface {
	Validate() error
}

func decodeAs[T Message](raw json.RawMessage) (Message, error) {
	var m T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Encode marshals m into an envelope.
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Kind(), err)
	}
	return json.Marshal(Envelope{Type: m.Kind(), Payload: payload})
}

// Decode parses an envelope and validates the message.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	m, err := decode(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	if v, ok := m.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", env.Type, err)
		}
	}
	return m, nil
}
