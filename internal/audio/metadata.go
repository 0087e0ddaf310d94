package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/bogem/id3v2"

	"github.com/handiism/vinyl-player/internal/lyrics"
	"github.com/handiism/vinyl-player/internal/model"
)

// lastCueHold is how long the final synchronized lyric stays visible.
const lastCueHold = 5.0

// Metadata holds the tags used to prefill an export.
type Metadata struct {
	Title  string
	Artist string
	Album  string

	// Lyrics is the unsynchronized lyrics text (USLT), if any.
	Lyrics string

	// Cues are the synchronized lyrics (SYLT) converted to lyric cues.
	Cues []lyrics.Cue

	// Cover is the embedded front cover, or the first picture when no
	// front cover is tagged. Nil when the file has no pictures.
	Cover *model.Asset
}

// ReadMetadata parses the ID3v2 tag at the start of an MP3 asset.
//
// This method reads:
//   - TIT2, TPE1 and TALB text frames
//   - USLT unsynchronized lyrics
//   - SYLT synchronized lyrics with millisecond timestamps
//   - APIC attached pictures
//
// Files without a tag return empty Metadata and no error.
//
// Example:
//
//	meta, err := audio.ReadMetadata(asset)
//	title := meta.Title
//	if title == "" {
//	    title = strings.TrimSuffix(asset.Name, asset.Ext())
//	}
func ReadMetadata(a model.Asset) (Metadata, error) {
	tag, err := id3v2.ParseReader(bytes.NewReader(a.Data), id3v2.Options{Parse: true})
	if err != nil {
		return Metadata{}, fmt.Errorf("read tags of %s: %w", a.Name, err)
	}
	defer tag.Close()

	meta := Metadata{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
	}

	for _, f := range tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription")) {
		if uslf, ok := f.(id3v2.UnsynchronisedLyricsFrame); ok && uslf.Lyrics != "" {
			meta.Lyrics = uslf.Lyrics
			break
		}
	}

	for _, f := range tag.GetFrames("SYLT") {
		uf, ok := f.(id3v2.UnknownFrame)
		if !ok {
			continue
		}
		cues, err := ParseSYLT(uf.Body)
		if err == nil && len(cues) > 0 {
			meta.Cues = cues
			break
		}
	}

	meta.Cover = coverArt(tag)
	return meta, nil
}

func coverArt(tag *id3v2.Tag) *model.Asset {
	var first *id3v2.PictureFrame
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok || len(pic.Picture) == 0 {
			continue
		}
		if pic.PictureType == id3v2.PTFrontCover {
			first = &pic
			break
		}
		if first == nil {
			p := pic
			first = &p
		}
	}
	if first == nil {
		return nil
	}
	ext := ".jpg"
	if strings.Contains(first.MimeType, "png") {
		ext = ".png"
	}
	return &model.Asset{Name: "cover" + ext, Data: first.Picture}
}

// ParseSYLT decodes the body of an ID3v2 SYLT frame into cues.
//
// Only absolute millisecond timestamps (format 2) are supported. Each cue
// ends where the next one starts; the last is held for five seconds.
// Entries with blank text are dropped after their timestamps are used as
// end markers.
func ParseSYLT(body []byte) ([]lyrics.Cue, error) {
	if len(body) < 6 {
		return nil, errors.New("SYLT frame too short")
	}
	enc := body[0]
	if body[4] != 2 {
		return nil, fmt.Errorf("SYLT timestamp format %d not supported", body[4])
	}
	rest := body[6:]

	// content descriptor
	_, rest, err := readTerminated(rest, enc)
	if err != nil {
		return nil, err
	}

	type entry struct {
		text string
		at   float64
	}
	var entries []entry
	for len(rest) > 0 {
		var text string
		text, rest, err = readTerminated(rest, enc)
		if err != nil {
			return nil, err
		}
		if len(rest) < 4 {
			return nil, errors.New("SYLT entry missing timestamp")
		}
		ms := binary.BigEndian.Uint32(rest[:4])
		rest = rest[4:]
		entries = append(entries, entry{text: strings.TrimSpace(text), at: float64(ms) / 1000})
	}

	var cues []lyrics.Cue
	for i, e := range entries {
		if e.text == "" {
			continue
		}
		end := e.at + lastCueHold
		if i+1 < len(entries) && entries[i+1].at > e.at {
			end = entries[i+1].at
		}
		cues = append(cues, lyrics.Cue{Start: e.at, End: end, Text: e.text})
	}
	return cues, nil
}

// readTerminated reads one string in the given ID3 text encoding up to its
// terminator and returns the remaining bytes.
func readTerminated(b []byte, enc byte) (string, []byte, error) {
	switch enc {
	case 0, 3: // ISO-8859-1, UTF-8
		i := bytes.IndexByte(b, 0)
		if i < 0 {
			return "", nil, errors.New("unterminated string")
		}
		s := b[:i]
		if enc == 0 {
			return latin1(s), b[i+1:], nil
		}
		return string(s), b[i+1:], nil
	case 1, 2: // UTF-16 with BOM, UTF-16BE
		for i := 0; i+1 < len(b); i += 2 {
			if b[i] == 0 && b[i+1] == 0 {
				return decodeUTF16(b[:i], enc == 2), b[i+2:], nil
			}
		}
		return "", nil, errors.New("unterminated string")
	default:
		return "", nil, fmt.Errorf("unknown text encoding %d", enc)
	}
}

func latin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

func decodeUTF16(b []byte, bigEndian bool) string {
	if len(b) >= 2 {
		switch {
		case b[0] == 0xFF && b[1] == 0xFE:
			bigEndian, b = false, b[2:]
		case b[0] == 0xFE && b[1] == 0xFF:
			bigEndian, b = true, b[2:]
		}
	}
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		if bigEndian {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		} else {
			u = append(u, uint16(b[i+1])<<8|uint16(b[i]))
		}
	}
	return string(utf16.Decode(u))
}
