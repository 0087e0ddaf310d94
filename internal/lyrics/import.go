package lyrics

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// jsonCue mirrors one entry of the editor's export format. Start and End are
// kept raw so both 12.5 and "00:12" are accepted.
type jsonCue struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
	Text  string          `json:"text"`
}

// ParseJSON decodes a lyrics export.
//
// Entries with empty text are skipped, matching the editor which ignores
// blank rows. The result is validated; an invalid list returns an error.
func ParseJSON(data []byte) ([]Cue, error) {
	var raw []jsonCue
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode lyrics: %w", err)
	}

	cues := make([]Cue, 0, len(raw))
	for i, r := range raw {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		start, err := parseTimeField(r.Start)
		if err != nil {
			return nil, fmt.Errorf("lyrics entry %d start: %w", i+1, err)
		}
		end, err := parseTimeField(r.End)
		if err != nil {
			return nil, fmt.Errorf("lyrics entry %d end: %w", i+1, err)
		}
		cues = append(cues, Cue{Start: start, End: end, Text: strings.TrimSpace(r.Text)})
	}

	if err := Validate(cues); err != nil {
		return nil, err
	}
	return cues, nil
}

// LoadFile reads and parses a lyrics JSON file.
func LoadFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJSON(data)
}

func parseTimeField(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("expected number or \"mm:ss\", got %s", string(raw))
	}
	return TimeToSeconds(s)
}
