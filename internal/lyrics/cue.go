package lyrics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Cue is one timed lyric line.
type Cue struct {
	// Start is the first second (inclusive) at which the cue is shown.
	Start float64 `json:"start"`

	// End is the second (exclusive) at which the cue is hidden.
	End float64 `json:"end"`

	// Text is the line displayed under the vinyl.
	Text string `json:"text"`
}

// Contains reports whether t falls within [Start, End).
//
// A malformed cue (End <= Start) never contains any time.
func (c Cue) Contains(t float64) bool {
	return t >= c.Start && t < c.End
}

// Active returns the first cue in list order that contains t.
//
// The second return value is false when cues is empty or no cue matches.
//
// Example:
//
//	cue, ok := Active(cues, player.CurrentTime())
//	if ok {
//	    drawLyric(cue.Text)
//	}
func Active(cues []Cue, t float64) (Cue, bool) {
	for _, c := range cues {
		if c.Contains(t) {
			return c, true
		}
	}
	return Cue{}, false
}

// ActiveText is Active without the boolean; it returns "" when nothing matches.
func ActiveText(cues []Cue, t float64) string {
	c, _ := Active(cues, t)
	return c.Text
}

// Sorted returns a copy of cues ordered by start time. Cues with equal start
// keep their relative order.
func Sorted(cues []Cue) []Cue {
	out := make([]Cue, len(cues))
	copy(out, cues)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// Validate checks the rules the lyrics editor enforces before publishing a
// cue list: start >= 0, end > start and non-empty text. All violations are
// returned joined together.
func Validate(cues []Cue) error {
	var errs []error
	for i, c := range cues {
		if c.Start < 0 {
			errs = append(errs, fmt.Errorf("cue %d: start %.2f is negative", i+1, c.Start))
		}
		if c.End <= c.Start {
			errs = append(errs, fmt.Errorf("cue %d: end %.2f must be after start %.2f", i+1, c.End, c.Start))
		}
		if strings.TrimSpace(c.Text) == "" {
			errs = append(errs, fmt.Errorf("cue %d: text is empty", i+1))
		}
	}
	return errors.Join(errs...)
}
