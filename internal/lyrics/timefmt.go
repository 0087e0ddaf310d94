package lyrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxFormatSeconds caps SecondsToTime so the integer conversion stays in
// range.
const maxFormatSeconds = 1e9

// SecondsToTime formats seconds as "mm:ss".
//
// Fractional seconds are truncated. NaN, infinities and negative values
// format as "00:00". Minutes are not wrapped into hours, so 3725 seconds
// becomes "62:05". Values above maxFormatSeconds format as that maximum.
func SecondsToTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	seconds = min(seconds, maxFormatSeconds)
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// TimeToSeconds parses "mm:ss" (or a bare number of seconds) into seconds.
//
// Example:
//
//	s, err := TimeToSeconds("01:15") // 75
//	s, err = TimeToSeconds("12.5")   // 12.5
func TimeToSeconds(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty time value")
	}

	minutes, seconds, found := strings.Cut(value, ":")
	if !found {
		s, err := strconv.ParseFloat(value, 64)
		if err != nil || s < 0 {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		return s, nil
	}

	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid minutes in %q", value)
	}
	s, err := strconv.ParseFloat(seconds, 64)
	if err != nil || s < 0 || s >= 60 {
		return 0, fmt.Errorf("invalid seconds in %q", value)
	}
	return float64(m)*60 + s, nil
}
