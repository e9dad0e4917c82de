package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var timestampRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})$`)

// absorbs float error so 2.3s formats as 2.300 and not 2.299
const msEpsilon = 1e-6

// largest value the two-digit hour field can hold, in milliseconds
const maxTimestampMs = 99*3600*1000 + 59*60*1000 + 59*1000 + 999

// FormatTimestamp converts seconds to the SRT form HH:MM:SS,mmm. Values
// past 99:59:59,999 are clamped to it.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(maxTimestampMs)
	if ms := seconds*1000 + msEpsilon; ms < maxTimestampMs {
		total = int64(math.Floor(ms))
	}

	millis := total % 1000
	total /= 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp converts HH:MM:SS,mmm to seconds.
func ParseTimestamp(ts string) (float64, error) {
	m := timestampRegex.FindStringSubmatch(ts)
	if m == nil {
		return 0, &FormatError{Input: ts, Reason: "invalid timestamp"}
	}

	var parts [4]int
	for i := range parts {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, &FormatError{Input: ts, Reason: "invalid timestamp"}
		}
		parts[i] = v
	}

	return float64(parts[0])*3600 +
		float64(parts[1])*60 +
		float64(parts[2]) +
		float64(parts[3])/1000, nil
}

// ProgressToElapsed maps a [0,1] progress fraction to elapsed seconds.
func ProgressToElapsed(progress, durationMs float64) float64 {
	return progress * durationMs / 1000
}

// FormatClock renders the on-screen M:SS readout. Minutes are not padded.
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		return "0:00"
	}
	m := int(math.Floor(seconds / 60))
	s := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", m, s)
}
