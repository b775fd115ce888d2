package scheduler

import (
	"strconv"
	"strings"
	"time"
)

var intervalUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseIntervalDuration reads a positive whole count followed by one of
// s, m, h, d or w ("30s", "5m", "1d"). ok is false for anything else.
func ParseIntervalDuration(interval string) (d time.Duration, ok bool) {
	s := strings.ToLower(strings.TrimSpace(interval))
	if len(s) < 2 {
		return 0, false
	}
	unit, known := intervalUnits[s[len(s)-1]]
	if !known {
		return 0, false
	}
	count, err := strconv.Atoi(strings.TrimSpace(s[:len(s)-1]))
	if err != nil || count <= 0 {
		return 0, false
	}
	return time.Duration(count) * unit, true
}
