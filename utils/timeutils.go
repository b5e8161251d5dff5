package utils

import (
	"strconv"
	"strings"
	"time"
)

// FormatEpoch renders epoch seconds as an RFC 3339 UTC timestamp. Zero,
// which marks "never" in health reporting, renders as "".
func FormatEpoch(sec int64) string {
	if sec == 0 {
		return ""
	}
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// ParseClock converts a GTFS "H:MM[:SS]" time to seconds since midnight.
// Hours may exceed 23 for trips running past midnight. Parts after the
// seconds are ignored. ok is false when the value cannot be parsed.
func ParseClock(s string) (secs int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, false
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	vals := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		vals[i] = n
	}
	return vals[0]*3600 + vals[1]*60 + vals[2], true
}
