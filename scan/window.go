package scan

import (
	"regexp"
	"strconv"
	"time"
)

// windowPattern matches exactly "HH:MM-HH:MM"; anything else, including
// trailing junk, is malformed.
var windowPattern = regexp.MustCompile(`^(\d{2}):(\d{2})-(\d{2}):(\d{2})$`)

// timeWindow is a minute-granularity range within a day, inclusive on
// both ends.
type timeWindow struct {
	start int // minutes since midnight
	end   int
}

// parseWindows parses "HH:MM-HH:MM" entries. Malformed entries are
// dropped rather than reported: a bad window must neither admit nor
// reject a cycle.
func parseWindows(specs []string) []timeWindow {
	var windows []timeWindow
	for _, spec := range specs {
		m := windowPattern.FindStringSubmatch(spec)
		if m == nil {
			continue
		}
		sh, _ := strconv.Atoi(m[1])
		sm, _ := strconv.Atoi(m[2])
		eh, _ := strconv.Atoi(m[3])
		em, _ := strconv.Atoi(m[4])
		if sh > 23 || eh > 23 || sm > 59 || em > 59 {
			continue
		}
		windows = append(windows, timeWindow{start: sh*60 + sm, end: eh*60 + em})
	}
	return windows
}

// Admitted reports whether now falls inside any of the configured
// windows. An empty spec list always admits; a non-empty list with no
// matching window skips the whole cycle.
func Admitted(specs []string, now time.Time) bool {
	if len(specs) == 0 {
		return true
	}
	windows := parseWindows(specs)
	minutes := now.Hour()*60 + now.Minute()
	for _, w := range windows {
		if minutes >= w.start && minutes <= w.end {
			return true
		}
	}
	return false
}
