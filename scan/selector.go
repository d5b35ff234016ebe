package scan

import (
	"sort"
	"time"
)

// SelectLatest picks the newest candidate whose version equals version, or
// nil when none qualifies. Ties on timestamp break by descending name so
// the choice does not depend on directory-listing order.
func SelectLatest(candidates []Candidate, version string) *Candidate {
	var matches []Candidate
	for _, c := range candidates {
		if c.Parsed() && c.Version == version {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Timestamp.Equal(matches[j].Timestamp) {
			return matches[i].Timestamp.After(matches[j].Timestamp)
		}
		return matches[i].Name > matches[j].Name
	})

	latest := matches[0]
	return &latest
}

// Recent reports whether the candidate is dated today or yesterday
// relative to now, in local time. Older builds are stale and must not be
// promoted even if they are the newest for their version.
func Recent(c Candidate, now time.Time) bool {
	if !c.Parsed() {
		return false
	}
	day := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	candidateDay := day(c.Timestamp)
	today := day(now)
	yesterday := today.AddDate(0, 0, -1)
	return candidateDay.Equal(today) || candidateDay.Equal(yesterday)
}
