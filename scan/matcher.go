// Package scan discovers build-artifact directories on a share and picks
// the one a task should promote.
package scan

import (
	"regexp"
	"time"
)

// namePattern matches "YYYY_MM_DD_HH_MM(Version)" directory names.
var namePattern = regexp.MustCompile(`^(\d{4}_\d{2}_\d{2}_\d{2}_\d{2})\((.+)\)$`)

// timestampLayout is the fixed-width date segment of an artifact name.
const timestampLayout = "2006_01_02_15_04"

// Candidate is one directory entry considered as a transfer source. It is
// transient: built from a listing, discarded after the scan.
type Candidate struct {
	Path      string
	Name      string
	Version   string
	Timestamp time.Time
}

// Parsed reports whether the candidate's name matched the naming
// convention. Unparsed candidates carry the zero Timestamp, which loses
// every "most recent" comparison.
func (c Candidate) Parsed() bool {
	return !c.Timestamp.IsZero()
}

// ParseName builds a Candidate from a directory entry name. Names that do
// not follow the convention still yield a Candidate, with an empty version
// and the zero-time sentinel; callers filter those out before selection.
func ParseName(path, name string) Candidate {
	c := Candidate{Path: path, Name: name}
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return c
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
	if err != nil {
		return c
	}
	c.Version = m[2]
	c.Timestamp = ts
	return c
}
