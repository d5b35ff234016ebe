package engine

import "strings"

// Filter selects which files under a source tree are copied. The two rule
// families combine conjunctively; within each family any single match
// admits the file, and an empty family matches everything.
type Filter struct {
	// Extensions are case-insensitive suffixes. Both "ext" and ".ext"
	// spellings are accepted, including multi-segment ones like "tar.gz".
	Extensions []string

	// Includes are substrings; a file matches when its name contains any
	// of them.
	Includes []string
}

// Match reports whether a file name passes the filter.
func (f Filter) Match(name string) bool {
	return f.matchExtension(name) && f.matchInclude(name)
}

func (f Filter) matchExtension(name string) bool {
	if len(f.Extensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range f.Extensions {
		suffix := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if suffix == "" {
			continue
		}
		if strings.HasSuffix(lower, "."+suffix) {
			return true
		}
	}
	return false
}

func (f Filter) matchInclude(name string) bool {
	if len(f.Includes) == 0 {
		return true
	}
	for _, sub := range f.Includes {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}
