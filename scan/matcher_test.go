package scan

import (
	"testing"
	"time"
)

func TestParseName_VersionTagged(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected time.Time
	}{
		{"2026_02_11_03_34(1.3.7.P18)", "1.3.7.P18", time.Date(2026, 2, 11, 3, 34, 0, 0, time.Local)},
		{"2025_12_31_23_59(2.0.0)", "2.0.0", time.Date(2025, 12, 31, 23, 59, 0, 0, time.Local)},
		{"2026_01_01_00_00(hotfix (rc1))", "hotfix (rc1)", time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		c := ParseName("/share/"+tt.name, tt.name)
		if !c.Parsed() {
			t.Errorf("ParseName(%q) did not parse", tt.name)
			continue
		}
		if c.Version != tt.version {
			t.Errorf("ParseName(%q) version = %q; want %q", tt.name, c.Version, tt.version)
		}
		if !c.Timestamp.Equal(tt.expected) {
			t.Errorf("ParseName(%q) timestamp = %v; want %v", tt.name, c.Timestamp, tt.expected)
		}
	}
}

func TestParseName_Unparseable(t *testing.T) {
	names := []string{
		"random-folder",
		"2026_02_11(1.0)",            // missing time segment
		"2026_02_11_03_34",           // missing version
		"2026_02_11_03_34()",         // empty version
		"2026_13_40_99_99(1.0)",      // not a real timestamp
		"x2026_02_11_03_34(1.3.7)",   // leading junk
	}

	for _, name := range names {
		c := ParseName("/share/"+name, name)
		if c.Parsed() {
			t.Errorf("ParseName(%q) unexpectedly parsed: %+v", name, c)
		}
		if c.Version != "" {
			t.Errorf("ParseName(%q) version = %q; want empty", name, c.Version)
		}
		if !c.Timestamp.IsZero() {
			t.Errorf("ParseName(%q) timestamp = %v; want zero sentinel", name, c.Timestamp)
		}
	}
}

func TestParseName_SentinelLosesRecency(t *testing.T) {
	unparsed := ParseName("/share/junk", "junk")
	parsed := ParseName("/share/2000_01_01_00_00(old)", "2000_01_01_00_00(old)")

	if !unparsed.Timestamp.Before(parsed.Timestamp) {
		t.Errorf("sentinel timestamp should sort before any parsed timestamp")
	}
}
