package engine

import "testing"

func TestFilter_Extensions(t *testing.T) {
	tests := []struct {
		name       string
		extensions []string
		file       string
		want       bool
	}{
		{"bare spelling", []string{"tar.gz"}, "release-1.0.tar.gz", true},
		{"dotted spelling", []string{".tar.gz"}, "release-1.0.tar.gz", true},
		{"last segment only", []string{"gz"}, "release-1.0.tar.gz", true},
		{"case insensitive", []string{"LOG"}, "install.Log", true},
		{"no match", []string{"zip"}, "release-1.0.tar.gz", false},
		{"substring is not a suffix", []string{"tar"}, "release-1.0.tar.gz", false},
		{"empty list matches all", nil, "anything.bin", true},
		{"any of several", []string{"zip", "gz"}, "release-1.0.tar.gz", true},
	}

	for _, tt := range tests {
		f := Filter{Extensions: tt.extensions}
		if got := f.Match(tt.file); got != tt.want {
			t.Errorf("%s: Match(%q) = %v; want %v", tt.name, tt.file, got, tt.want)
		}
	}
}

func TestFilter_Includes(t *testing.T) {
	tests := []struct {
		name     string
		includes []string
		file     string
		want     bool
	}{
		{"substring present", []string{"release"}, "release-1.0.tar.gz", true},
		{"substring absent", []string{"debug"}, "release-1.0.tar.gz", false},
		{"any of several", []string{"debug", "1.0"}, "release-1.0.tar.gz", true},
		{"empty list matches all", nil, "whatever", true},
	}

	for _, tt := range tests {
		f := Filter{Includes: tt.includes}
		if got := f.Match(tt.file); got != tt.want {
			t.Errorf("%s: Match(%q) = %v; want %v", tt.name, tt.file, got, tt.want)
		}
	}
}

func TestFilter_Conjunctive(t *testing.T) {
	f := Filter{Extensions: []string{"tar.gz"}, Includes: []string{"release"}}

	if !f.Match("release-1.0.tar.gz") {
		t.Errorf("file passing both families must match")
	}
	if f.Match("debug-1.0.tar.gz") {
		t.Errorf("extension alone must not match when includes miss")
	}
	if f.Match("release-1.0.zip") {
		t.Errorf("include alone must not match when extensions miss")
	}
}
