package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/franksops/shuttle/engine"
	"github.com/franksops/shuttle/event"
)

func TestFormatSpeed(t *testing.T) {
	tests := []struct {
		bytesPerSec float64
		expected    string
	}{
		{500, "500 B/s"},
		{1024, "1.00 KB/s"},
		{2048, "2.00 KB/s"},
		{1048576, "1.00 MB/s"},
		{1572864, "1.50 MB/s"},
		{1073741824, "1.00 GB/s"},
	}

	for _, tt := range tests {
		result := formatSpeed(tt.bytesPerSec)
		if result != tt.expected {
			t.Errorf("formatSpeed(%v) = %v; want %v", tt.bytesPerSec, result, tt.expected)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0s"},
		{-3, "0s"},
		{5, "5s"},
		{90, "1m30s"},
		{100000, "> 1d"},
	}

	for _, tt := range tests {
		result := formatETA(tt.seconds)
		if result != tt.expected {
			t.Errorf("formatETA(%v) = %v; want %v", tt.seconds, result, tt.expected)
		}
	}
}

func TestModelInitialization(t *testing.T) {
	control := engine.NewRunControl()
	model := NewModel(control)

	view := model.View()
	if view == "" {
		t.Errorf("View rendered empty string")
	}

	if !strings.Contains(view, "Initializing...") {
		t.Errorf("Expected Initializing view when width is 0")
	}
}

func TestModelPauseKeysDriveControl(t *testing.T) {
	control := engine.NewRunControl()
	model := NewModel(control)

	updated, _ := model.Update(keyMsg("p"))
	model = updated.(Model)
	if !control.Paused() {
		t.Errorf("expected control to be paused after 'p'")
	}

	updated, _ = model.Update(keyMsg("r"))
	model = updated.(Model)
	if control.Paused() {
		t.Errorf("expected control to be resumed after 'r'")
	}

	updated, _ = model.Update(keyMsg("c"))
	_ = updated
	if !control.Cancelled() {
		t.Errorf("expected control to be cancelled after 'c'")
	}
}

func TestModelRecordsLogEvents(t *testing.T) {
	model := NewModel(engine.NewRunControl())

	updated, _ := model.Update(EventMsg{Event: event.LogEvent{Message: "copied build", Level: event.LevelSuccess}})
	model = updated.(Model)

	if len(model.lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(model.lines))
	}
	if !strings.Contains(model.lines[0], "copied build") {
		t.Errorf("log line missing message: %q", model.lines[0])
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}
