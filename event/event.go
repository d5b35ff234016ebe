package event

// Level classifies a log event for the consumer. "success" exists beside
// the usual levels because completed copies and deployments are surfaced
// distinctly in the UI.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// LogEvent is a single human-readable line on the telemetry stream.
type LogEvent struct {
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// ProgressEvent is a point-in-time snapshot of a running transfer. One
// copy or upload emits many of these; the label tells the consumer which
// operation they belong to.
type ProgressEvent struct {
	Label          string  `json:"label"`
	TotalBytes     int64   `json:"total_bytes"`
	CopiedBytes    int64   `json:"copied_bytes"`
	Percentage     float64 `json:"percentage"`
	Speed          float64 `json:"speed"` // bytes per second
	EtaSeconds     float64 `json:"eta_seconds"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	LocalPath      string  `json:"local_path,omitempty"`
	RemotePath     string  `json:"remote_path,omitempty"`
}

// Event is either a LogEvent or a ProgressEvent.
type Event interface {
	isEvent()
}

func (LogEvent) isEvent()      {}
func (ProgressEvent) isEvent() {}

// Emitter is the write side of the telemetry stream. Long-running work
// reports through an Emitter instead of returning values, so a single
// cycle can surface many log lines and progress ticks while it runs.
type Emitter interface {
	Log(level Level, format string, args ...any)
	Progress(p ProgressEvent)
}
