package engine

import (
	"time"

	"github.com/franksops/shuttle/event"
)

// progressInterval is the minimum gap between two progress emissions for
// the same job. Terminal snapshots bypass the throttle.
const progressInterval = 300 * time.Millisecond

// ProgressTracker accumulates copied-byte counts for one job and emits
// throttled snapshots with percentage, throughput, and ETA.
type ProgressTracker struct {
	emitter    event.Emitter
	label      string
	localPath  string
	remotePath string

	total    int64
	copied   int64
	started  time.Time
	lastEmit time.Time
}

// NewProgressTracker starts tracking a job of total bytes.
func NewProgressTracker(emitter event.Emitter, label string, total int64) *ProgressTracker {
	return &ProgressTracker{
		emitter: emitter,
		label:   label,
		total:   total,
		started: time.Now(),
	}
}

// WithPaths tags subsequent snapshots with the file currently in flight.
// Deployment uploads use this to show both sides of the transfer.
func (pt *ProgressTracker) WithPaths(local, remote string) {
	pt.localPath = local
	pt.remotePath = remote
}

// Add records n more copied bytes and emits a snapshot if the throttle
// interval has elapsed.
func (pt *ProgressTracker) Add(n int64) {
	pt.copied += n
	if time.Since(pt.lastEmit) >= progressInterval {
		pt.emit()
	}
}

// Finish emits a final snapshot regardless of the throttle.
func (pt *ProgressTracker) Finish() {
	pt.emit()
}

// Copied returns the bytes recorded so far.
func (pt *ProgressTracker) Copied() int64 {
	return pt.copied
}

func (pt *ProgressTracker) emit() {
	elapsed := time.Since(pt.started).Seconds()

	var percentage float64
	if pt.total > 0 {
		percentage = float64(pt.copied) / float64(pt.total) * 100
	}

	var speed float64
	if elapsed > 0 {
		speed = float64(pt.copied) / elapsed
	}

	var eta float64
	if speed > 0 {
		eta = float64(pt.total-pt.copied) / speed
	}

	pt.emitter.Progress(event.ProgressEvent{
		Label:          pt.label,
		TotalBytes:     pt.total,
		CopiedBytes:    pt.copied,
		Percentage:     percentage,
		Speed:          speed,
		EtaSeconds:     eta,
		ElapsedSeconds: elapsed,
		LocalPath:      pt.localPath,
		RemotePath:     pt.remotePath,
	})
	pt.lastEmit = time.Now()
}
