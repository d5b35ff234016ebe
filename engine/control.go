package engine

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrCancelled marks a job that was stopped by the operator. It is a
// terminal state distinct from failure: callers report it on its own
// channel rather than in the error list.
var ErrCancelled = errors.New("cancelled by operator")

// pausePoll is how often a paused job re-checks its flags. Short enough
// that cancel and resume feel immediate, long enough not to spin.
const pausePoll = 100 * time.Millisecond

// RunControl carries the cancel and pause flags for one pipeline run.
// Both are level-triggered: the control surface flips them and every
// cooperative checkpoint in the copy and deploy loops observes them. One
// RunControl is shared by reference into all workers of a run; no other
// ambient state exists.
type RunControl struct {
	cancelled atomic.Bool
	paused    atomic.Bool
}

// NewRunControl returns a control with both flags cleared.
func NewRunControl() *RunControl {
	return &RunControl{}
}

// Cancel requests the run to stop at its next checkpoint.
func (rc *RunControl) Cancel() { rc.cancelled.Store(true) }

// Pause requests the run to hold in place at its next checkpoint.
func (rc *RunControl) Pause() { rc.paused.Store(true) }

// Resume clears a pause.
func (rc *RunControl) Resume() { rc.paused.Store(false) }

// Cancelled reports whether a cancel was requested.
func (rc *RunControl) Cancelled() bool { return rc.cancelled.Load() }

// Paused reports whether the run is currently asked to hold.
func (rc *RunControl) Paused() bool { return rc.paused.Load() }

// Checkpoint blocks while the run is paused and returns ErrCancelled if
// a cancel is pending. Cancellation always wins over pause: a paused job
// that is then cancelled exits instead of staying blocked.
func (rc *RunControl) Checkpoint() error {
	for {
		if rc.Cancelled() {
			return ErrCancelled
		}
		if !rc.Paused() {
			return nil
		}
		time.Sleep(pausePoll)
	}
}
