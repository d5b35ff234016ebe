// Package pipeline drives one scan cycle: time-window gate, per-task
// candidate selection, filtered copy, and deployment fan-out, with one
// audit entry per lifecycle event.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync/atomic"
	"time"

	"github.com/franksops/shuttle/config"
	"github.com/franksops/shuttle/deploy"
	"github.com/franksops/shuttle/engine"
	"github.com/franksops/shuttle/event"
	"github.com/franksops/shuttle/provider"
	"github.com/franksops/shuttle/scan"
	"github.com/franksops/shuttle/store"
)

// ErrBusy rejects a trigger while a cycle is already running. Cycles
// never queue or interleave; exactly one may be active per process.
var ErrBusy = errors.New("a cycle is already running")

// Orchestrator composes the discovery, transfer, and deployment engines
// into one cycle over an immutable configuration snapshot.
type Orchestrator struct {
	Config  *config.Config
	History store.History
	Emitter event.Emitter
	Fanout  *deploy.Fanout

	source provider.Provider
	dest   provider.Provider
	copier *engine.Copier

	// now is replaceable in tests; cycles evaluate recency against it.
	now func() time.Time

	running atomic.Bool
}

// New creates an Orchestrator scanning mounted shares on the local
// filesystem and deploying through dialer.
func New(cfg *config.Config, history store.History, emitter event.Emitter, dialer deploy.Dialer) *Orchestrator {
	local := provider.NewLocalProvider("")
	return &Orchestrator{
		Config:  cfg,
		History: history,
		Emitter: emitter,
		Fanout:  deploy.NewFanout(dialer, emitter),
		source:  local,
		dest:    local,
		copier:  engine.NewCopier(emitter),
		now:     time.Now,
	}
}

// RunCycle executes one full cycle. It fails fast with ErrBusy when
// another cycle is active. Cancellation yields the partial result with
// Cancelled set; it is not an error.
func (o *Orchestrator) RunCycle(ctx context.Context, control *engine.RunControl) (*CycleResult, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.running.Store(false)

	result := &CycleResult{}
	now := o.now()

	if !scan.Admitted(o.Config.TimeWindows, now) {
		o.Emitter.Log(event.LevelInfo, "outside configured time windows, skipping cycle")
		return result, nil
	}

	for _, task := range o.Config.Tasks {
		if !task.Enabled {
			continue
		}
		if control.Cancelled() {
			result.Cancelled = true
			break
		}

		result.ScannedPaths++
		if done := o.runTask(ctx, task, now, control, result); done {
			break
		}
	}

	if control.Cancelled() {
		result.Cancelled = true
	}
	if result.Cancelled {
		o.Emitter.Log(event.LevelWarn, "cycle cancelled: %d copied, %d errors", len(result.CopiedFolders), len(result.Errors))
	}
	return result, nil
}

// runTask handles one task and reports whether the cycle should stop.
func (o *Orchestrator) runTask(ctx context.Context, task config.Task, now time.Time, control *engine.RunControl, result *CycleResult) bool {
	candidate, err := o.findCandidate(ctx, task, now)
	if err != nil {
		// Scoped to this task; the cycle continues.
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", task.Name, err))
		o.Emitter.Log(event.LevelError, "task %s: %v", task.Name, err)
		return false
	}
	if candidate == nil {
		return false
	}

	result.FoundFolders = append(result.FoundFolders, candidate.Name)
	return o.promote(ctx, task, *candidate, control, result)
}

// findCandidate dispatches on the task's rule variant. The union is
// closed; an unknown variant is a programming error.
func (o *Orchestrator) findCandidate(ctx context.Context, task config.Task, now time.Time) (*scan.Candidate, error) {
	switch rule := task.Rule.(type) {
	case config.VersionMatch:
		return o.findByVersion(ctx, task, rule.Version, now)
	case config.DateMatch:
		return o.findByDate(ctx, task, rule.Format, now)
	default:
		panic(fmt.Sprintf("pipeline: unhandled rule variant %T", task.Rule))
	}
}

func (o *Orchestrator) findByVersion(ctx context.Context, task config.Task, version string, now time.Time) (*scan.Candidate, error) {
	entries, err := o.source.List(ctx, task.Source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", task.Source, err)
	}

	var candidates []scan.Candidate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidates = append(candidates, scan.ParseName(path.Join(task.Source, entry.Name()), entry.Name()))
	}

	latest := scan.SelectLatest(candidates, version)
	if latest == nil {
		return nil, nil
	}
	if !scan.Recent(*latest, now) {
		o.Emitter.Log(event.LevelInfo, "task %s: newest %s build %s is older than yesterday, skipping", task.Name, version, latest.Name)
		return nil, nil
	}
	return latest, nil
}

// findByDate is a direct existence lookup, not a listing scan: the
// directory name must equal the current local time in the rule's format.
func (o *Orchestrator) findByDate(ctx context.Context, task config.Task, format string, now time.Time) (*scan.Candidate, error) {
	name := now.Format(format)
	full := path.Join(task.Source, name)

	info, err := o.source.Stat(ctx, full)
	if errors.Is(err, fs.ErrNotExist) {
		o.Emitter.Log(event.LevelInfo, "task %s: no %s directory under %s", task.Name, name, task.Source)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", full, err)
	}
	if !info.IsDir() {
		return nil, nil
	}
	return &scan.Candidate{Path: full, Name: name, Timestamp: now}, nil
}

// promote copies the candidate locally and fans it out to the deployment
// targets. It reports whether the cycle should stop (cancellation).
func (o *Orchestrator) promote(ctx context.Context, task config.Task, candidate scan.Candidate, control *engine.RunControl, result *CycleResult) bool {
	destDir := path.Join(o.Config.DestinationFor(task), candidate.Name)
	filter := engine.Filter{Extensions: o.Config.Extensions, Includes: o.Config.Includes}

	o.Emitter.Log(event.LevelInfo, "task %s: copying %s -> %s", task.Name, candidate.Path, destDir)
	o.audit(store.Entry{
		ActionType:  store.ActionCopy,
		Description: "copy started",
		FolderName:  candidate.Name,
		SourcePath:  candidate.Path,
		TargetPath:  destDir,
	})

	copyRes, err := o.copier.CopyTree(ctx, o.source, o.dest, candidate.Path, destDir, filter, control)
	switch {
	case errors.Is(err, engine.ErrCancelled):
		result.Cancelled = true
		o.Emitter.Log(event.LevelWarn, "task %s: copy cancelled after %d files", task.Name, copyRes.FilesCopied)
		o.audit(store.Entry{
			ActionType:      store.ActionCancel,
			Description:     "copy cancelled",
			FolderName:      candidate.Name,
			SourcePath:      candidate.Path,
			TargetPath:      destDir,
			CopiedFileCount: copyRes.FilesCopied,
			TotalSize:       copyRes.BytesCopied,
			Files:           copyRes.Files,
		})
		return true
	case err != nil:
		result.Errors = append(result.Errors, fmt.Sprintf("%s: copy %s: %v", task.Name, candidate.Name, err))
		o.Emitter.Log(event.LevelError, "task %s: copy failed: %v", task.Name, err)
		return false
	case copyRes.Skipped:
		result.SkippedFolders = append(result.SkippedFolders, candidate.Name)
		o.Emitter.Log(event.LevelInfo, "task %s: %s already exists locally, skipping", task.Name, candidate.Name)
		return false
	case copyRes.FilesCopied == 0:
		return false
	}

	result.CopiedFolders = append(result.CopiedFolders, candidate.Name)
	o.Emitter.Log(event.LevelSuccess, "task %s: copied %s (%d files, %d bytes)", task.Name, candidate.Name, copyRes.FilesCopied, copyRes.BytesCopied)
	o.audit(store.Entry{
		ActionType:      store.ActionCopy,
		Description:     "copy completed",
		FolderName:      candidate.Name,
		SourcePath:      candidate.Path,
		TargetPath:      destDir,
		CopiedFileCount: copyRes.FilesCopied,
		TotalSize:       copyRes.BytesCopied,
		Files:           copyRes.Files,
	})

	if o.Config.Deploy.Enabled {
		o.deployArtifact(ctx, destDir, candidate.Name, control)
	}
	return control.Cancelled()
}

// deployArtifact hands a completed copy to the fan-out. Deployment
// failures are logged and audited but never alter the copy's own outcome.
func (o *Orchestrator) deployArtifact(ctx context.Context, destDir, name string, control *engine.RunControl) {
	results := o.Fanout.Deploy(ctx, destDir, name, o.Config.Deploy.Targets, o.Config.Deploy.PostCommands, control)
	for _, res := range results {
		entry := store.Entry{
			ActionType:      store.ActionDeploy,
			FolderName:      name,
			SourcePath:      destDir,
			TargetPath:      res.Target,
			CopiedFileCount: res.UploadedFiles,
			TotalSize:       res.UploadedBytes,
		}
		switch {
		case errors.Is(res.Err, engine.ErrCancelled):
			entry.ActionType = store.ActionCancel
			entry.Description = fmt.Sprintf("deployment cancelled after %s", res.Elapsed.Round(time.Millisecond))
		case res.Err != nil:
			entry.Description = fmt.Sprintf("deployment failed after %s: %v", res.Elapsed.Round(time.Millisecond), res.Err)
		default:
			entry.Description = fmt.Sprintf("deployed in %s", res.Elapsed.Round(time.Millisecond))
		}
		o.audit(entry)
	}
}

// audit appends a history entry; persistence failures are logged but do
// not disturb the cycle.
func (o *Orchestrator) audit(entry store.Entry) {
	if o.History == nil {
		return
	}
	if err := o.History.Append(entry); err != nil {
		o.Emitter.Log(event.LevelError, "failed to record history entry: %v", err)
	}
}

// AuditSystemEvent records a generic control-surface event (pause,
// resume, cancel, configuration change).
func (o *Orchestrator) AuditSystemEvent(action store.ActionType, description string) {
	o.audit(store.Entry{ActionType: action, Description: description})
}
