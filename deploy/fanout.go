package deploy

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/franksops/shuttle/config"
	"github.com/franksops/shuttle/engine"
	"github.com/franksops/shuttle/event"
	"github.com/franksops/shuttle/provider"
)

// TargetResult is the per-target outcome of a fan-out, reported to the
// orchestrator for audit logging.
type TargetResult struct {
	Target        string
	UploadedBytes int64
	UploadedFiles int
	Elapsed       time.Duration
	Err           error
}

// Fanout distributes one completed local artifact to deployment targets.
// Targets are always visited strictly sequentially: a single coherent
// progress stream and bounded resource use matter more here than
// throughput.
type Fanout struct {
	Dialer  Dialer
	Emitter event.Emitter
	Local   provider.Provider

	copier *engine.Copier
}

// NewFanout creates a Fanout pushing from the local filesystem.
func NewFanout(dialer Dialer, emitter event.Emitter) *Fanout {
	return &Fanout{
		Dialer:  dialer,
		Emitter: emitter,
		Local:   provider.NewLocalProvider(""),
		copier:  engine.NewCopier(emitter),
	}
}

// Deploy uploads the artifact rooted at artifactRoot to every enabled
// target and runs the post-transfer commands on each. One target's
// failure never prevents the next target; a pending cancellation stops
// before the next connection is opened but never tears down one that is
// already established.
func (f *Fanout) Deploy(ctx context.Context, artifactRoot, artifactName string, targets []config.Target, postCommands []string, control *engine.RunControl) []TargetResult {
	var results []TargetResult

	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		if control.Cancelled() {
			f.Emitter.Log(event.LevelWarn, "deployment cancelled, skipping remaining targets")
			break
		}

		remoteDir := joinRemote(target.RemotePath, artifactName)
		start := time.Now()
		res := f.deployTarget(ctx, target, artifactRoot, artifactName, remoteDir, postCommands, control)
		res.Elapsed = time.Since(start)

		switch {
		case errors.Is(res.Err, engine.ErrCancelled):
			// Cancellation is a terminal state, not a target failure.
			f.Emitter.Log(event.LevelWarn, "[%s] deployment cancelled after %d files", target.Name, res.UploadedFiles)
		case res.Err != nil:
			f.Emitter.Log(event.LevelError, "[%s] deployment failed: %v", target.Name, res.Err)
		default:
			f.Emitter.Log(event.LevelSuccess, "[%s] deployment successful (%d files, %d bytes)", target.Name, res.UploadedFiles, res.UploadedBytes)
		}
		results = append(results, res)
	}

	return results
}

// DeployManual pushes an arbitrary local tree to a single target,
// bypassing task matching. A remote path ending in a separator has the
// local base name appended, matching the scheduled layout.
func (f *Fanout) DeployManual(ctx context.Context, target config.Target, localPath, remotePath string, postCommands []string, control *engine.RunControl) TargetResult {
	artifactName := path.Base(strings.ReplaceAll(localPath, "\\", "/"))

	remoteDir := strings.ReplaceAll(remotePath, "\\", "/")
	if strings.HasSuffix(remotePath, "/") || strings.HasSuffix(remotePath, "\\") {
		remoteDir = joinRemote(remoteDir, artifactName)
	}

	f.Emitter.Log(event.LevelInfo, "manual deployment: %s -> [%s] %s", localPath, target.Name, remoteDir)

	start := time.Now()
	res := f.deployTarget(ctx, target, localPath, artifactName, remoteDir, postCommands, control)
	res.Elapsed = time.Since(start)
	return res
}

func (f *Fanout) deployTarget(ctx context.Context, target config.Target, artifactRoot, artifactName, remoteDir string, postCommands []string, control *engine.RunControl) TargetResult {
	res := TargetResult{Target: target.Name}

	f.Emitter.Log(event.LevelInfo, "[%s] connecting to %s", target.Name, target.Addr())
	conn, err := f.Dialer.Dial(target)
	if err != nil {
		res.Err = err
		return res
	}
	defer conn.Close()
	f.Emitter.Log(event.LevelInfo, "[%s] connected", target.Name)

	// A remote directory that already exists is uploaded into anyway:
	// re-pushing a build must always be possible, unlike the local copy
	// which skips existing destinations.
	if err := f.upload(ctx, conn, target, artifactRoot, remoteDir, control, &res); err != nil {
		res.Err = err
		return res
	}

	f.runPostCommands(conn, target, artifactRoot, artifactName, postCommands)
	return res
}

func (f *Fanout) upload(ctx context.Context, conn Conn, target config.Target, artifactRoot, remoteDir string, control *engine.RunControl, res *TargetResult) error {
	files, total, err := engine.EnumerateFiles(ctx, f.Local, artifactRoot, engine.Filter{})
	if err != nil {
		return fmt.Errorf("enumerate %s: %w", artifactRoot, err)
	}

	if err := conn.MkdirAll(remoteDir); err != nil {
		return fmt.Errorf("create remote directory %s: %w", remoteDir, err)
	}

	f.Emitter.Log(event.LevelInfo, "[%s] uploading %d files to %s", target.Name, len(files), remoteDir)

	tracker := engine.NewProgressTracker(f.Emitter, target.Name, total)
	defer tracker.Finish()

	for _, file := range files {
		if err := control.Checkpoint(); err != nil {
			return err
		}

		localPath := path.Join(artifactRoot, file.RelPath)
		remotePath := joinRemote(remoteDir, file.RelPath)
		tracker.WithPaths(localPath, remotePath)

		n, err := f.uploadFile(ctx, conn, localPath, remotePath, control, tracker)
		res.UploadedBytes += n
		if err != nil {
			return err
		}
		res.UploadedFiles++
	}

	return nil
}

func (f *Fanout) uploadFile(ctx context.Context, conn Conn, localPath, remotePath string, control *engine.RunControl, tracker *engine.ProgressTracker) (int64, error) {
	reader, err := f.Local.OpenRead(ctx, localPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer reader.Close()

	writer, err := conn.OpenWrite(remotePath)
	if err != nil {
		return 0, fmt.Errorf("create remote %s: %w", remotePath, err)
	}

	n, err := f.copier.CopyChunks(writer, reader, control, tracker)
	if closeErr := writer.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close remote %s: %w", remotePath, closeErr)
	}
	return n, err
}

// runPostCommands executes each configured command over the existing
// connection. Failures are logged and the remaining commands still run.
func (f *Fanout) runPostCommands(conn Conn, target config.Target, artifactRoot, artifactName string, postCommands []string) {
	if len(postCommands) == 0 {
		return
	}

	f.Emitter.Log(event.LevelInfo, "[%s] executing post-transfer commands", target.Name)
	for _, raw := range postCommands {
		cmd := ExpandCommand(raw, artifactRoot, artifactName)
		f.Emitter.Log(event.LevelInfo, "[%s] $ %s", target.Name, cmd)

		output, exitStatus, err := conn.Exec(cmd)
		if out := strings.TrimSpace(output); out != "" {
			f.Emitter.Log(event.LevelInfo, "[%s] > %s", target.Name, out)
		}
		if err != nil {
			f.Emitter.Log(event.LevelError, "[%s] command failed: %v", target.Name, err)
			continue
		}
		if exitStatus != 0 {
			f.Emitter.Log(event.LevelError, "[%s] command failed (exit %d)", target.Name, exitStatus)
		}
	}
}

func joinRemote(base, name string) string {
	return strings.TrimRight(strings.ReplaceAll(base, "\\", "/"), "/") + "/" + name
}
