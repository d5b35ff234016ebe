package engine

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/franksops/shuttle/event"
	"github.com/franksops/shuttle/provider"
)

// Result is the terminal state of one tree copy. It feeds the audit log:
// a cancelled copy reports the files that were fully written before the
// cancellation checkpoint.
type Result struct {
	Skipped     bool
	FilesCopied int
	BytesCopied int64
	Files       []string
}

// Copier performs chunked, interruptible tree copies between providers.
type Copier struct {
	Buffers *BufferPool
	Emitter event.Emitter
}

// NewCopier creates a Copier with a 64 KiB chunk buffer pool.
func NewCopier(emitter event.Emitter) *Copier {
	return &Copier{
		Buffers: NewBufferPool(ChunkSize),
		Emitter: emitter,
	}
}

// CopyTree copies the filtered files under sourceDir into destDir.
//
// If destDir already exists the copy is an idempotent skip: nothing is
// modified and Result.Skipped is set. The filtered byte total is computed
// before the first write so every progress snapshot carries a percentage
// and ETA. Cancellation mid-file returns ErrCancelled with the partial
// counts preserved; partially written files are left on disk.
func (c *Copier) CopyTree(ctx context.Context, src, dst provider.Provider, sourceDir, destDir string, filter Filter, control *RunControl) (Result, error) {
	var res Result

	if _, err := dst.Stat(ctx, destDir); err == nil {
		res.Skipped = true
		return res, nil
	}

	files, total, err := EnumerateFiles(ctx, src, sourceDir, filter)
	if err != nil {
		return res, err
	}
	if len(files) == 0 {
		c.Emitter.Log(event.LevelWarn, "nothing to copy from %s", sourceDir)
		return res, nil
	}

	tracker := NewProgressTracker(c.Emitter, path.Base(destDir), total)
	defer tracker.Finish()

	for _, file := range files {
		if err := control.Checkpoint(); err != nil {
			return res, err
		}

		srcPath := path.Join(sourceDir, file.RelPath)
		dstPath := path.Join(destDir, file.RelPath)
		tracker.WithPaths(srcPath, dstPath)

		n, err := c.copyFile(ctx, src, dst, srcPath, dstPath, control, tracker)
		res.BytesCopied += n
		if err != nil {
			return res, err
		}

		res.Files = append(res.Files, file.RelPath)
		res.FilesCopied++
	}

	return res, nil
}

func (c *Copier) copyFile(ctx context.Context, src, dst provider.Provider, srcPath, dstPath string, control *RunControl, tracker *ProgressTracker) (int64, error) {
	reader, err := src.OpenRead(ctx, srcPath)
	if err != nil {
		return 0, fmt.Errorf("open source %s: %w", srcPath, err)
	}
	defer reader.Close()

	writer, err := dst.OpenWrite(ctx, dstPath)
	if err != nil {
		return 0, fmt.Errorf("open destination %s: %w", dstPath, err)
	}

	n, err := c.CopyChunks(writer, reader, control, tracker)
	if closeErr := writer.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close destination %s: %w", dstPath, closeErr)
	}
	return n, err
}

// CopyChunks streams src into dst in fixed-size chunks, checking the run
// control before every chunk and feeding copied bytes into the tracker.
// A paused copy holds between chunks (the control re-checks cancellation
// on every wake), so open connections stay alive while paused.
func (c *Copier) CopyChunks(dst io.Writer, src io.Reader, control *RunControl, tracker *ProgressTracker) (int64, error) {
	buf := c.Buffers.Get()
	defer c.Buffers.Put(buf)

	var written int64
	for {
		if err := control.Checkpoint(); err != nil {
			return written, err
		}

		n, readErr := src.Read(*buf)
		if n > 0 {
			if _, writeErr := dst.Write((*buf)[:n]); writeErr != nil {
				return written, writeErr
			}
			written += int64(n)
			if tracker != nil {
				tracker.Add(int64(n))
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
