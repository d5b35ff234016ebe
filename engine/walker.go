package engine

import (
	"context"
	"fmt"
	"path"

	"github.com/franksops/shuttle/provider"
)

// FileEntry is one regular file found under a source tree, identified by
// its slash-separated path relative to the tree root.
type FileEntry struct {
	RelPath string
	Size    int64
}

// EnumerateFiles walks the tree under root iteratively and returns the
// filtered regular files together with their aggregate byte size. The
// total is computed before any copying starts so progress can be reported
// as a percentage with an ETA.
//
// The walk uses an explicit pending stack instead of recursion to keep
// stack usage bounded on deep trees.
func EnumerateFiles(ctx context.Context, p provider.Provider, root string, filter Filter) ([]FileEntry, int64, error) {
	var (
		files []FileEntry
		total int64
	)

	stack := []string{""}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		// Pop item
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir := root
		if rel != "" {
			dir = path.Join(root, rel)
		}

		entries, err := p.List(ctx, dir)
		if err != nil {
			return nil, 0, fmt.Errorf("list directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			entryRel := entry.Name()
			if rel != "" {
				entryRel = path.Join(rel, entry.Name())
			}

			if entry.IsDir() {
				// Push subdirectory onto the stack to process later.
				stack = append(stack, entryRel)
				continue
			}
			if !filter.Match(entry.Name()) {
				continue
			}
			files = append(files, FileEntry{RelPath: entryRel, Size: entry.Size()})
			total += entry.Size()
		}
	}

	return files, total, nil
}
