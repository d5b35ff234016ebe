package deploy

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// filenameToken is replaced in post-transfer commands with the base name
// of the main tarball inside the uploaded artifact.
const filenameToken = "${filename}"

const tarballSuffix = ".tar.gz"

// ExpandCommand substitutes ${filename} in cmd. The token resolves to the
// name of the first file under artifactRoot ending in ".tar.gz" with that
// suffix stripped; when the artifact contains no tarball it falls back to
// artifactName. The tree scan is in lexical order so the choice is
// deterministic.
func ExpandCommand(cmd, artifactRoot, artifactName string) string {
	if !strings.Contains(cmd, filenameToken) {
		return cmd
	}
	return strings.ReplaceAll(cmd, filenameToken, resolveFilename(artifactRoot, artifactName))
}

func resolveFilename(artifactRoot, artifactName string) string {
	var found string
	_ = filepath.WalkDir(artifactRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return filepath.SkipAll
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), tarballSuffix) {
			found = d.Name()[:len(d.Name())-len(tarballSuffix)]
			return filepath.SkipAll
		}
		return nil
	})
	if found == "" {
		return artifactName
	}
	return found
}
