package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bmatcuk/doublestar/v4"
)

// Discover lists every regular file under distDir, sorted by path. The returned paths
// start with distDir so that they can be opened directly.
func Discover(distDir string, pathChecker pathutil.PathChecker) ([]string, error) {
	exists, err := pathChecker.IsDirExists(distDir)
	if err != nil {
		return nil, fmt.Errorf("failed to check build output directory: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("build output directory does not exist: %s", distDir)
	}

	matches, err := doublestar.Glob(os.DirFS(distDir), "**/*", doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", distDir, err)
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, filepath.Join(distDir, filepath.FromSlash(match)))
	}
	return paths, nil
}
