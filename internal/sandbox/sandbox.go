// Package sandbox confines destination paths to the installation target.
// Manifest catalogues are external input; an entry path must never be able
// to write outside the directory the operator pointed the installer at,
// symlinks included.
package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath checks that entryPath stays within targetRoot once cleaned
// and with symlinks in any existing prefix resolved. Returns the resolved
// absolute path or an error.
func ValidatePath(targetRoot, entryPath string) (string, error) {
	absRoot, err := filepath.Abs(targetRoot)
	if err != nil {
		return "", fmt.Errorf("resolving target root: %w", err)
	}
	realRoot, err := resolveExistingPath(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving target root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, entryPath))
	resolved, err := resolveExistingPath(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving entry path: %w", err)
	}

	// Trailing separator avoids prefix-matching "target2" for "target".
	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the target '%s'", entryPath, resolved, realRoot)
	}

	return resolved, nil
}

// resolveExistingPath resolves symlinks for the longest existing prefix of
// the path, then appends the non-existing suffix. Install destinations
// usually do not exist yet.
func resolveExistingPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if dir == path {
		return path, nil
	}

	resolvedDir, err := resolveExistingPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}
