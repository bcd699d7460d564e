// Package manifest holds the declarative description of an installed tree:
// an ordered sequence of directory, file and symlink entries with optional
// size, digest and mode metadata. The same entries drive both verification
// and installation. Order is load-bearing: a directory must precede the
// files placed inside it, because installation never creates parents.
package manifest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Entry is one expected filesystem object. The concrete type (File, Dir or
// Symlink) determines its verify and install behavior.
type Entry interface {
	// Path returns the entry's install path relative to the target root.
	Path() string
}

// File is a regular file fetched from installation media.
type File struct {
	// Name is the install path relative to the target root.
	Name string

	// Source is the logical name to resolve on media. Empty means Name.
	Source string

	// Size is the expected byte count, or -1 when undeclared.
	Size int64

	// MD5 is the expected content digest in lowercase hex, or empty.
	MD5 string

	// Executable requests rwxr-xr-x permissions after installation.
	Executable bool

	// Optional marks entries whose total unavailability is an accepted
	// "skipped" outcome rather than a failure.
	Optional bool

	// MediaLabel names the disc expected to carry the file, for the
	// operator prompt.
	MediaLabel string
}

func (f File) Path() string { return f.Name }

// SourceName returns the logical name to look up on media.
func (f File) SourceName() string {
	if f.Source != "" {
		return f.Source
	}
	return f.Name
}

// Verify reports whether the installed file matches the declaration.
// Existence plus a size match (when a size is declared) is sufficient; a
// declared digest is compared for the report but gates the outcome only
// when enforceChecksum is set.
func (f File) Verify(root string, enforceChecksum bool) (bool, string) {
	full := filepath.Join(root, f.Name)
	fi, err := os.Stat(full)
	if err != nil {
		return false, "missing"
	}
	if !fi.Mode().IsRegular() {
		return false, "not a regular file"
	}
	if f.Size >= 0 && fi.Size() != f.Size {
		return false, fmt.Sprintf("size %d, expected %d", fi.Size(), f.Size)
	}
	if f.MD5 != "" {
		sum, err := fileMD5(full)
		if err != nil {
			return false, fmt.Sprintf("checksum unreadable: %v", err)
		}
		if sum != f.MD5 {
			if enforceChecksum {
				return false, fmt.Sprintf("checksum %s, expected %s", sum, f.MD5)
			}
			return true, fmt.Sprintf("checksum %s differs from %s (not enforced)", sum, f.MD5)
		}
	}
	return true, ""
}

// Dir is a directory entry.
type Dir struct {
	Name string
}

func (d Dir) Path() string { return d.Name }

// Verify reports whether the path exists and is a directory.
func (d Dir) Verify(root string) (bool, string) {
	fi, err := os.Stat(filepath.Join(root, d.Name))
	if err != nil {
		return false, "missing"
	}
	if !fi.IsDir() {
		return false, "not a directory"
	}
	return true, ""
}

// Install creates the directory if missing. Idempotent: an existing
// directory is not an error.
func (d Dir) Install(root string) error {
	err := os.Mkdir(filepath.Join(root, d.Name), 0755)
	if err != nil && os.IsExist(err) {
		return nil
	}
	return err
}

// Symlink is a symbolic link with a literal, unnormalized target string.
type Symlink struct {
	Name   string
	Target string
}

func (s Symlink) Path() string { return s.Name }

// Verify reports whether the path is a symlink whose stored target string
// equals the declared one byte for byte.
func (s Symlink) Verify(root string) (bool, string) {
	full := filepath.Join(root, s.Name)
	fi, err := os.Lstat(full)
	if err != nil {
		return false, "missing"
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return false, "not a symlink"
	}
	target, err := os.Readlink(full)
	if err != nil {
		return false, fmt.Sprintf("unreadable: %v", err)
	}
	if target != s.Target {
		return false, fmt.Sprintf("points at %s, expected %s", target, s.Target)
	}
	return true, ""
}

// Install creates the symlink if nothing is there. A symlink that already
// exists is left untouched even when its target differs; callers report it
// as verified. Long-standing behavior, preserved as-is.
func (s Symlink) Install(root string) error {
	full := filepath.Join(root, s.Name)
	if _, err := os.Lstat(full); err == nil {
		return nil
	}
	return os.Symlink(s.Target, full)
}

// Manifest is a named, ordered sequence of entries.
type Manifest struct {
	Name    string
	Entries []Entry
}

// fileMD5 computes the lowercase hex MD5 digest of a file's content.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
