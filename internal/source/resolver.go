// Package source locates the bytes for a logical file across heterogeneous
// installation media: block-compressed siblings, plain files and legacy
// mojopatch archives scattered over whichever volumes happen to be mounted.
//
// Candidates are enumerated lazily in a fixed priority order (compressed
// media first, then plain media, then patch archives) so that the cost of
// discovering a lower tier is paid only when every higher tier has been
// exhausted. The order and the volume glob set are part of the tool's
// external contract.
package source

import (
	"os"
	"path/filepath"
)

// Resolver enumerates candidate sources for logical files. Volumes holds
// glob patterns matching mounted volume roots (for example "/mnt/cdrom*").
type Resolver struct {
	Volumes []string
}

// Candidates returns a lazy iterator over every candidate that might supply
// name, in priority order. size < 0 means the expected size is unknown; an
// empty md5 means no digest expectation. Each call re-discovers media, so a
// fresh enumeration after a disc swap sees the new volume.
func (r *Resolver) Candidates(name string, size int64, md5 string) *Candidates {
	return &Candidates{r: r, name: name, size: size, md5: md5}
}

// Candidates walks the candidate tiers on demand.
type Candidates struct {
	r     *Resolver
	name  string
	size  int64
	md5   string
	tier  int
	queue []Candidate
}

// Next returns the next candidate in priority order, or false when every
// tier is exhausted.
func (it *Candidates) Next() (Candidate, bool) {
	for len(it.queue) == 0 {
		switch it.tier {
		case 0:
			it.queue = it.compressedTier()
		case 1:
			it.queue = it.plainTier()
		case 2:
			it.queue = it.archiveTier()
		default:
			return nil, false
		}
		it.tier++
	}
	c := it.queue[0]
	it.queue = it.queue[1:]
	return c, true
}

// compressedTier finds <name>.uz2 siblings on the mounted volumes.
func (it *Candidates) compressedTier() []Candidate {
	var out []Candidate
	for _, dir := range it.r.searchDirs() {
		path := filepath.Join(dir, filepath.FromSlash(it.name)+".uz2")
		if isRegular(path) {
			out = append(out, uz2Candidate{path: path})
		}
	}
	return out
}

// plainTier finds uncompressed copies of name, rejecting files whose size
// differs from the expectation when one was given.
func (it *Candidates) plainTier() []Candidate {
	var out []Candidate
	for _, dir := range it.r.searchDirs() {
		path := filepath.Join(dir, filepath.FromSlash(it.name))
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if it.size >= 0 && fi.Size() != it.size {
			continue
		}
		out = append(out, plainCandidate{path: path})
	}
	return out
}

// archiveTier finds every *.mojopatch archive on the mounted volumes. Each
// archive becomes one candidate; whether it actually holds the entry is
// settled at Open time.
func (it *Candidates) archiveTier() []Candidate {
	var out []Candidate
	for _, dir := range it.r.searchDirs() {
		matches, err := filepath.Glob(filepath.Join(dir, "*.mojopatch"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if isRegular(m) {
				out = append(out, archiveCandidate{
					archivePath: m,
					name:        it.name,
					size:        it.size,
					md5:         it.md5,
				})
			}
		}
	}
	return out
}

// searchDirs expands the volume glob set: for each volume pattern, the
// matches themselves, then CD* and *.app directories directly under them.
func (r *Resolver) searchDirs() []string {
	var dirs []string
	seen := make(map[string]bool)
	add := func(pattern string) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return
		}
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil || !fi.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			dirs = append(dirs, m)
		}
	}
	for _, vol := range r.Volumes {
		add(vol)
		add(filepath.Join(vol, "CD*"))
		add(filepath.Join(vol, "*.app"))
	}
	return dirs
}

func isRegular(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
