package cmd

import (
	"fmt"
	"os"

	"github.com/calaveras/discinstall/internal/manifest"
	"github.com/calaveras/discinstall/internal/source"
)

// loadManifest reads and validates the manifest catalogue.
func loadManifest() (*manifest.Manifest, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest %s: %w", manifestPath, err)
	}
	return m, nil
}

// newResolver creates the candidate resolver over the configured volumes.
func newResolver() *source.Resolver {
	return &source.Resolver{Volumes: volumes}
}

// formatSize renders an expected size, or a placeholder when unknown.
func formatSize(size int64) string {
	if size < 0 {
		return "unknown size"
	}
	return fmt.Sprintf("%d bytes", size)
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
