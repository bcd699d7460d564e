// Package discinstall provides the public Go library API for discinstall.
//
// discinstall installs a multi-volume software distribution onto a target
// directory, resolving each required file from mounted removable media
// (plain files, UZ2 block-compressed siblings, or entries embedded in legacy
// mojopatch archives), verifying already-installed files, and prompting the
// operator for a disc swap when no source is currently available.
//
// # Basic Usage
//
//	client, err := discinstall.New(discinstall.Options{
//	    ManifestPath: "manifest.yaml",
//	    Target:       "/opt/game",
//	    Volumes:      []string{"/media/*", "/mnt/cdrom*"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := client.Install(ctx)
package discinstall

import (
	"context"
	"fmt"
	"time"

	"github.com/calaveras/discinstall/internal/engine"
	"github.com/calaveras/discinstall/internal/manifest"
	"github.com/calaveras/discinstall/internal/source"
)

// Options configures a Client.
type Options struct {
	// ManifestPath locates the manifest catalogue file.
	ManifestPath string

	// Target is the installation root directory.
	Target string

	// Volumes holds glob patterns matching mounted volume roots.
	Volumes []string

	// EnforceChecksum makes declared digests gate verification and copies.
	EnforceChecksum bool

	// Prompter receives media-swap requests. Nil suppresses prompting.
	Prompter Prompter

	// Interrupt delivers operator interrupts to the install loop.
	Interrupt <-chan struct{}

	// RetryWait overrides the pause between retries. Zero means the
	// engine default.
	RetryWait time.Duration

	// Progress, when set, receives each entry's result as it completes.
	Progress func(Result)
}

// Client installs and verifies a manifest.
type Client struct {
	opts Options
	m    *manifest.Manifest
}

// New loads and validates the manifest and returns a ready Client.
func New(opts Options) (*Client, error) {
	if opts.ManifestPath == "" {
		return nil, fmt.Errorf("ManifestPath is required")
	}
	if opts.Target == "" {
		return nil, fmt.Errorf("Target is required")
	}
	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	return &Client{opts: opts, m: m}, nil
}

// Install verifies and installs every manifest entry in order.
func (c *Client) Install(ctx context.Context) ([]Result, error) {
	inst := &engine.Installer{
		Resolver:        &source.Resolver{Volumes: c.opts.Volumes},
		Target:          c.opts.Target,
		Prompter:        c.opts.Prompter,
		Interrupt:       c.opts.Interrupt,
		RetryWait:       c.opts.RetryWait,
		EnforceChecksum: c.opts.EnforceChecksum,
		Progress:        c.opts.Progress,
	}
	return inst.Run(ctx, c.m)
}

// Verify checks the installed tree against the manifest without writing.
func (c *Client) Verify(ctx context.Context) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := &engine.Verifier{Target: c.opts.Target, EnforceChecksum: c.opts.EnforceChecksum}
	return v.Verify(c.m), nil
}
