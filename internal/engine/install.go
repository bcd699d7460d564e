// Package engine drives manifest verification and installation. A single
// synchronous worker walks the manifest in declared order; for each file it
// tries candidate sources until one copies cleanly, prompting the operator
// for media and retrying when every source is exhausted. The only
// suspension point is the fixed wait between retries.
package engine

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/calaveras/discinstall/internal/manifest"
	"github.com/calaveras/discinstall/internal/sandbox"
	"github.com/calaveras/discinstall/internal/source"
)

// ErrInterrupted reports an operator interrupt that aborts the run (any
// interrupt outside a retry wait, or during the wait of a required entry).
var ErrInterrupted = errors.New("interrupted")

// DefaultRetryWait is the pause between media prompts and retry attempts.
const DefaultRetryWait = time.Second

// Installer verifies and installs a manifest against a target directory.
type Installer struct {
	Resolver *source.Resolver
	Target   string

	// Prompter receives media requests. Nil suppresses prompting.
	Prompter Prompter

	// Interrupt delivers operator interrupts. During a retry wait an
	// interrupt skips the current entry when it is optional and aborts the
	// run otherwise; anywhere else it aborts the run at the next state
	// boundary.
	Interrupt <-chan struct{}

	// RetryWait overrides DefaultRetryWait; zero means the default.
	RetryWait time.Duration

	// EnforceChecksum makes declared digests gate both verification and
	// copy acceptance. Off by default: size is considered sufficient for
	// large media assets.
	EnforceChecksum bool

	// Progress, when set, receives each entry's Result as it completes.
	Progress func(Result)

	// Detail, when set, receives diagnostic lines such as per-candidate
	// failure reasons. Results and errors never depend on it.
	Detail func(format string, args ...any)
}

func (e *Installer) logDetail(format string, args ...any) {
	if e.Detail != nil {
		e.Detail(format, args...)
	}
}

// Run processes every manifest entry in order. It returns the per-entry
// results produced so far and the error that stopped the run, if any.
// Entries are never reordered and never processed concurrently.
func (e *Installer) Run(ctx context.Context, m *manifest.Manifest) ([]Result, error) {
	var results []Result
	for _, entry := range m.Entries {
		if err := e.checkAbort(ctx); err != nil {
			return results, err
		}
		res, err := e.runEntry(ctx, entry)
		if err != nil {
			return results, err
		}
		if e.Progress != nil {
			e.Progress(res)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Installer) runEntry(ctx context.Context, entry manifest.Entry) (Result, error) {
	switch v := entry.(type) {
	case manifest.Dir:
		return e.installDir(v)
	case manifest.Symlink:
		return e.installSymlink(v)
	case manifest.File:
		return e.installFile(ctx, v)
	default:
		return Result{}, fmt.Errorf("unknown manifest entry type %T", entry)
	}
}

func (e *Installer) installDir(d manifest.Dir) (Result, error) {
	if ok, _ := d.Verify(e.Target); ok {
		return Result{Path: d.Name, Success: true, Message: "verified"}, nil
	}
	if err := d.Install(e.Target); err != nil {
		return Result{}, fmt.Errorf("creating directory %s: %w", d.Name, err)
	}
	return Result{Path: d.Name, Success: true, Message: "installed"}, nil
}

func (e *Installer) installSymlink(s manifest.Symlink) (Result, error) {
	if ok, _ := s.Verify(e.Target); ok {
		return Result{Path: s.Name, Success: true, Message: "verified"}, nil
	}
	if err := s.Install(e.Target); err != nil {
		return Result{}, fmt.Errorf("creating symlink %s: %w", s.Name, err)
	}
	if ok, _ := s.Verify(e.Target); ok {
		return Result{Path: s.Name, Success: true, Message: "installed"}, nil
	}
	// An existing symlink with another target is left in place and
	// accepted. Long-standing behavior, preserved as-is.
	return Result{Path: s.Name, Success: true, Message: "verified (existing symlink, different target)"}, nil
}

func (e *Installer) installFile(ctx context.Context, f manifest.File) (Result, error) {
	if ok, msg := f.Verify(e.Target, e.EnforceChecksum); ok {
		if msg != "" {
			return Result{Path: f.Name, Success: true, Message: "verified: " + msg}, nil
		}
		return Result{Path: f.Name, Success: true, Message: "verified"}, nil
	}

	dest, err := sandbox.ValidatePath(e.Target, f.Name)
	if err != nil {
		return Result{}, fmt.Errorf("entry %s: %w", f.Name, err)
	}

	prompted := false
	for {
		it := e.Resolver.Candidates(f.SourceName(), f.Size, f.MD5)
		for {
			cand, ok := it.Next()
			if !ok {
				break
			}
			if err := e.checkAbort(ctx); err != nil {
				return Result{}, err
			}
			installed, reason, err := e.copyCandidate(cand, f, dest)
			if err != nil {
				return Result{}, err
			}
			if installed {
				if f.Executable {
					if err := os.Chmod(dest, 0755); err != nil {
						return Result{}, fmt.Errorf("marking %s executable: %w", f.Name, err)
					}
				}
				return Result{Path: f.Name, Success: true, Message: "installed from " + cand.String()}, nil
			}
			e.logDetail("source rejected: %s", reason)
		}

		// Every tier exhausted. Ask for media once, then wait and retry the
		// whole enumeration against whatever is mounted by then.
		if !prompted {
			if e.Prompter != nil {
				e.Prompter.RequestMedia(MediaRequest{
					Label:    f.MediaLabel,
					Path:     f.SourceName(),
					Size:     f.Size,
					MD5:      f.MD5,
					Optional: f.Optional,
				})
			}
			prompted = true
		}

		skipped, err := e.wait(ctx, f.Optional)
		if err != nil {
			return Result{}, err
		}
		if skipped {
			return Result{Path: f.Name, Success: true, Message: "skipped"}, nil
		}
	}
}

// copyCandidate streams one candidate to dest while hashing and counting.
// A source-side failure or a size/digest mismatch disqualifies the
// candidate (installed=false, nil error) and leaves the partial destination
// in place for the next attempt to overwrite. A destination-side failure is
// returned as a run-fatal error.
func (e *Installer) copyCandidate(cand source.Candidate, f manifest.File, dest string) (installed bool, reason string, err error) {
	src, err := cand.Open()
	if err != nil {
		return false, err.Error(), nil
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		// Missing parent directories land here; the engine never creates
		// them, the manifest must order a directory entry first.
		return false, "", fmt.Errorf("creating %s: %w", dest, err)
	}

	hash := md5.New()
	var count int64
	buf := make([]byte, 32*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return false, "", fmt.Errorf("writing %s: %w", dest, werr)
			}
			hash.Write(buf[:n])
			count += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			return false, fmt.Sprintf("%s: %v", cand, rerr), nil
		}
	}
	if err := out.Close(); err != nil {
		return false, "", fmt.Errorf("closing %s: %w", dest, err)
	}

	if f.Size >= 0 && count != f.Size {
		return false, fmt.Sprintf("%s: copied %d bytes, expected %d", cand, count, f.Size), nil
	}
	if e.EnforceChecksum && f.MD5 != "" {
		sum := hex.EncodeToString(hash.Sum(nil))
		if sum != f.MD5 {
			return false, fmt.Sprintf("%s: checksum %s, expected %s", cand, sum, f.MD5), nil
		}
	}
	return true, "", nil
}

// wait pauses before the next retry. An operator interrupt during the wait
// skips an optional entry and aborts the run for a required one; context
// cancellation always aborts.
func (e *Installer) wait(ctx context.Context, optional bool) (skipped bool, err error) {
	d := e.RetryWait
	if d <= 0 {
		d = DefaultRetryWait
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-e.Interrupt:
		if optional {
			return true, nil
		}
		return false, ErrInterrupted
	}
}

// checkAbort drains a pending interrupt without blocking and honors context
// cancellation. Interrupts outside a retry wait abort the whole run.
func (e *Installer) checkAbort(ctx context.Context) error {
	select {
	case <-e.Interrupt:
		return ErrInterrupted
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
