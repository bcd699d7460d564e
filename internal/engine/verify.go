package engine

import (
	"fmt"

	"github.com/calaveras/discinstall/internal/manifest"
)

// Verifier checks an installed tree against a manifest without writing
// anything.
type Verifier struct {
	Target          string
	EnforceChecksum bool
}

// Verify reports one Result per manifest entry, in manifest order.
func (v *Verifier) Verify(m *manifest.Manifest) []Result {
	results := make([]Result, 0, len(m.Entries))
	for _, entry := range m.Entries {
		results = append(results, v.verifyEntry(entry))
	}
	return results
}

func (v *Verifier) verifyEntry(entry manifest.Entry) Result {
	var ok bool
	var msg string
	switch e := entry.(type) {
	case manifest.Dir:
		ok, msg = e.Verify(v.Target)
	case manifest.Symlink:
		ok, msg = e.Verify(v.Target)
	case manifest.File:
		ok, msg = e.Verify(v.Target, v.EnforceChecksum)
	default:
		return Result{Path: entry.Path(), Success: false, Message: fmt.Sprintf("unknown entry type %T", entry)}
	}

	if ok {
		if msg != "" {
			return Result{Path: entry.Path(), Success: true, Message: "verified: " + msg}
		}
		return Result{Path: entry.Path(), Success: true, Message: "verified"}
	}
	return Result{Path: entry.Path(), Success: false, Message: msg}
}
