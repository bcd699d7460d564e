package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calaveras/discinstall/internal/manifest"
)

func TestVerifierReport(t *testing.T) {
	target := t.TempDir()
	if err := os.Mkdir(filepath.Join(target, "Help"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "Help", "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("lib-1.2.so.0", filepath.Join(target, "lib.so")); err != nil {
		t.Fatal(err)
	}

	m := &manifest.Manifest{Entries: []manifest.Entry{
		manifest.Dir{Name: "Help"},
		manifest.File{Name: "Help/a.txt", Size: 5, MD5: helloMD5},
		manifest.Symlink{Name: "lib.so", Target: "lib-1.2.so.0"},
		manifest.File{Name: "Help/missing.txt", Size: -1},
		manifest.File{Name: "Help/a.txt", Size: 99},
	}}

	v := &Verifier{Target: target}
	results := v.Verify(m)
	if len(results) != 5 {
		t.Fatalf("results = %d, want 5", len(results))
	}

	for i := 0; i < 3; i++ {
		if !results[i].Success {
			t.Errorf("entry %d: %+v, want verified", i, results[i])
		}
	}
	if results[3].Success || results[3].Message != "missing" {
		t.Errorf("missing file: %+v", results[3])
	}
	if results[4].Success || !strings.Contains(results[4].Message, "size") {
		t.Errorf("size mismatch: %+v", results[4])
	}
}

func TestVerifierEnforcedChecksum(t *testing.T) {
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "a.txt"), []byte("jello"), 0644); err != nil {
		t.Fatal(err)
	}

	m := &manifest.Manifest{Entries: []manifest.Entry{
		manifest.File{Name: "a.txt", Size: 5, MD5: helloMD5},
	}}

	relaxed := (&Verifier{Target: target}).Verify(m)
	if !relaxed[0].Success {
		t.Errorf("relaxed verify: %+v, want success", relaxed[0])
	}
	strict := (&Verifier{Target: target, EnforceChecksum: true}).Verify(m)
	if strict[0].Success {
		t.Errorf("strict verify: %+v, want failure", strict[0])
	}
}
