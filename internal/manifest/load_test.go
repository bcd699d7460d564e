package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `
name: Base Game
entries:
  - type: directory
    path: Help
  - type: file
    path: Help/a.txt
    size: 5
    md5: 5d41402abc4b2a76b9719d911017c592
  - type: file
    path: Help/b.txt
    optional: true
    media: "Play Disc"
  - type: file
    path: System/launcher
    source: bin/launcher
    executable: true
  - type: symlink
    path: System/libSDL.so
    target: libSDL-1.2.so.0
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Name != "Base Game" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(m.Entries))
	}

	if _, ok := m.Entries[0].(Dir); !ok {
		t.Errorf("entry 0 = %T, want Dir", m.Entries[0])
	}

	a, ok := m.Entries[1].(File)
	if !ok {
		t.Fatalf("entry 1 = %T, want File", m.Entries[1])
	}
	if a.Size != 5 || a.MD5 != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("a.txt metadata = size %d md5 %q", a.Size, a.MD5)
	}
	if a.SourceName() != "Help/a.txt" {
		t.Errorf("source defaults to path, got %q", a.SourceName())
	}

	b := m.Entries[2].(File)
	if !b.Optional || b.MediaLabel != "Play Disc" || b.Size != -1 {
		t.Errorf("b.txt = %+v", b)
	}

	launcher := m.Entries[3].(File)
	if !launcher.Executable || launcher.SourceName() != "bin/launcher" {
		t.Errorf("launcher = %+v", launcher)
	}

	link, ok := m.Entries[4].(Symlink)
	if !ok || link.Target != "libSDL-1.2.so.0" {
		t.Errorf("entry 4 = %#v", m.Entries[4])
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Entries) != 5 {
		t.Errorf("entries = %d, want 5", len(m.Entries))
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown type",
			doc:  "entries:\n  - type: device\n    path: dev\n",
			want: "unknown type",
		},
		{
			name: "missing path",
			doc:  "entries:\n  - type: file\n",
			want: "path is required",
		},
		{
			name: "absolute path",
			doc:  "entries:\n  - type: file\n    path: /etc/passwd\n",
			want: "must be relative",
		},
		{
			name: "escaping path",
			doc:  "entries:\n  - type: file\n    path: ../outside\n",
			want: "must be relative",
		},
		{
			name: "duplicate path",
			doc:  "entries:\n  - type: file\n    path: a\n  - type: file\n    path: a\n",
			want: "duplicate",
		},
		{
			name: "symlink without target",
			doc:  "entries:\n  - type: symlink\n    path: lnk\n",
			want: "target is required",
		},
		{
			name: "bad md5",
			doc:  "entries:\n  - type: file\n    path: a\n    md5: XYZ\n",
			want: "32 lowercase hex",
		},
		{
			name: "file before its directory",
			doc:  "entries:\n  - type: file\n    path: Help/a.txt\n  - type: directory\n    path: Help\n",
			want: "must follow its directory",
		},
		{
			name: "empty",
			doc:  "entries: []\n",
			want: "at least one entry",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if !strings.Contains(verr.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", verr.Error(), tc.want)
			}
		})
	}
}

func TestValidateFileInUndeclaredDirOK(t *testing.T) {
	// A parent directory outside the manifest is the operator's problem at
	// install time, not a validation failure.
	doc := "entries:\n  - type: file\n    path: Existing/a.txt\n"
	if _, err := Parse([]byte(doc)); err != nil {
		t.Errorf("Parse: %v", err)
	}
}
