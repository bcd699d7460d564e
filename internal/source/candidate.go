package source

import (
	"fmt"
	"io"
	"os"

	"github.com/calaveras/discinstall/internal/mojopatch"
	"github.com/calaveras/discinstall/internal/uz2"
)

// Candidate is one concrete origin that may supply the bytes of a logical
// file. Opening may fail for many reasons (a bad signature, a corrupt block,
// an unreadable disc); any such failure disqualifies only this candidate.
type Candidate interface {
	// Open returns the candidate's decoded byte stream. The caller owns the
	// returned closer and must close it before opening another candidate.
	Open() (io.ReadCloser, error)

	// String describes the candidate for logs and operator messages.
	String() string
}

// plainCandidate is an uncompressed file sitting on a mounted volume.
type plainCandidate struct {
	path string
}

func (c plainCandidate) Open() (io.ReadCloser, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.path, err)
	}
	return f, nil
}

func (c plainCandidate) String() string { return c.path }

// uz2Candidate is a block-compressed sibling (<name>.uz2) on a mounted
// volume, decoded through the UZ2 stream reader.
type uz2Candidate struct {
	path string
}

func (c uz2Candidate) Open() (io.ReadCloser, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.path, err)
	}
	return &decodedFile{r: uz2.NewReader(f), f: f}, nil
}

func (c uz2Candidate) String() string { return c.path + " (uz2)" }

// archiveCandidate is an Add/Replace entry inside a mojopatch archive. The
// archive is parsed and queried at Open time so that discovery stays cheap.
type archiveCandidate struct {
	archivePath string
	name        string
	size        int64
	md5         string
}

func (c archiveCandidate) Open() (io.ReadCloser, error) {
	f, err := os.Open(c.archivePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.archivePath, err)
	}
	a, err := mojopatch.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parse %s: %w", c.archivePath, err)
	}
	r, found, err := a.FindEntry(c.name, c.size, c.md5)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locate %s in %s: %w", c.name, c.archivePath, err)
	}
	if !found {
		f.Close()
		return nil, fmt.Errorf("%s: no entry %s", c.archivePath, c.name)
	}
	return &decodedFile{r: r, f: f}, nil
}

func (c archiveCandidate) String() string {
	return fmt.Sprintf("%s (entry %s)", c.archivePath, c.name)
}

// decodedFile pairs a decoding reader with the file it draws from, so the
// file handle closes with the stream.
type decodedFile struct {
	r io.Reader
	f *os.File
}

func (d *decodedFile) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *decodedFile) Close() error               { return d.f.Close() }
