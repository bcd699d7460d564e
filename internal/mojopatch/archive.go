// Package mojopatch reads the legacy mojopatch self-extracting archive
// format: a fixed ASCII signature, a run of header strings, then a strict
// sequence of opcode-tagged operation records terminated by a single DONE.
// Add and Replace records carry their payload bytes inline.
//
// Only reading is supported; delta (PATCH) payloads are not, because the
// legacy format gives no reliable way to skip past them (see ErrUnsupportedPatch).
package mojopatch

import (
	"errors"
	"fmt"
	"io"

	"github.com/calaveras/discinstall/internal/binio"
)

var (
	// ErrBadSignature is returned when the first 46 bytes are not the
	// mojopatch signature.
	ErrBadSignature = errors.New("mojopatch: bad signature")

	// ErrTruncated is returned when the stream ends before a DONE record.
	ErrTruncated = errors.New("mojopatch: truncated operation stream")

	// ErrUnsupportedPatch is returned when the archive contains a PATCH
	// record. Its delta payload has no recorded length, so a linear scan
	// cannot resynchronize past it; failing beats silently miscounting.
	ErrUnsupportedPatch = errors.New("mojopatch: unsupported operation PATCH")
)

// Archive is a parsed mojopatch archive. The operation records are scanned
// once at Open; payload bytes are read on demand through FindEntry.
type Archive struct {
	cur     *binio.Cursor
	records []OperationRecord

	// Header metadata, retained for listings only.
	Product    string
	Identifier string
	Version    string
	NewVersion string
}

// Open parses the archive signature, header and operation stream from rs.
// The stream must remain open for as long as FindEntry readers are in use.
func Open(rs io.ReadSeeker) (*Archive, error) {
	cur := binio.NewCursor(rs)
	if err := cur.Seek(0); err != nil {
		return nil, fmt.Errorf("mojopatch: seek: %w", err)
	}

	sig, err := cur.ReadBytes(len(Signature))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if string(sig) != Signature {
		return nil, ErrBadSignature
	}

	a := &Archive{cur: cur}
	if err := a.readHeader(); err != nil {
		return nil, err
	}
	if err := a.readOperations(); err != nil {
		return nil, err
	}
	return a, nil
}

// readHeader consumes the fixed run of header fields. None of them affect
// parsing; they are consumed so the cursor lands on the first opcode, and a
// few are kept for listings.
func (a *Archive) readHeader() error {
	fields := []struct {
		name string
		dst  *string
	}{
		{"product", &a.Product},
		{"identifier", &a.Identifier},
		{"version", &a.Version},
		{"newversion", &a.NewVersion},
		{"readme", nil},
	}
	for _, f := range fields {
		s, err := a.cur.ReadString()
		if err != nil {
			return fmt.Errorf("mojopatch: header field %s: %w", f.name, err)
		}
		if f.dst != nil {
			*f.dst = s
		}
	}

	// Readme body is the format's only NUL-terminated string.
	if _, err := a.cur.ReadCString(); err != nil {
		return fmt.Errorf("mojopatch: header field readme text: %w", err)
	}

	for _, name := range []string{"renamedir", "titlebar", "startupmsg"} {
		if _, err := a.cur.ReadString(); err != nil {
			return fmt.Errorf("mojopatch: header field %s: %w", name, err)
		}
	}
	return nil
}

// readOperations scans records until DONE. For Add/Replace the payload is
// skipped, never buffered; the declared size is what keeps the scan aligned
// on the next opcode.
func (a *Archive) readOperations() error {
	for {
		opByte, err := a.cur.ReadBytes(1)
		if err != nil {
			return fmt.Errorf("%w: expected opcode: %v", ErrTruncated, err)
		}
		op := Opcode(opByte[0])

		switch op {
		case OpDone:
			a.records = append(a.records, OperationRecord{Op: OpDone})
			return nil

		case OpDelete, OpDeleteDir:
			path, err := a.cur.ReadString()
			if err != nil {
				return fmt.Errorf("%w: %s path: %v", ErrTruncated, op, err)
			}
			a.records = append(a.records, OperationRecord{Op: op, Path: path})

		case OpAddDir:
			rec := OperationRecord{Op: op}
			if rec.Path, err = a.cur.ReadString(); err != nil {
				return fmt.Errorf("%w: %s path: %v", ErrTruncated, op, err)
			}
			if rec.Mode, err = a.cur.ReadUint32(); err != nil {
				return fmt.Errorf("%w: %s mode: %v", ErrTruncated, op, err)
			}
			a.records = append(a.records, rec)

		case OpAdd, OpReplace:
			rec, err := a.readAddLike(op)
			if err != nil {
				return err
			}
			a.records = append(a.records, rec)

		case OpPatch:
			// Consume the header fields so the failure points at the record,
			// then refuse: the delta payload length cannot be skipped.
			if err := a.readPatchHeader(); err != nil {
				return err
			}
			return ErrUnsupportedPatch

		default:
			return fmt.Errorf("mojopatch: unknown opcode %d", byte(op))
		}
	}
}

func (a *Archive) readAddLike(op Opcode) (OperationRecord, error) {
	rec := OperationRecord{Op: op}
	var err error
	if rec.Path, err = a.cur.ReadString(); err != nil {
		return rec, fmt.Errorf("%w: %s path: %v", ErrTruncated, op, err)
	}
	if rec.Size, err = a.cur.ReadUint32(); err != nil {
		return rec, fmt.Errorf("%w: %s size: %v", ErrTruncated, op, err)
	}
	if rec.MD5, err = a.cur.ReadString(); err != nil {
		return rec, fmt.Errorf("%w: %s md5: %v", ErrTruncated, op, err)
	}
	if rec.Mode, err = a.cur.ReadUint32(); err != nil {
		return rec, fmt.Errorf("%w: %s mode: %v", ErrTruncated, op, err)
	}
	if rec.PayloadOffset, err = a.cur.Tell(); err != nil {
		return rec, fmt.Errorf("mojopatch: %s payload offset: %w", op, err)
	}
	if err = a.cur.Skip(int64(rec.Size)); err != nil {
		return rec, fmt.Errorf("%w: %s payload: %v", ErrTruncated, op, err)
	}
	return rec, nil
}

func (a *Archive) readPatchHeader() error {
	if _, err := a.cur.ReadString(); err != nil { // path
		return fmt.Errorf("%w: PATCH path: %v", ErrTruncated, err)
	}
	if _, err := a.cur.ReadString(); err != nil { // md5 before patching
		return fmt.Errorf("%w: PATCH md5 old: %v", ErrTruncated, err)
	}
	if _, err := a.cur.ReadString(); err != nil { // md5 after patching
		return fmt.Errorf("%w: PATCH md5 new: %v", ErrTruncated, err)
	}
	for _, field := range []string{"size", "delta size", "mode"} {
		if _, err := a.cur.ReadUint32(); err != nil {
			return fmt.Errorf("%w: PATCH %s: %v", ErrTruncated, field, err)
		}
	}
	return nil
}

// Records returns the parsed operation records in archive order, the
// terminating DONE included.
func (a *Archive) Records() []OperationRecord {
	return a.records
}

// FindEntry locates the first Add or Replace record whose path equals name
// and whose stored size and md5 match the caller's expectations. Pass
// size < 0 or an empty md5 to skip that check. It returns a reader bounded
// to exactly the record's payload, or found=false when no record matches.
//
// First match wins: the scan never prefers a later, "better" record.
func (a *Archive) FindEntry(name string, size int64, md5 string) (io.Reader, bool, error) {
	for _, rec := range a.records {
		if rec.Op != OpAdd && rec.Op != OpReplace {
			continue
		}
		if rec.Path != name {
			continue
		}
		if size >= 0 && int64(rec.Size) != size {
			continue
		}
		if md5 != "" && rec.MD5 != md5 {
			continue
		}
		if err := a.cur.Seek(rec.PayloadOffset); err != nil {
			return nil, false, fmt.Errorf("mojopatch: seek payload of %s: %w", rec.Path, err)
		}
		return io.LimitReader(a.cur, int64(rec.Size)), true, nil
	}
	return nil, false, nil
}
