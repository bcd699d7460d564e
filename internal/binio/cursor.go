// Package binio provides a little-endian byte cursor over a seekable stream.
//
// Both legacy on-disc formats this tool reads (mojopatch archives and UZ2
// block streams) encode integers as unsigned 32-bit little-endian values and
// strings either as a u32 length prefix followed by raw bytes or as a
// NUL-terminated run. The cursor carries no format knowledge beyond those
// primitives.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxStringLen bounds the length prefix of a counted string. The legacy
// format never produces strings this long; anything larger indicates a
// corrupt or misaligned stream.
const MaxStringLen = 1024

// ErrLengthOutOfRange is returned when a counted string declares a length
// of MaxStringLen or more.
var ErrLengthOutOfRange = errors.New("string length field out of range")

// Cursor reads little-endian primitives from a seekable stream.
type Cursor struct {
	rs io.ReadSeeker
}

// NewCursor returns a Cursor positioned wherever rs currently is.
func NewCursor(rs io.ReadSeeker) *Cursor {
	return &Cursor{rs: rs}
}

// Read implements io.Reader at the cursor's current position.
func (c *Cursor) Read(p []byte) (int, error) {
	return c.rs.Read(p)
}

// ReadUint32 reads one unsigned 32-bit little-endian integer.
func (c *Cursor) ReadUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(c.rs, buf[:]); err != nil {
		return 0, eofToUnexpected(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadBytes reads exactly n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.rs, buf); err != nil {
		return nil, eofToUnexpected(err)
	}
	return buf, nil
}

// ReadString reads a counted string: a u32 length followed by that many raw
// bytes, no terminator. Lengths of MaxStringLen or more fail with
// ErrLengthOutOfRange.
func (c *Cursor) ReadString() (string, error) {
	n, err := c.ReadUint32()
	if err != nil {
		return "", err
	}
	if n >= MaxStringLen {
		return "", fmt.Errorf("%w: %d", ErrLengthOutOfRange, n)
	}
	buf, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadCString accumulates bytes until a single NUL terminator. The NUL is
// consumed but not returned. A stream that ends before the terminator fails
// with io.ErrUnexpectedEOF.
func (c *Cursor) ReadCString() (string, error) {
	var out []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(c.rs, b[:]); err != nil {
			return "", eofToUnexpected(err)
		}
		if b[0] == 0 {
			return string(out), nil
		}
		out = append(out, b[0])
	}
}

// Seek repositions the cursor to an absolute offset.
func (c *Cursor) Seek(off int64) error {
	_, err := c.rs.Seek(off, io.SeekStart)
	return err
}

// Tell reports the current absolute offset.
func (c *Cursor) Tell() (int64, error) {
	return c.rs.Seek(0, io.SeekCurrent)
}

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n int64) error {
	_, err := c.rs.Seek(n, io.SeekCurrent)
	return err
}

// eofToUnexpected maps a bare io.EOF to io.ErrUnexpectedEOF. Callers of the
// cursor always expect the bytes they ask for; running out mid-read is a
// truncation, not a clean end of stream.
func eofToUnexpected(err error) error {
	if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
