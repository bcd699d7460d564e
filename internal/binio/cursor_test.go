package binio

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReadUint32(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte{0x78, 0x56, 0x34, 0x12}))
	v, err := c.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32: %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("value = %#x, want 0x12345678", v)
	}
}

func TestReadUint32Short(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte{0x01, 0x02}))
	if _, err := c.ReadUint32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadString(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{5, 0, 0, 0})
	buf.WriteString("hello")
	buf.WriteString("trailing")

	c := NewCursor(bytes.NewReader(buf.Bytes()))
	s, err := c.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if s != "hello" {
		t.Errorf("s = %q, want %q", s, "hello")
	}

	// The cursor must stop exactly after the counted bytes.
	off, err := c.Tell()
	if err != nil {
		t.Fatalf("Tell: %v", err)
	}
	if off != 9 {
		t.Errorf("offset after read = %d, want 9", off)
	}
}

func TestReadStringLengthOutOfRange(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte{0x00, 0x04, 0x00, 0x00})) // 1024
	if _, err := c.ReadString(); !errors.Is(err, ErrLengthOutOfRange) {
		t.Errorf("err = %v, want ErrLengthOutOfRange", err)
	}
}

func TestReadStringTruncatedBody(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte{10, 0, 0, 0, 'a', 'b'}))
	if _, err := c.ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReadCString(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte("readme text\x00rest")))
	s, err := c.ReadCString()
	if err != nil {
		t.Fatalf("ReadCString: %v", err)
	}
	if s != "readme text" {
		t.Errorf("s = %q, want %q", s, "readme text")
	}
	off, _ := c.Tell()
	if off != 12 {
		t.Errorf("offset = %d, want 12 (NUL consumed)", off)
	}
}

func TestReadCStringEmpty(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte{0}))
	s, err := c.ReadCString()
	if err != nil {
		t.Fatalf("ReadCString: %v", err)
	}
	if s != "" {
		t.Errorf("s = %q, want empty", s)
	}
}

func TestReadCStringUnterminated(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte("no terminator")))
	if _, err := c.ReadCString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSeekSkipTell(t *testing.T) {
	c := NewCursor(bytes.NewReader([]byte("0123456789")))
	if err := c.Seek(4); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := c.Skip(3); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	off, err := c.Tell()
	if err != nil {
		t.Fatalf("Tell: %v", err)
	}
	if off != 7 {
		t.Errorf("offset = %d, want 7", off)
	}
	b, err := c.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if string(b) != "78" {
		t.Errorf("bytes = %q, want %q", b, "78")
	}
}
