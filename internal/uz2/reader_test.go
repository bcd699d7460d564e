package uz2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
)

// appendBlock frames deflate(chunk) as one UZ2 block and appends it to buf.
func appendBlock(t *testing.T, buf *bytes.Buffer, chunk []byte) {
	t.Helper()

	var body bytes.Buffer
	fw, err := flate.NewWriter(&body, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := fw.Write(chunk); err != nil {
		t.Fatalf("deflate write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("deflate close: %v", err)
	}

	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(body.Len()))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(chunk)))
	buf.Write(hdr[:])
	buf.Write(body.Bytes())
}

func TestNextBlockRoundTrip(t *testing.T) {
	chunks := [][]byte{
		[]byte("first block"),
		[]byte(strings.Repeat("payload ", 512)),
		[]byte("x"),
	}

	var stream bytes.Buffer
	for _, c := range chunks {
		appendBlock(t, &stream, c)
	}

	br := NewBlockReader(bytes.NewReader(stream.Bytes()))
	var got []byte
	for {
		block, err := br.NextBlock(DefaultMaxBlock)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextBlock: %v", err)
		}
		got = append(got, block...)
	}

	want := bytes.Join(chunks, nil)
	if !bytes.Equal(got, want) {
		t.Errorf("decoded %d bytes, want %d; content mismatch", len(got), len(want))
	}
}

func TestNextBlockTooLarge(t *testing.T) {
	var stream bytes.Buffer
	appendBlock(t, &stream, []byte("this block is bigger than the limit"))

	br := NewBlockReader(bytes.NewReader(stream.Bytes()))
	if _, err := br.NextBlock(8); !errors.Is(err, ErrBlockTooLarge) {
		t.Errorf("err = %v, want ErrBlockTooLarge", err)
	}
}

func TestNextBlockCleanEOF(t *testing.T) {
	br := NewBlockReader(bytes.NewReader(nil))
	if _, err := br.NextBlock(DefaultMaxBlock); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestNextBlockTruncatedHeader(t *testing.T) {
	// Five of the eight header bytes: not a clean EOF.
	br := NewBlockReader(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	if _, err := br.NextBlock(DefaultMaxBlock); !errors.Is(err, ErrTruncatedHeader) {
		t.Errorf("err = %v, want ErrTruncatedHeader", err)
	}
}

func TestNextBlockTruncatedBody(t *testing.T) {
	var stream bytes.Buffer
	appendBlock(t, &stream, []byte("some data to compress"))
	cut := stream.Bytes()[:stream.Len()-3]

	br := NewBlockReader(bytes.NewReader(cut))
	if _, err := br.NextBlock(DefaultMaxBlock); !errors.Is(err, ErrCorruptBlock) {
		t.Errorf("err = %v, want ErrCorruptBlock", err)
	}
}

func TestNextBlockImplausibleCompressedLength(t *testing.T) {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], 10<<20) // 10 MiB compressed
	binary.LittleEndian.PutUint32(hdr[4:8], 100)

	br := NewBlockReader(bytes.NewReader(hdr[:]))
	if _, err := br.NextBlock(DefaultMaxBlock); !errors.Is(err, ErrCorruptBlock) {
		t.Errorf("err = %v, want ErrCorruptBlock", err)
	}
}

func TestNextBlockLengthMismatch(t *testing.T) {
	var stream bytes.Buffer
	appendBlock(t, &stream, []byte("hello world"))

	// Corrupt the declared uncompressed length.
	raw := stream.Bytes()
	binary.LittleEndian.PutUint32(raw[4:8], 3)

	br := NewBlockReader(bytes.NewReader(raw))
	if _, err := br.NextBlock(DefaultMaxBlock); !errors.Is(err, ErrCorruptBlock) {
		t.Errorf("err = %v, want ErrCorruptBlock", err)
	}
}

func TestReaderStream(t *testing.T) {
	chunks := [][]byte{
		bytes.Repeat([]byte("abc"), 1000),
		[]byte("tail"),
	}
	var stream bytes.Buffer
	for _, c := range chunks {
		appendBlock(t, &stream, c)
	}

	got, err := io.ReadAll(NewReader(bytes.NewReader(stream.Bytes())))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, bytes.Join(chunks, nil)) {
		t.Errorf("stream content mismatch, got %d bytes", len(got))
	}
}

func TestReaderPropagatesBlockError(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := io.ReadAll(r); !errors.Is(err, ErrTruncatedHeader) {
		t.Errorf("err = %v, want ErrTruncatedHeader", err)
	}
}
