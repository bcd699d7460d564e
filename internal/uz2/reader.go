// Package uz2 decodes UZ2 block-compressed streams.
//
// A UZ2 stream is a sequence of independently compressed blocks, each framed
// by two u32 little-endian fields (compressed length, then uncompressed
// length) followed by exactly that many compressed bytes. The block bodies
// are raw DEFLATE with no zlib wrapper. The stream ends where the file ends;
// there is no trailer.
package uz2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultMaxBlock is a block-size ceiling comfortably above the largest
// block the legacy compressor ever produced (32 KiB input windows).
const DefaultMaxBlock = 64 * 1024

var (
	// ErrTruncatedHeader is returned when a stream ends inside a block
	// header. A stream ending exactly on a block boundary is a clean EOF,
	// not this error.
	ErrTruncatedHeader = errors.New("uz2: truncated block header")

	// ErrBlockTooLarge is returned when a block declares an uncompressed
	// size larger than the caller's buffer limit.
	ErrBlockTooLarge = errors.New("uz2: block exceeds maximum size")

	// ErrCorruptBlock is returned when a block body cannot be inflated or
	// inflates to a length other than the header declared.
	ErrCorruptBlock = errors.New("uz2: corrupt block")
)

// BlockReader decodes one UZ2 block at a time from an underlying stream.
type BlockReader struct {
	r io.Reader
}

// NewBlockReader returns a BlockReader over r.
func NewBlockReader(r io.Reader) *BlockReader {
	return &BlockReader{r: r}
}

// NextBlock decodes the next block and returns its uncompressed bytes.
// It returns io.EOF when the stream ends cleanly on a block boundary.
// A block declaring more than max uncompressed bytes fails with
// ErrBlockTooLarge before any body bytes are consumed.
func (br *BlockReader) NextBlock(max int) ([]byte, error) {
	var hdr [8]byte
	n, err := io.ReadFull(br.r, hdr[:])
	if n == 0 && errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %d of 8 header bytes", ErrTruncatedHeader, n)
	}

	compressedLen := binary.LittleEndian.Uint32(hdr[0:4])
	uncompressedLen := binary.LittleEndian.Uint32(hdr[4:8])

	if int64(uncompressedLen) > int64(max) {
		return nil, fmt.Errorf("%w: block declares %d bytes, limit %d", ErrBlockTooLarge, uncompressedLen, max)
	}
	// DEFLATE expands incompressible input by well under 1%; a compressed
	// length far past the uncompressed ceiling is a garbage header, and
	// rejecting it here avoids allocating whatever it claims.
	if int64(compressedLen) > int64(max)+int64(max)/128+64 {
		return nil, fmt.Errorf("%w: compressed length %d implausible for %d-byte blocks", ErrCorruptBlock, compressedLen, max)
	}

	body := make([]byte, compressedLen)
	if _, err := io.ReadFull(br.r, body); err != nil {
		return nil, fmt.Errorf("%w: short block body: %v", ErrCorruptBlock, err)
	}

	fr := flate.NewReader(bytes.NewReader(body))
	out := make([]byte, 0, uncompressedLen)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, fr); err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrCorruptBlock, err)
	}
	if err := fr.Close(); err != nil {
		return nil, fmt.Errorf("%w: inflate close: %v", ErrCorruptBlock, err)
	}
	if buf.Len() != int(uncompressedLen) {
		return nil, fmt.Errorf("%w: inflated to %d bytes, header declares %d", ErrCorruptBlock, buf.Len(), uncompressedLen)
	}
	return buf.Bytes(), nil
}

// Reader adapts a UZ2 block stream to a plain io.Reader, decoding blocks on
// demand with the DefaultMaxBlock ceiling.
type Reader struct {
	br      *BlockReader
	pending []byte
	err     error
}

// NewReader returns an io.Reader yielding the concatenated uncompressed
// bytes of every block in r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: NewBlockReader(r)}
}

func (r *Reader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		block, err := r.br.NextBlock(DefaultMaxBlock)
		if err != nil {
			r.err = err
			return 0, err
		}
		r.pending = block
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
