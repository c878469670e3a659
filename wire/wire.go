// Package wire implements bridge's binary archive format: the host-native
// encoding used by the schema and store packages to persist field values,
// offset indices, and block trailers. It is modeled on sliceio.Encoder and
// sliceio.Decoder (github.com/grailbio/bigslice/sliceio/codec.go), but
// where that codec streams gob-encoded columns for a distributed runtime,
// wire hand-encodes the small, closed set of primitive and composite
// shapes bridge's on-disk formats need: a fixed byte-for-byte binary
// archive contract, without gob's schema-evolution machinery, which
// bridge has no use for.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/bridgesearch/bridge/errors"
)

// order is the archive's native byte order. The archive makes no
// attempt at cross-host endianness: a single fixed order is picked
// once, the same choice mapio makes with its own
// `var order = binary.LittleEndian`.
var order = binary.LittleEndian

// ErrShortRead is returned (wrapped in a bridge errors.Error of kind
// SerializationError) whenever a Reader runs out of input before
// completing a decode.
var ErrShortRead = errors.E(errors.SerializationError, "unexpected end of input")

// Writer encodes primitives, strings, and containers into an
// io.Writer using bridge's binary archive format.
type Writer struct {
	w io.Writer
	n int64
}

// NewWriter returns a Writer that archives values into w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 { return w.n }

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return err
}

// PutU8 writes a single byte.
func (w *Writer) PutU8(v uint8) error {
	return w.write([]byte{v})
}

// PutBool writes a boolean as a single byte (0 or 1).
func (w *Writer) PutBool(v bool) error {
	if v {
		return w.PutU8(1)
	}
	return w.PutU8(0)
}

// PutU16 writes a uint16 in the archive's native byte order.
func (w *Writer) PutU16(v uint16) error {
	var b [2]byte
	order.PutUint16(b[:], v)
	return w.write(b[:])
}

// PutU32 writes a uint32 in the archive's native byte order.
func (w *Writer) PutU32(v uint32) error {
	var b [4]byte
	order.PutUint32(b[:], v)
	return w.write(b[:])
}

// PutU64 writes a uint64 in the archive's native byte order.
func (w *Writer) PutU64(v uint64) error {
	var b [8]byte
	order.PutUint64(b[:], v)
	return w.write(b[:])
}

// PutBytes writes length:u64 || bytes.
func (w *Writer) PutBytes(p []byte) error {
	if err := w.PutU64(uint64(len(p))); err != nil {
		return err
	}
	return w.write(p)
}

// PutString writes length:u64 || utf8-bytes.
func (w *Writer) PutString(s string) error {
	return w.PutBytes([]byte(s))
}

// Reader decodes primitives, strings, and containers from an io.Reader
// using bridge's binary archive format. Every method returns
// ErrShortRead (wrapped as a bridge SerializationError) if the
// underlying reader is exhausted before the value is fully read.
type Reader struct {
	r io.Reader
	n int64
}

// NewReader returns a Reader that decodes values from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read returns the number of bytes consumed so far.
func (r *Reader) Read() int64 { return r.n }

func (r *Reader) readFull(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.n += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrShortRead
		}
		return errors.E(errors.SerializationError, err)
	}
	return nil
}

// GetU8 reads a single byte.
func (r *Reader) GetU8() (uint8, error) {
	var b [1]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// GetBool reads a boolean encoded as a single byte.
func (r *Reader) GetBool() (bool, error) {
	v, err := r.GetU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// GetU16 reads a uint16 in the archive's native byte order.
func (r *Reader) GetU16() (uint16, error) {
	var b [2]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return order.Uint16(b[:]), nil
}

// GetU32 reads a uint32 in the archive's native byte order.
func (r *Reader) GetU32() (uint32, error) {
	var b [4]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return order.Uint32(b[:]), nil
}

// GetU64 reads a uint64 in the archive's native byte order.
func (r *Reader) GetU64() (uint64, error) {
	var b [8]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return order.Uint64(b[:]), nil
}

// maxSaneLength caps lengths read off the wire. Without a cap, a
// corrupt length prefix can drive a multi-exabyte allocation before the
// short read is even detected; decode must fail if a length exceeds
// available input, and this is the cheapest place to start rejecting
// obviously-impossible lengths.
const maxSaneLength = 1 << 34

// GetBytes reads length:u64 || bytes.
func (r *Reader) GetBytes() ([]byte, error) {
	n, err := r.GetU64()
	if err != nil {
		return nil, err
	}
	if n > maxSaneLength {
		return nil, errors.E(errors.SerializationError, "length exceeds available input")
	}
	p := make([]byte, n)
	if err := r.readFull(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetString reads length:u64 || utf8-bytes.
func (r *Reader) GetString() (string, error) {
	p, err := r.GetBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}
