package store

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// CompressionStrategy transforms a sealed block's bytes before they are
// written to the directory, and reverses the transform on read: Decode
// must invert Encode exactly. mapio has no analogous concept since its
// blocks are never compressed.
type CompressionStrategy interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// IdentityStrategy is the default CompressionStrategy: it copies bytes
// unchanged.
type IdentityStrategy struct{}

// Encode implements CompressionStrategy.
func (IdentityStrategy) Encode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Decode implements CompressionStrategy.
func (IdentityStrategy) Decode(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// LZ4Strategy compresses blocks as self-contained LZ4 frames via
// github.com/pierrec/lz4/v4, so that a reader can decompress a block in
// isolation without a shared dictionary.
type LZ4Strategy struct{}

// Encode implements CompressionStrategy.
func (LZ4Strategy) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode implements CompressionStrategy.
func (LZ4Strategy) Decode(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
