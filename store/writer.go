package store

import (
	"bytes"

	"github.com/bridgesearch/bridge/directory"
	"github.com/bridgesearch/bridge/errors"
	"github.com/bridgesearch/bridge/schema"
	"github.com/bridgesearch/bridge/wire"
)

const defaultBlockSize = 1 << 14 // 16384 bytes

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBlockSize overrides the writer's block-sealing threshold.
func WithBlockSize(n int) WriterOption {
	return func(w *Writer) { w.blockSize = n }
}

// WithCompression overrides the writer's CompressionStrategy. The
// default is IdentityStrategy{}.
func WithCompression(s CompressionStrategy) WriterOption {
	return func(w *Writer) { w.compression = s }
}

// Writer accepts documents and packs them into a store file. It is
// modeled on mapio.Writer (mapio/writer.go): both buffer
// entries into a growing block, seal the block once it crosses a size
// threshold, and on Close append an index and trailer. Where
// mapio.Writer seals blocks on a lexicographic key boundary and tracks
// one index (data -> index block addresses), Writer tracks an intra-
// block DocId->offset map per block plus a single outer DocId->offset
// index, and optionally compresses each sealed block as a whole.
type Writer struct {
	dst directory.WriteCloser
	dw  *wire.Writer

	docID   DocId
	written uint64

	currentBlock        bytes.Buffer
	currentBlockOffsets blockOffsets
	outerOffsets        []OffsetIndexEntry

	blockSize   int
	compression CompressionStrategy

	closed bool
}

// NewWriter returns a Writer that appends a store file to dst. dst is
// closed by the Writer's Close.
func NewWriter(dst directory.WriteCloser, opts ...WriterOption) *Writer {
	w := &Writer{
		dst:                 dst,
		dw:                  wire.NewWriter(dst),
		blockSize:           defaultBlockSize,
		compression:         IdentityStrategy{},
		currentBlockOffsets: make(blockOffsets),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes fields as a new document and returns its assigned
// DocId. If the current block's buffered size exceeds the writer's
// block size after the document is added, the block is sealed
// immediately.
func (w *Writer) Write(fields []schema.Field) (DocId, error) {
	if w.closed {
		return 0, errors.E(errors.WriterClosed, "write after close")
	}
	offset := w.currentBlock.Len()
	enc := wire.NewWriter(&w.currentBlock)
	if err := enc.PutU64(uint64(len(fields))); err != nil {
		return 0, err
	}
	for _, f := range fields {
		if err := f.Encode(enc); err != nil {
			return 0, err
		}
	}

	id := w.docID
	w.currentBlockOffsets[id] = uint32(offset)
	w.docID++

	if w.currentBlock.Len() > w.blockSize {
		if err := w.store(); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// store seals the current block: it appends the intra-block offset
// map and a trailing payload-size marker, compresses the result, and
// appends it to the directory writer as length:u64 || bytes.
func (w *Writer) store() error {
	payloadSize := uint64(w.currentBlock.Len())

	enc := wire.NewWriter(&w.currentBlock)
	if err := encodeBlockOffsets(enc, w.currentBlockOffsets); err != nil {
		return err
	}
	if err := enc.PutU64(payloadSize); err != nil {
		return err
	}

	compressed, err := w.compression.Encode(w.currentBlock.Bytes())
	if err != nil {
		return err
	}

	before := w.dw.Written()
	if err := w.dw.PutBytes(compressed); err != nil {
		return errors.E(errors.IoError, err)
	}
	n := uint64(w.dw.Written() - before)

	w.written += n
	w.outerOffsets = append(w.outerOffsets, OffsetIndexEntry{DocID: w.docID, Offset: w.written})

	w.currentBlock.Reset()
	w.currentBlockOffsets = make(blockOffsets)
	return nil
}

// Close seals any partial block, appends the outer offset index and
// trailer, and closes the underlying directory writer. Close must be
// called exactly once; a writer dropped without being closed leaves a
// corrupt file.
func (w *Writer) Close() error {
	if w.closed {
		return errors.E(errors.WriterClosed, "close after close")
	}
	if w.currentBlock.Len() > 0 {
		if err := w.store(); err != nil {
			return err
		}
	}
	if err := encodeOffsetIndex(w.dw, w.outerOffsets); err != nil {
		return err
	}
	if err := w.dw.PutU64(w.written); err != nil {
		return err
	}
	w.closed = true
	return w.dst.Close()
}
