package store

import (
	"bytes"

	"github.com/bridgesearch/bridge/directory"
	"github.com/bridgesearch/bridge/errors"
	"github.com/bridgesearch/bridge/schema"
	"github.com/bridgesearch/bridge/wire"
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithReaderCompression overrides the reader's CompressionStrategy. It
// must match the strategy the store was written with. The default is
// IdentityStrategy{}.
func WithReaderCompression(s CompressionStrategy) ReaderOption {
	return func(r *Reader) { r.compression = s }
}

// WithBTreeIndex makes the reader resolve DocIds through a
// github.com/google/btree-backed index instead of the default binary
// search over the outer offset slice.
func WithBTreeIndex() ReaderOption {
	return func(r *Reader) { r.useBTree = true }
}

// Reader retrieves documents from a store file by DocId. It is
// modeled on mapio.Map (mapio/map.go): both read a fixed
// trailer to locate an index, decode that index once at construction,
// and load the data block a lookup falls into on demand, keeping the
// most recently loaded block around. Where mapio.Map's index maps
// arbitrary keys to block addresses and is searched by key comparison,
// Reader's index maps DocId ranges to block offsets and is searched
// with blockOffsetFor (or, with WithBTreeIndex, a B-tree).
type Reader struct {
	source directory.ReadOnlySource

	index    outerIndex
	useBTree bool

	compression CompressionStrategy

	haveBlock           bool
	currentBlockEntry   OffsetIndexEntry
	currentBlock        []byte
	currentBlockOffsets blockOffsets
}

// NewReader constructs a Reader over source, reading and decoding its
// trailer and outer offset index immediately.
func NewReader(source directory.ReadOnlySource, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		source:      source,
		compression: IdentityStrategy{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	size := r.source.Size()
	if size < 8 {
		return errors.E(errors.SerializationError, "store too small to contain a trailer")
	}
	data := r.source.Deref()

	headerOffsetReader := wire.NewReader(bytes.NewReader(data[size-8:]))
	headerOffset, err := headerOffsetReader.GetU64()
	if err != nil {
		return err
	}
	if headerOffset > uint64(size-8) {
		return errors.E(errors.SerializationError, "header offset past end of store")
	}

	indexReader := wire.NewReader(bytes.NewReader(data[headerOffset : size-8]))
	raw, err := decodeOffsetIndex(indexReader)
	if err != nil {
		return err
	}
	normalized := shiftNormalize(raw)

	if r.useBTree {
		r.index = newBTreeOuterIndex(normalized)
	} else {
		r.index = sliceIndex(normalized)
	}
	return nil
}

// readBlock loads and decodes the block at offset, replacing the
// reader's cached block.
func (r *Reader) readBlock(entry OffsetIndexEntry) error {
	data := r.source.Deref()
	if entry.Offset+8 > uint64(len(data)) {
		return errors.E(errors.SerializationError, "block length prefix out of range")
	}
	lengthReader := wire.NewReader(bytes.NewReader(data[entry.Offset:]))
	compressed, err := lengthReader.GetBytes()
	if err != nil {
		return err
	}

	block, err := r.compression.Decode(compressed)
	if err != nil {
		return errors.E(errors.SerializationError, err)
	}
	if len(block) < 8 {
		return errors.E(errors.SerializationError, "block shorter than its trailer")
	}

	payloadSizeReader := wire.NewReader(bytes.NewReader(block[len(block)-8:]))
	payloadSize, err := payloadSizeReader.GetU64()
	if err != nil {
		return err
	}
	if payloadSize > uint64(len(block)-8) {
		return errors.E(errors.SerializationError, "block payload size out of range")
	}

	offsetsReader := wire.NewReader(bytes.NewReader(block[payloadSize : len(block)-8]))
	offsets, err := decodeBlockOffsets(offsetsReader)
	if err != nil {
		return err
	}

	r.currentBlock = block
	r.currentBlockOffsets = offsets
	r.currentBlockEntry = entry
	r.haveBlock = true
	return nil
}

// Get decodes and returns the document assigned docID. It fails with
// InvalidDocId if docID was never written.
func (r *Reader) Get(docID DocId) (*schema.Document, error) {
	entry, ok := r.index.lookup(docID)
	if !ok {
		return nil, errors.E(errors.InvalidDocId, "doc id out of range")
	}
	if !r.haveBlock || entry != r.currentBlockEntry {
		if err := r.readBlock(entry); err != nil {
			return nil, err
		}
	}

	shift, ok := r.currentBlockOffsets[docID]
	if !ok {
		return nil, errors.E(errors.InvalidDocId, "doc id not present in its block")
	}

	dr := wire.NewReader(bytes.NewReader(r.currentBlock[shift:]))
	numFields, err := dr.GetU64()
	if err != nil {
		return nil, err
	}
	doc := schema.NewDocument()
	for i := uint64(0); i < numFields; i++ {
		f, err := schema.DecodeField(dr)
		if err != nil {
			return nil, err
		}
		doc.AddField(f)
	}
	return doc, nil
}
