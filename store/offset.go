package store

import (
	"sort"

	"github.com/bridgesearch/bridge/wire"
)

// OffsetIndexEntry is one entry of the outer offset index, describing
// one block. DocID is the id of the first document after that block
// (the block holds the documents below DocID). As written, Offset is
// the cumulative number of bytes emitted through the end of the block;
// as held by a Reader after shift-normalization, Offset is the
// starting byte of the block.
type OffsetIndexEntry struct {
	DocID  DocId
	Offset uint64
}

func (e OffsetIndexEntry) encode(w *wire.Writer) error {
	if err := w.PutU32(uint32(e.DocID)); err != nil {
		return err
	}
	return w.PutU64(e.Offset)
}

func decodeOffsetIndexEntry(r *wire.Reader) (OffsetIndexEntry, error) {
	docID, err := r.GetU32()
	if err != nil {
		return OffsetIndexEntry{}, err
	}
	offset, err := r.GetU64()
	if err != nil {
		return OffsetIndexEntry{}, err
	}
	return OffsetIndexEntry{DocID: DocId(docID), Offset: offset}, nil
}

// encodeOffsetIndex writes a length-prefixed vector of entries.
func encodeOffsetIndex(w *wire.Writer, entries []OffsetIndexEntry) error {
	if err := w.PutU64(uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := e.encode(w); err != nil {
			return err
		}
	}
	return nil
}

func decodeOffsetIndex(r *wire.Reader) ([]OffsetIndexEntry, error) {
	n, err := r.GetU64()
	if err != nil {
		return nil, err
	}
	entries := make([]OffsetIndexEntry, 0, n)
	for i := uint64(0); i < n; i++ {
		e, err := decodeOffsetIndexEntry(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// shiftNormalize converts a raw outer offset index, whose i-th entry
// gives the cumulative bytes written *after* block i, into one whose
// i-th entry gives the starting byte of block i. This keeps the
// writer's "next DocId, cumulative trailing offset" encoding and
// compensates here, rather than changing the writer to record each
// block's first or last DocId directly.
func shiftNormalize(raw []OffsetIndexEntry) []OffsetIndexEntry {
	out := make([]OffsetIndexEntry, len(raw))
	var prevOffset uint64
	for i, e := range raw {
		out[i] = OffsetIndexEntry{DocID: e.DocID, Offset: prevOffset}
		prevOffset = e.Offset
	}
	return out
}

// blockOffsetFor returns the entry of a shift-normalized outer offset
// index whose block contains docID. Each entry's DocID is the id of
// the first document of the *block after* the one the entry
// describes, so the containing entry is the one with the smallest
// DocID strictly greater than docID, not "greater or equal": a query
// equal to some entry's DocID names the first document of the
// following block, not the entry's own block. ok is false if docID is
// out of range.
func blockOffsetFor(normalized []OffsetIndexEntry, docID DocId) (OffsetIndexEntry, bool) {
	i := sort.Search(len(normalized), func(i int) bool {
		return normalized[i].DocID > docID
	})
	if i == len(normalized) {
		return OffsetIndexEntry{}, false
	}
	return normalized[i], true
}
