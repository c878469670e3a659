package store

import "github.com/bridgesearch/bridge/wire"

// blockOffsets is the intra-block DocId -> byte-offset map appended to
// a sealed block, analogous in purpose to mapio's block restart-point
// array (mapio/block.go) but keyed by DocId instead of a lexicographic
// key, since lookups inside a store block are by id, not by comparison.
type blockOffsets map[DocId]uint32

func encodeBlockOffsets(w *wire.Writer, m blockOffsets) error {
	if err := w.PutU64(uint64(len(m))); err != nil {
		return err
	}
	for id, off := range m {
		if err := w.PutU32(uint32(id)); err != nil {
			return err
		}
		if err := w.PutU32(off); err != nil {
			return err
		}
	}
	return nil
}

func decodeBlockOffsets(r *wire.Reader) (blockOffsets, error) {
	n, err := r.GetU64()
	if err != nil {
		return nil, err
	}
	m := make(blockOffsets, n)
	for i := uint64(0); i < n; i++ {
		id, err := r.GetU32()
		if err != nil {
			return nil, err
		}
		off, err := r.GetU32()
		if err != nil {
			return nil, err
		}
		m[DocId(id)] = off
	}
	return m, nil
}
