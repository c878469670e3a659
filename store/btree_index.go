package store

import "github.com/google/btree"

// outerIndex resolves a DocId to the outer offset-index entry
// describing the block that contains it. The default implementation
// is a plain binary search over the shift-normalized slice
// (blockOffsetFor); btreeOuterIndex is an alternative for stores whose
// block count is large enough that the extra indirection of a B-tree
// pays for itself, enabled via WithBTreeIndex.
type outerIndex interface {
	lookup(docID DocId) (OffsetIndexEntry, bool)
}

type sliceIndex []OffsetIndexEntry

func (s sliceIndex) lookup(docID DocId) (OffsetIndexEntry, bool) {
	return blockOffsetFor([]OffsetIndexEntry(s), docID)
}

type offsetItem OffsetIndexEntry

func (a offsetItem) Less(b btree.Item) bool {
	return a.DocID < b.(offsetItem).DocID
}

// btreeOuterIndex indexes the outer offset index with
// github.com/google/btree, a dependency carried by bigslice's go.mod
// (for bigslice's own partition bookkeeping) but otherwise unused
// elsewhere in this module.
type btreeOuterIndex struct {
	tree *btree.BTree
}

func newBTreeOuterIndex(entries []OffsetIndexEntry) *btreeOuterIndex {
	t := btree.New(32)
	for _, e := range entries {
		t.ReplaceOrInsert(offsetItem(e))
	}
	return &btreeOuterIndex{tree: t}
}

func (b *btreeOuterIndex) lookup(docID DocId) (OffsetIndexEntry, bool) {
	if docID == ^DocId(0) {
		return OffsetIndexEntry{}, false
	}
	var (
		found OffsetIndexEntry
		ok    bool
	)
	b.tree.AscendGreaterOrEqual(offsetItem{DocID: docID + 1}, func(item btree.Item) bool {
		found = OffsetIndexEntry(item.(offsetItem))
		ok = true
		return false
	})
	return found, ok
}
