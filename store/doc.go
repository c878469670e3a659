// Package store implements bridge's document store: a write-once,
// block-structured file format that packs schema-typed documents into
// compressed, addressable blocks and retrieves any document by its
// sequential DocId in amortized constant time.
//
// The on-disk layout is modeled on
// github.com/grailbio/bigslice/mapio's sorted on-disk map
// (mapio/writer.go, mapio/map.go): a sequence of length-prefixed
// blocks, each independently decodable, followed by an outer index and
// a fixed trailer giving the index's position. Where mapio indexes by
// an arbitrary lexicographic key, store indexes by a dense,
// monotonically increasing DocId, so the outer index is a sorted list
// of (DocId, offset) pairs searched by id rather than by key
// comparison, and the intra-block index is a plain DocId->offset map
// rather than mapio's prefix-compressed restart points.
package store

// DocId identifies a document within a single store file: a gapless,
// monotonically increasing counter assigned by Writer starting at 0.
type DocId uint32
