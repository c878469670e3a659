// Package directory implements bridge's WORM (write-once, many-read)
// namespace: a mapping from relative paths to byte streams, realized
// either entirely in memory (RamDirectory) or backed by a real
// filesystem and memory-mapped for reading (MmapDirectory). It is
// modeled on github.com/grailbio/bigslice/exec's Store interface
// (exec/store.go), which splits the same way into a memoryStore and a
// fileStore, generalized here from bigslice's task/partition keys to
// arbitrary relative paths and from "write once" to the full WORM
// operation set: open_read, remove, and replace_content.
package directory

import (
	mmap "github.com/edsrzf/mmap-go"
)

// ReadOnlySource is a polymorphic read-only byte-range view. Deref and
// Size are stable across the source's lifetime; Clone
// and Slice never copy the underlying bytes for the mmap and in-memory
// variants, they only adjust bookkeeping.
type ReadOnlySource interface {
	// Deref returns the bytes viewed by this source.
	Deref() []byte
	// Size returns len(Deref()) as an int64, matching the
	// offset/length arithmetic used throughout the store package.
	Size() int64
	// Clone returns a new source sharing the same underlying storage.
	Clone() ReadOnlySource
	// Slice returns a new source viewing the subrange [from, to) of
	// this source.
	Slice(from, to int64) ReadOnlySource
}

// EmptySource is the zero-length ReadOnlySource. It is a value, not a
// package-level mutable singleton, so callers cannot corrupt each
// other through a shared "empty source" convenience.
type EmptySource struct{}

func (EmptySource) Deref() []byte                { return nil }
func (EmptySource) Size() int64                  { return 0 }
func (EmptySource) Clone() ReadOnlySource         { return EmptySource{} }
func (EmptySource) Slice(from, to int64) ReadOnlySource {
	if from != 0 || to != 0 {
		panic("directory: slice out of range of empty source")
	}
	return EmptySource{}
}

// inMemorySource owns a byte buffer.
type inMemorySource struct {
	data []byte
}

// NewInMemorySource returns a ReadOnlySource that owns data directly
// (no copy is made).
func NewInMemorySource(data []byte) ReadOnlySource {
	return inMemorySource{data: data}
}

func (s inMemorySource) Deref() []byte        { return s.data }
func (s inMemorySource) Size() int64          { return int64(len(s.data)) }
func (s inMemorySource) Clone() ReadOnlySource { return s }
func (s inMemorySource) Slice(from, to int64) ReadOnlySource {
	return inMemorySource{data: s.data[from:to]}
}

// mmapSource is a ReadOnlySource backed by a memory-mapped file region.
// The region itself is owned and kept mapped by the MmapDirectory's
// open-file cache; mmapSource only ever holds a slice into it, so
// Clone and Slice are pure bookkeeping and never touch the OS.
type mmapSource struct {
	region    mmap.MMap
	off, size int64
}

// newMmapSource wraps a cached mapping as a source covering its entire
// extent.
func newMmapSource(region mmap.MMap) ReadOnlySource {
	return mmapSource{region: region, off: 0, size: int64(len(region))}
}

func (s mmapSource) Deref() []byte {
	return s.region[s.off : s.off+s.size]
}

func (s mmapSource) Size() int64 { return s.size }

func (s mmapSource) Clone() ReadOnlySource { return s }

func (s mmapSource) Slice(from, to int64) ReadOnlySource {
	return mmapSource{region: s.region, off: s.off + from, size: to - from}
}
