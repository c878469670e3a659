package directory

import "io"

// WriteCloser is the exclusive write stream returned by OpenWrite.
// Closing it releases the path's write lock.
type WriteCloser interface {
	io.WriteCloser
}

// ReadCloser is the shared read stream returned by OpenRead. Closing it
// releases the caller's hold on the path's shared-read lock.
type ReadCloser interface {
	io.ReadCloser
}

// Directory is bridge's WORM namespace: a mapping from relative paths to
// byte streams, realized by RamDirectory and MmapDirectory. All paths
// are relative to the directory's root.
type Directory interface {
	// OpenWrite returns an exclusive write stream for path. Fails with
	// FileAlreadyExists if path is already present, or AlreadyLocked if
	// the path is already open for writing or reading.
	OpenWrite(path string) (WriteCloser, error)
	// OpenRead returns a shared read stream for path. Fails with
	// FileNotFound if path is absent, or AlreadyLocked if the path is
	// open for writing.
	OpenRead(path string) (ReadCloser, error)
	// Source returns a ReadOnlySource viewing path's current contents.
	// Fails with FileNotFound if path is absent.
	Source(path string) (ReadOnlySource, error)
	// Remove deletes path. Existing sources acquired before the call
	// remain valid. Fails with FileNotFound or AlreadyLocked.
	Remove(path string) error
	// ReplaceContent atomically replaces path's contents with data.
	// Sources acquired before the call continue to observe the old
	// bytes; sources acquired after observe data.
	ReplaceContent(path string, data []byte) error
}
