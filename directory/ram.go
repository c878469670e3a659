package directory

import (
	"bytes"
	"sync"

	"github.com/bridgesearch/bridge/errors"
)

// lockState tracks the single-writer/many-reader policy for one path.
// A path with writers > 0 cannot be opened for reading
// or writing again; a path with readers > 0 cannot be opened for
// writing. Locking never blocks: an operation that cannot proceed fails
// immediately with AlreadyLocked.
type lockState struct {
	writers int
	readers int
}

// RamDirectory is an in-memory Directory: a map from path to bytes.
// It is modeled on
// github.com/grailbio/bigslice/exec's memoryStore (exec/store.go),
// generalized from bigslice's task/partition keys to arbitrary string
// paths and from a write-once-only store to the full WORM operation
// set: OpenRead, Remove, and ReplaceContent.
type RamDirectory struct {
	mu    sync.Mutex
	files map[string][]byte
	locks map[string]*lockState
}

// NewRamDirectory returns an empty RamDirectory.
func NewRamDirectory() *RamDirectory {
	return &RamDirectory{
		files: make(map[string][]byte),
		locks: make(map[string]*lockState),
	}
}

func (d *RamDirectory) lockFor(path string) *lockState {
	ls, ok := d.locks[path]
	if !ok {
		ls = &lockState{}
		d.locks[path] = ls
	}
	return ls
}

type ramWriter struct {
	dir  *RamDirectory
	path string
	buf  bytes.Buffer
}

func (w *ramWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *ramWriter) Close() error {
	w.dir.mu.Lock()
	defer w.dir.mu.Unlock()
	w.dir.files[w.path] = w.buf.Bytes()
	w.dir.lockFor(w.path).writers--
	return nil
}

// OpenWrite implements Directory.
func (d *RamDirectory) OpenWrite(path string) (WriteCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.files[path]; ok {
		return nil, errors.E(errors.FileAlreadyExists, path)
	}
	ls := d.lockFor(path)
	if ls.writers > 0 || ls.readers > 0 {
		return nil, errors.E(errors.AlreadyLocked, path)
	}
	ls.writers++
	return &ramWriter{dir: d, path: path}, nil
}

type ramReader struct {
	dir  *RamDirectory
	path string
	*bytes.Reader
}

func (r *ramReader) Close() error {
	r.dir.mu.Lock()
	defer r.dir.mu.Unlock()
	r.dir.lockFor(r.path).readers--
	return nil
}

// OpenRead implements Directory.
func (d *RamDirectory) OpenRead(path string) (ReadCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ls := d.lockFor(path)
	if ls.writers > 0 {
		return nil, errors.E(errors.AlreadyLocked, path)
	}
	data, ok := d.files[path]
	if !ok {
		return nil, errors.E(errors.FileNotFound, path)
	}
	ls.readers++
	return &ramReader{dir: d, path: path, Reader: bytes.NewReader(data)}, nil
}

// Source implements Directory. Source takes no per-path read lock (it
// holds d.mu only while looking up the entry): it observes whatever
// bytes are currently
// committed for path, matching ReplaceContent's atomicity contract
// (a source acquired before a ReplaceContent call keeps viewing the
// old bytes, since RamDirectory never mutates a []byte in place, only
// swaps the map entry under d.mu).
func (d *RamDirectory) Source(path string) (ReadOnlySource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[path]
	if !ok {
		return nil, errors.E(errors.FileNotFound, path)
	}
	return NewInMemorySource(data), nil
}

// Remove implements Directory.
func (d *RamDirectory) Remove(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ls := d.lockFor(path)
	if ls.writers > 0 || ls.readers > 0 {
		return errors.E(errors.AlreadyLocked, path)
	}
	if _, ok := d.files[path]; !ok {
		return errors.E(errors.FileNotFound, path)
	}
	delete(d.files, path)
	return nil
}

// ReplaceContent implements Directory.
func (d *RamDirectory) ReplaceContent(path string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ls := d.lockFor(path)
	if ls.writers > 0 || ls.readers > 0 {
		return errors.E(errors.AlreadyLocked, path)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	d.files[path] = cp
	return nil
}
