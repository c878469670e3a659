package directory

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	bridgeerrors "github.com/bridgesearch/bridge/errors"
	mmap "github.com/edsrzf/mmap-go"
	baseerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"golang.org/x/sync/errgroup"
)

// MmapDirectory is a Directory rooted at a filesystem path. It is
// modeled on github.com/grailbio/bigslice/exec's fileStore
// (exec/store.go), generalized from fileStore's fixed
// "{prefix}/{hash}/{op}/p{partition}" naming scheme to an arbitrary
// relative path under a root directory, and from a plain io.ReadCloser
// to an open-file cache of memory-mapped sources keyed by absolute
// path.
type MmapDirectory struct {
	root string

	mu    sync.Mutex
	locks map[string]*lockState
	cache map[string]mmap.MMap // keyed by absolute path
}

// NewMmapDirectory returns a Directory rooted at root. The root
// directory must already exist.
func NewMmapDirectory(root string) (*MmapDirectory, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	if !info.IsDir() {
		return nil, bridgeerrors.E(bridgeerrors.IoError, root+" is not a directory")
	}
	return &MmapDirectory{
		root:  root,
		locks: make(map[string]*lockState),
		cache: make(map[string]mmap.MMap),
	}, nil
}

func (d *MmapDirectory) abs(path string) string {
	return filepath.Join(d.root, path)
}

func (d *MmapDirectory) lockFor(path string) *lockState {
	ls, ok := d.locks[path]
	if !ok {
		ls = &lockState{}
		d.locks[path] = ls
	}
	return ls
}

// evictLocked drops path's cached mapping, if any, so that the next
// Source call maps the file afresh. The dropped region is not unmapped:
// sources handed out earlier still view it. Callers must hold d.mu.
func (d *MmapDirectory) evictLocked(abs string) error {
	delete(d.cache, abs)
	return nil
}

type mmapWriter struct {
	dir  *MmapDirectory
	path string
	f    *os.File
}

func (w *mmapWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *mmapWriter) Close() error {
	err := w.f.Close()
	w.dir.mu.Lock()
	defer w.dir.mu.Unlock()
	w.dir.lockFor(w.path).writers--
	log.Printf("directory: released write lock on %s", w.path)
	if err != nil {
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	return nil
}

// OpenWrite implements Directory.
func (d *MmapDirectory) OpenWrite(path string) (WriteCloser, error) {
	abs := d.abs(path)
	d.mu.Lock()
	ls := d.lockFor(path)
	if ls.writers > 0 || ls.readers > 0 {
		d.mu.Unlock()
		return nil, bridgeerrors.E(bridgeerrors.AlreadyLocked, path)
	}
	if _, err := os.Stat(abs); err == nil {
		d.mu.Unlock()
		return nil, bridgeerrors.E(bridgeerrors.FileAlreadyExists, path)
	}
	ls.writers++
	d.mu.Unlock()
	log.Printf("directory: acquired write lock on %s", path)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		d.mu.Lock()
		d.lockFor(path).writers--
		d.mu.Unlock()
		return nil, bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		d.mu.Lock()
		d.lockFor(path).writers--
		d.mu.Unlock()
		return nil, bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	return &mmapWriter{dir: d, path: path, f: f}, nil
}

type mmapReadCloser struct {
	dir  *MmapDirectory
	path string
	f    *os.File
}

func (r *mmapReadCloser) Read(p []byte) (int, error) {
	return r.f.Read(p)
}

func (r *mmapReadCloser) Close() error {
	err := r.f.Close()
	r.dir.mu.Lock()
	r.dir.lockFor(r.path).readers--
	r.dir.mu.Unlock()
	if err != nil {
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	return nil
}

// OpenRead implements Directory.
func (d *MmapDirectory) OpenRead(path string) (ReadCloser, error) {
	abs := d.abs(path)
	d.mu.Lock()
	ls := d.lockFor(path)
	if ls.writers > 0 {
		d.mu.Unlock()
		return nil, bridgeerrors.E(bridgeerrors.AlreadyLocked, path)
	}
	if _, err := os.Stat(abs); err != nil {
		d.mu.Unlock()
		return nil, bridgeerrors.E(bridgeerrors.FileNotFound, path)
	}
	ls.readers++
	d.mu.Unlock()

	f, err := os.Open(abs)
	if err != nil {
		d.mu.Lock()
		d.lockFor(path).readers--
		d.mu.Unlock()
		return nil, bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	return &mmapReadCloser{dir: d, path: path, f: f}, nil
}

// Source implements Directory, returning a memory-mapped ReadOnlySource
// for path. The mapping is cached by absolute path; repeated calls
// reuse the mapping already held open.
func (d *MmapDirectory) Source(path string) (ReadOnlySource, error) {
	abs := d.abs(path)
	d.mu.Lock()
	defer d.mu.Unlock()

	if region, ok := d.cache[abs]; ok {
		return newMmapSource(region), nil
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bridgeerrors.E(bridgeerrors.FileNotFound, path)
		}
		return nil, bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	if info.Size() == 0 {
		// mmap refuses to map a zero-length file; an empty file is a
		// valid, if degenerate, WORM artifact.
		return EmptySource{}, nil
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	d.cache[abs] = region
	return newMmapSource(region), nil
}

// Remove implements Directory.
func (d *MmapDirectory) Remove(path string) error {
	abs := d.abs(path)
	d.mu.Lock()
	defer d.mu.Unlock()
	ls := d.lockFor(path)
	if ls.writers > 0 || ls.readers > 0 {
		return bridgeerrors.E(bridgeerrors.AlreadyLocked, path)
	}
	if _, err := os.Stat(abs); err != nil {
		return bridgeerrors.E(bridgeerrors.FileNotFound, path)
	}
	if err := d.evictLocked(abs); err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	return nil
}

// ReplaceContent implements Directory by writing data to a sibling
// temporary file and renaming it over path, the standard POSIX
// atomic-replace idiom: any reader that opened a source before the
// rename keeps observing the old inode's bytes (mmap.Map already
// mapped the old data into memory; the rename does not disturb it),
// while any Source call after the rename opens and maps the new file.
func (d *MmapDirectory) ReplaceContent(path string, data []byte) error {
	abs := d.abs(path)
	d.mu.Lock()
	ls := d.lockFor(path)
	if ls.writers > 0 || ls.readers > 0 {
		d.mu.Unlock()
		return bridgeerrors.E(bridgeerrors.AlreadyLocked, path)
	}
	ls.writers++
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.lockFor(path).writers--
		d.mu.Unlock()
	}()

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return bridgeerrors.E(bridgeerrors.IsDirectory, path)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), filepath.Base(abs)+".tmp-*")
	if err != nil {
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}

	d.mu.Lock()
	err = d.evictLocked(abs)
	d.mu.Unlock()
	return err
}

// Sync flushes every regular file under the directory's root, so that writes become visible to readers opened through a different
// MmapDirectory handle on the same root. Files are synced concurrently
// with golang.org/x/sync/errgroup, the same
// fan-out-then-join tool bigslice pulls in (golang.org/x/sync is a
// direct bigslice dependency) for exactly this shape of "do N
// independent blocking operations, then report the first failure".
func (d *MmapDirectory) Sync() error {
	var g errgroup.Group
	err := filepath.Walk(d.root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		g.Go(func() error {
			f, err := os.Open(p)
			if err != nil {
				return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
			}
			defer f.Close()
			if err := f.Sync(); err != nil && err != io.EOF {
				return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
			}
			return nil
		})
		return nil
	})
	if err != nil {
		return bridgeerrors.E(bridgeerrors.IoError, baseerrors.E(err))
	}
	return g.Wait()
}
