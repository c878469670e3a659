package directory

import (
	"io"
	"testing"

	"github.com/bridgesearch/bridge/errors"
)

func newTestMmapDir(t *testing.T) *MmapDirectory {
	t.Helper()
	d, err := NewMmapDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMmapDirectoryWriteReadRoundTrip(t *testing.T) {
	d := newTestMmapDir(t)
	writeAll(t, d, "a/b.bin", []byte("hello mmap"))

	src, err := d.Source("a/b.bin")
	if err != nil {
		t.Fatal(err)
	}
	if string(src.Deref()) != "hello mmap" {
		t.Fatalf("got %q", src.Deref())
	}

	r, err := d.OpenRead("a/b.bin")
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello mmap" {
		t.Fatalf("got %q", got)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestMmapDirectoryEmptyFileSource(t *testing.T) {
	d := newTestMmapDir(t)
	writeAll(t, d, "empty", nil)
	src, err := d.Source("empty")
	if err != nil {
		t.Fatal(err)
	}
	if src.Size() != 0 {
		t.Fatalf("got size %d, want 0", src.Size())
	}
}

func TestMmapDirectorySourceCached(t *testing.T) {
	d := newTestMmapDir(t)
	writeAll(t, d, "a", []byte("content"))
	s1, err := d.Source("a")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := d.Source("a")
	if err != nil {
		t.Fatal(err)
	}
	if string(s1.Deref()) != string(s2.Deref()) {
		t.Fatalf("cached source mismatch")
	}
}

func TestMmapDirectoryOpenWriteExistingFails(t *testing.T) {
	d := newTestMmapDir(t)
	writeAll(t, d, "a", []byte("x"))
	if _, err := d.OpenWrite("a"); !errors.Is(err, errors.FileAlreadyExists) {
		t.Fatalf("got %v, want FileAlreadyExists", err)
	}
}

func TestMmapDirectorySourceMissingFails(t *testing.T) {
	d := newTestMmapDir(t)
	if _, err := d.Source("nope"); !errors.Is(err, errors.FileNotFound) {
		t.Fatalf("got %v, want FileNotFound", err)
	}
}

func TestMmapDirectoryWriteLockDeniesConcurrentAccess(t *testing.T) {
	d := newTestMmapDir(t)
	w, err := d.OpenWrite("a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.OpenRead("a"); !errors.Is(err, errors.AlreadyLocked) {
		t.Fatalf("got %v, want AlreadyLocked", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// TestMmapDirectoryReplaceContentAtomicity exercises the
// real-filesystem implementation's atomic replace: a mapping
// acquired before ReplaceContent must keep observing the old bytes,
// since rename never disturbs an already-mapped inode.
func TestMmapDirectoryReplaceContentAtomicity(t *testing.T) {
	d := newTestMmapDir(t)
	writeAll(t, d, "a", []byte("old-content"))

	oldSrc, err := d.Source("a")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ReplaceContent("a", []byte("new-content-longer")); err != nil {
		t.Fatal(err)
	}
	newSrc, err := d.Source("a")
	if err != nil {
		t.Fatal(err)
	}
	if string(oldSrc.Deref()) != "old-content" {
		t.Fatalf("old source mutated: got %q", oldSrc.Deref())
	}
	if string(newSrc.Deref()) != "new-content-longer" {
		t.Fatalf("new source stale: got %q", newSrc.Deref())
	}
}

func TestMmapDirectorySyncIsNoopOnEmptyRoot(t *testing.T) {
	d := newTestMmapDir(t)
	if err := d.Sync(); err != nil {
		t.Fatal(err)
	}
}

func TestMmapDirectorySyncFlushesWrittenFiles(t *testing.T) {
	d := newTestMmapDir(t)
	writeAll(t, d, "a", []byte("x"))
	writeAll(t, d, "sub/b", []byte("y"))
	if err := d.Sync(); err != nil {
		t.Fatal(err)
	}
}
