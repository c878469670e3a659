package store

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/bridgesearch/bridge/directory"
	"github.com/bridgesearch/bridge/errors"
	"github.com/bridgesearch/bridge/schema"
)

func buildStore(t *testing.T, dir directory.Directory, path string, opts []WriterOption, docs [][]schema.Field) {
	t.Helper()
	wc, err := dir.OpenWrite(path)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(wc, opts...)
	for i, d := range docs {
		id, err := w.Write(d)
		if err != nil {
			t.Fatalf("doc %d: %v", i, err)
		}
		if int(id) != i {
			t.Fatalf("doc %d: got id %d", i, id)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func openReader(t *testing.T, dir directory.Directory, path string, opts ...ReaderOption) *Reader {
	t.Helper()
	src, err := dir.Source(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(src, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// TestTinyTextRoundTrip writes a single document with a stored text
// field and a stored numeric field and checks that Get returns both
// values unchanged.
func TestTinyTextRoundTrip(t *testing.T) {
	b := schema.NewSchemaBuilder()
	titleID, _ := b.AddTextField("title", schema.TextOptions{Stored: true})
	countID, _ := b.AddNumericField("count", schema.NumericOptions{Fast: true, Stored: true})
	_ = b.Build()

	d := directory.NewRamDirectory()
	docs := [][]schema.Field{
		{{ID: titleID, Value: schema.TextValue("Hello")}, {ID: countID, Value: schema.U32Value(42)}},
	}
	buildStore(t, d, "s", nil, docs)

	r := openReader(t, d, "s")
	got, err := r.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	title, ok := got.FirstByID(titleID)
	if !ok {
		t.Fatal("missing title field")
	}
	s, _ := title.Text()
	if s != "Hello" {
		t.Fatalf("got title %q", s)
	}
	count, ok := got.FirstByID(countID)
	if !ok {
		t.Fatal("missing count field")
	}
	n, _ := count.U32()
	if n != 42 {
		t.Fatalf("got count %d", n)
	}
}

const loremIpsum = "Lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt ut labore et dolore magna aliqua Ut enim ad minim veniam quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat Duis aute irure dolor in "

func lorem500() string {
	s := strings.Repeat(loremIpsum, 3)
	return s[:500]
}

// TestLoremIpsum100 writes 100 documents with sizable text fields,
// spanning multiple blocks, and spot-checks every fifth document's
// title survives the round trip.
func TestLoremIpsum100(t *testing.T) {
	b := schema.NewSchemaBuilder()
	bodyID, _ := b.AddTextField("body", schema.TextOptions{})
	titleID, _ := b.AddTextField("title", schema.TextOptions{})
	_ = b.Build()

	var docs [][]schema.Field
	for i := 0; i < 100; i++ {
		docs = append(docs, []schema.Field{
			{ID: bodyID, Value: schema.TextValue(lorem500())},
			{ID: titleID, Value: schema.TextValue("Doc " + strconv.Itoa(i))},
		})
	}

	d := directory.NewRamDirectory()
	buildStore(t, d, "s", nil, docs)
	r := openReader(t, d, "s")

	for i := 0; i < 100; i += 5 {
		got, err := r.Get(DocId(i))
		if err != nil {
			t.Fatalf("doc %d: %v", i, err)
		}
		v, ok := got.FirstByID(titleID)
		if !ok {
			t.Fatalf("doc %d: missing title", i)
		}
		s, _ := v.Text()
		want := "Doc " + strconv.Itoa(i)
		if s != want {
			t.Fatalf("doc %d: got title %q, want %q", i, s, want)
		}
	}
}

// TestMultiBlockBoundary writes documents sized so a document falls
// exactly on a block boundary and checks it is still retrievable.
func TestMultiBlockBoundary(t *testing.T) {
	b := schema.NewSchemaBuilder()
	bodyID, _ := b.AddTextField("body", schema.TextOptions{})
	_ = b.Build()

	body := strings.Repeat("x", 280)
	var docs [][]schema.Field
	for i := 0; i < 10; i++ {
		docs = append(docs, []schema.Field{{ID: bodyID, Value: schema.TextValue(fmt.Sprintf("%s-%d", body, i))}})
	}

	d := directory.NewRamDirectory()
	buildStore(t, d, "s", []WriterOption{WithBlockSize(1024)}, docs)
	r := openReader(t, d, "s")

	if len(r.index.(sliceIndex)) < 2 {
		t.Fatalf("expected at least two outer-offset entries, got %d", len(r.index.(sliceIndex)))
	}

	for _, i := range []DocId{3, 7} {
		got, err := r.Get(i)
		if err != nil {
			t.Fatalf("doc %d: %v", i, err)
		}
		v, ok := got.FirstByID(bodyID)
		if !ok {
			t.Fatalf("doc %d: missing body", i)
		}
		s, _ := v.Text()
		want := fmt.Sprintf("%s-%d", body, i)
		if s != want {
			t.Fatalf("doc %d: got %q, want %q", i, s, want)
		}
	}
}

// TestEmptyDocumentRoundTrip covers the §8 boundary behavior: a
// document with zero fields must round-trip.
func TestEmptyDocumentRoundTrip(t *testing.T) {
	d := directory.NewRamDirectory()
	buildStore(t, d, "s", nil, [][]schema.Field{{}, {{ID: 0, Value: schema.U32Value(1)}}})
	r := openReader(t, d, "s")

	got, err := r.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Fatalf("got %d fields, want 0", got.Len())
	}
}

// TestSingleBlockStore covers the §8 boundary behavior: a store whose
// documents never trigger a seal must still produce a readable
// trailer.
func TestSingleBlockStore(t *testing.T) {
	d := directory.NewRamDirectory()
	docs := [][]schema.Field{
		{{ID: 0, Value: schema.U32Value(1)}},
		{{ID: 0, Value: schema.U32Value(2)}},
		{{ID: 0, Value: schema.U32Value(3)}},
	}
	buildStore(t, d, "s", nil, docs)
	r := openReader(t, d, "s")
	for i, want := range []uint32{1, 2, 3} {
		got, err := r.Get(DocId(i))
		if err != nil {
			t.Fatal(err)
		}
		v, _ := got.FirstByID(0)
		n, _ := v.U32()
		if n != want {
			t.Fatalf("doc %d: got %d, want %d", i, n, want)
		}
	}
}

// TestOutOfRangeDocIdFails covers the §8 boundary behavior.
func TestOutOfRangeDocIdFails(t *testing.T) {
	d := directory.NewRamDirectory()
	buildStore(t, d, "s", nil, [][]schema.Field{{{ID: 0, Value: schema.U32Value(1)}}})
	r := openReader(t, d, "s")
	if _, err := r.Get(1); !errors.Is(err, errors.InvalidDocId) {
		t.Fatalf("got %v, want InvalidDocId", err)
	}
}

// TestOuterOffsetMonotonicity covers §8's universal invariant.
func TestOuterOffsetMonotonicity(t *testing.T) {
	body := strings.Repeat("y", 200)
	var docs [][]schema.Field
	for i := 0; i < 20; i++ {
		docs = append(docs, []schema.Field{{ID: 0, Value: schema.TextValue(body)}})
	}
	d := directory.NewRamDirectory()
	buildStore(t, d, "s", []WriterOption{WithBlockSize(512)}, docs)
	r := openReader(t, d, "s")

	entries := []OffsetIndexEntry(r.index.(sliceIndex))
	for i := 1; i < len(entries); i++ {
		if entries[i].DocID <= entries[i-1].DocID {
			t.Fatalf("doc ids not strictly increasing at %d", i)
		}
		if entries[i].Offset <= entries[i-1].Offset {
			t.Fatalf("offsets not strictly increasing at %d", i)
		}
	}
}

// TestCompressionTransparency covers §8's compression-transparency
// invariant for both shipped strategies.
func TestCompressionTransparency(t *testing.T) {
	for _, strategy := range []CompressionStrategy{IdentityStrategy{}, LZ4Strategy{}} {
		strategy := strategy
		t.Run(fmt.Sprintf("%T", strategy), func(t *testing.T) {
			d := directory.NewRamDirectory()
			docs := [][]schema.Field{
				{{ID: 0, Value: schema.TextValue("alpha")}},
				{{ID: 0, Value: schema.TextValue("beta")}},
				{{ID: 0, Value: schema.TextValue(strings.Repeat("gamma", 100))}},
			}
			buildStore(t, d, "s", []WriterOption{WithCompression(strategy), WithBlockSize(64)}, docs)
			r := openReader(t, d, "s", WithReaderCompression(strategy))

			for i, doc := range docs {
				got, err := r.Get(DocId(i))
				if err != nil {
					t.Fatalf("doc %d: %v", i, err)
				}
				v, _ := got.FirstByID(0)
				want, _ := doc[0].Value.Text()
				s, _ := v.Text()
				if s != want {
					t.Fatalf("doc %d: got %q, want %q", i, s, want)
				}
			}
		})
	}
}

// TestBTreeIndexAgreesWithSliceIndex exercises WithBTreeIndex against
// the same store the default index reads.
func TestBTreeIndexAgreesWithSliceIndex(t *testing.T) {
	body := strings.Repeat("z", 100)
	var docs [][]schema.Field
	for i := 0; i < 30; i++ {
		docs = append(docs, []schema.Field{{ID: 0, Value: schema.TextValue(body)}})
	}
	d := directory.NewRamDirectory()
	buildStore(t, d, "s", []WriterOption{WithBlockSize(256)}, docs)

	slice := openReader(t, d, "s")
	tree := openReader(t, d, "s", WithBTreeIndex())

	for i := 0; i < 30; i++ {
		a, err := slice.Get(DocId(i))
		if err != nil {
			t.Fatal(err)
		}
		b, err := tree.Get(DocId(i))
		if err != nil {
			t.Fatal(err)
		}
		if !a.Equal(b) {
			t.Fatalf("doc %d: slice and btree index disagree", i)
		}
	}
}

// TestReadYourWritesMmap covers §8's store read-your-writes invariant
// against the MmapDirectory-backed implementation.
func TestReadYourWritesMmap(t *testing.T) {
	d, err := directory.NewMmapDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var docs [][]schema.Field
	for i := 0; i < 12; i++ {
		docs = append(docs, []schema.Field{{ID: 0, Value: schema.U32Value(uint32(i))}})
	}
	buildStore(t, d, "s", []WriterOption{WithBlockSize(32)}, docs)
	if err := d.Sync(); err != nil {
		t.Fatal(err)
	}
	r := openReader(t, d, "s")
	for i := 0; i < 12; i++ {
		got, err := r.Get(DocId(i))
		if err != nil {
			t.Fatalf("doc %d: %v", i, err)
		}
		v, _ := got.FirstByID(0)
		n, _ := v.U32()
		if n != uint32(i) {
			t.Fatalf("doc %d: got %d", i, n)
		}
	}
}

// TestWriteAfterCloseFails covers the writer's closed-state contract.
func TestWriteAfterCloseFails(t *testing.T) {
	d := directory.NewRamDirectory()
	wc, err := d.OpenWrite("s")
	if err != nil {
		t.Fatal(err)
	}
	w := NewWriter(wc)
	if _, err := w.Write([]schema.Field{{ID: 0, Value: schema.U32Value(1)}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]schema.Field{{ID: 0, Value: schema.U32Value(2)}}); !errors.Is(err, errors.WriterClosed) {
		t.Fatalf("got %v, want WriterClosed", err)
	}
	if err := w.Close(); !errors.Is(err, errors.WriterClosed) {
		t.Fatalf("got %v, want WriterClosed", err)
	}
}

// TestDocumentAtBlockThreshold covers the §8 boundary behavior: the
// block must seal on the write that crosses the threshold, not
// before, so a document written exactly at the edge is still whole
// and readable. Each document encodes to 28 bytes (8-byte field count,
// tag, field id, 8-byte length, 10 bytes of text), so with a 28-byte
// threshold the first document of a block lands exactly on it without
// sealing, and the second crosses it and seals the block.
func TestDocumentAtBlockThreshold(t *testing.T) {
	d := directory.NewRamDirectory()
	small := strings.Repeat("a", 10)
	var docs [][]schema.Field
	for i := 0; i < 5; i++ {
		docs = append(docs, []schema.Field{{ID: 0, Value: schema.TextValue(small)}})
	}
	buildStore(t, d, "s", []WriterOption{WithBlockSize(28)}, docs)
	r := openReader(t, d, "s")
	for i := 0; i < 5; i++ {
		got, err := r.Get(DocId(i))
		if err != nil {
			t.Fatalf("doc %d: %v", i, err)
		}
		v, _ := got.FirstByID(0)
		s, _ := v.Text()
		if s != small {
			t.Fatalf("doc %d: got %q", i, s)
		}
	}
}
