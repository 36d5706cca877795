package blockindex

import (
	"bytes"
	"testing"
)

func buildTestIndex() *Index {
	ix := New(bytes.Compare)
	ix.Add([]byte("b"), 0, 100)
	ix.Add([]byte("d"), 100, 100)
	ix.Add([]byte("f"), 200, 100)
	return ix
}

func TestBlockContainingKey(t *testing.T) {
	ix := buildTestIndex()

	tests := []struct {
		key  string
		want int
	}{
		{"a", -1},
		{"b", 0},
		{"c", 0},
		{"d", 1},
		{"e", 1},
		{"f", 2},
		{"z", 2},
	}

	for _, test := range tests {
		if got := ix.BlockContainingKey([]byte(test.key)); got != test.want {
			t.Errorf("BlockContainingKey(%q) = %d, want %d", test.key, got, test.want)
		}
	}
}

func TestMidkey(t *testing.T) {
	ix := buildTestIndex()
	mid, err := ix.Midkey()
	if err != nil {
		t.Fatal(err)
	}
	if string(mid) != "d" {
		t.Fatal("expected d", "got", string(mid))
	}

	if _, err := New(bytes.Compare).Midkey(); err != ErrEmpty {
		t.Fatal("expected ErrEmpty on empty index")
	}
}

func TestSerializeDeserializeRoundtrip(t *testing.T) {
	ix := buildTestIndex()

	var buf bytes.Buffer
	if err := ix.Serialize(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Deserialize(&buf, ix.Count(), bytes.Compare)
	if err != nil {
		t.Fatal(err)
	}

	if got.Count() != ix.Count() {
		t.Fatal("expected", ix.Count(), "entries, got", got.Count())
	}
	for i := 0; i < ix.Count(); i++ {
		want := ix.EntryAt(i)
		have := got.EntryAt(i)
		if !bytes.Equal(want.FirstKey, have.FirstKey) || want.Offset != have.Offset || want.UncompressedSize != have.UncompressedSize {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want, have)
		}
	}
}

func TestEmptyIndexSerializesToNothing(t *testing.T) {
	ix := New(bytes.Compare)
	var buf bytes.Buffer
	if err := ix.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatal("expected empty index to serialize to zero bytes", "got", buf.Len())
	}
}
