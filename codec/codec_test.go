package codec

import (
	"bytes"
	"io"
	"testing"
)

func roundtrip(t *testing.T, name string, payload []byte) {
	t.Helper()

	c, err := ByName(name)
	if err != nil {
		t.Fatal(err)
	}

	var compressed bytes.Buffer
	cw := c.BorrowCompressor(&compressed)
	if _, err := cw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := cw.Close(); err != nil {
		t.Fatal(err)
	}
	c.ReturnCompressor(cw)

	dr, err := c.BorrowDecompressor(bytes.NewReader(compressed.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(dr)
	if err != nil {
		t.Fatal(err)
	}
	c.ReturnDecompressor(dr)

	if !bytes.Equal(got, payload) {
		t.Fatalf("%s: roundtrip mismatch: got %q, want %q", name, got, payload)
	}
}

func TestCodecRoundtrip(t *testing.T) {
	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 200)

	for _, name := range []string{"none", "gz", "lz4"} {
		t.Run(name, func(t *testing.T) {
			roundtrip(t, name, payload)
		})
	}
}

func TestOrdinalsAreStableAndSequential(t *testing.T) {
	none, err := ByName("none")
	if err != nil {
		t.Fatal(err)
	}
	gz, err := ByName("gz")
	if err != nil {
		t.Fatal(err)
	}
	lz4, err := ByName("lz4")
	if err != nil {
		t.Fatal(err)
	}

	if none.Ordinal() != 0 || gz.Ordinal() != 1 || lz4.Ordinal() != 2 {
		t.Fatalf("unexpected ordinals: none=%d gz=%d lz4=%d", none.Ordinal(), gz.Ordinal(), lz4.Ordinal())
	}

	byOrd, err := ByOrdinal(1)
	if err != nil {
		t.Fatal(err)
	}
	if byOrd.Name() != "gz" {
		t.Fatal("expected gz", "got", byOrd.Name())
	}
}

func TestUnknownCodec(t *testing.T) {
	if _, err := ByName("zstd-nope"); err == nil {
		t.Fatal("expected error for unregistered codec name")
	}
	if _, err := ByOrdinal(99); err == nil {
		t.Fatal("expected error for unregistered ordinal")
	}
}
