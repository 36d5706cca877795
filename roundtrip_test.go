package hfile

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Priyanshu23/hfile/bytesink"
	"github.com/Priyanshu23/hfile/bytesource"
)

func setupRoundtripTest(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.hfile")
}

func writeTestFile(t *testing.T, path string, n int, opts ...WriterOption) [][2]string {
	t.Helper()

	sink, err := bytesink.CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(sink, opts...)
	if err != nil {
		t.Fatal(err)
	}

	var pairs [][2]string
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%05d", i)
		value := fmt.Sprintf("value-%05d", i)
		if err := w.Append([]byte(key), []byte(value)); err != nil {
			t.Fatal(err)
		}
		pairs = append(pairs, [2]string{key, value})
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return pairs
}

func openTestReader(t *testing.T, path string, opts ...ReaderOption) *Reader {
	t.Helper()
	src, err := bytesource.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Open(src, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestWriterRejectsOutOfOrderKeys(t *testing.T) {
	path := setupRoundtripTest(t)
	sink, err := bytesink.CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(sink)
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Append([]byte("b"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := w.Append([]byte("a"), []byte("2")); err == nil {
		t.Fatal("expected out-of-order append to fail")
	}
	_ = w.Close()
}

func TestWriterRejectsReservedKeyPrefix(t *testing.T) {
	path := setupRoundtripTest(t)
	sink, err := bytesink.CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(sink)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Append([]byte("hfile.oops"), []byte("x")); err == nil {
		t.Fatal("expected reserved-prefix key to be rejected")
	}
}

func TestRoundtripGetEveryKey(t *testing.T) {
	for _, codecName := range []string{"none", "gz", "lz4"} {
		t.Run(codecName, func(t *testing.T) {
			path := setupRoundtripTest(t)
			pairs := writeTestFile(t, path, 2000, WithBlockSize(2048), WithCodec(codecName))

			r := openTestReader(t, path)

			if got := r.EntryCount(); got != int32(len(pairs)) {
				t.Fatal("expected entry count", len(pairs), "got", got)
			}

			for _, p := range pairs {
				value, found, err := r.Get([]byte(p[0]))
				if err != nil {
					t.Fatal(err)
				}
				if !found {
					t.Fatal("expected to find key", p[0])
				}
				if string(value) != p[1] {
					t.Fatal("expected value", p[1], "got", string(value))
				}
			}

			_, found, err := r.Get([]byte("not-a-key"))
			if err != nil {
				t.Fatal(err)
			}
			if found {
				t.Fatal("expected missing key to not be found")
			}
		})
	}
}

func TestScannerSeekToFirstAndNext(t *testing.T) {
	path := setupRoundtripTest(t)
	pairs := writeTestFile(t, path, 500, WithBlockSize(1024))

	r := openTestReader(t, path)
	s := r.NewScanner()

	ok, err := s.SeekToFirst()
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for ok {
		want := pairs[count]
		if string(s.Key()) != want[0] || string(s.Value()) != want[1] {
			t.Fatalf("entry %d: expected %q=%q, got %q=%q", count, want[0], want[1], s.Key(), s.Value())
		}
		count++
		ok, err = s.Next()
		if err != nil {
			t.Fatal(err)
		}
	}
	if count != len(pairs) {
		t.Fatal("expected", len(pairs), "entries, got", count)
	}
}

func TestScannerSeekMidRange(t *testing.T) {
	path := setupRoundtripTest(t)
	pairs := writeTestFile(t, path, 500, WithBlockSize(1024))

	r := openTestReader(t, path)
	s := r.NewScanner()

	target := pairs[250][0]
	cmp, err := s.SeekTo([]byte(target))
	if err != nil {
		t.Fatal(err)
	}
	if cmp != 0 {
		t.Fatal("expected exact seek match, got cmp =", cmp)
	}
	if string(s.Key()) != target {
		t.Fatal("expected exact seek match on", target, "got", string(s.Key()))
	}

	// A key that sorts strictly between two written keys lands on its
	// predecessor, not its successor.
	cmp, err = s.SeekTo([]byte(target + "-between"))
	if err != nil {
		t.Fatal(err)
	}
	if cmp != 1 {
		t.Fatal("expected predecessor seek, got cmp =", cmp)
	}
	if string(s.Key()) != pairs[250][0] {
		t.Fatal("expected", pairs[250][0], "got", string(s.Key()))
	}
}

func TestSeekPastLastKeyLandsOnLastKey(t *testing.T) {
	path := setupRoundtripTest(t)
	pairs := writeTestFile(t, path, 10, WithBlockSize(1024))

	r := openTestReader(t, path)
	s := r.NewScanner()

	cmp, err := s.SeekTo([]byte("zzzzzzzzz"))
	if err != nil {
		t.Fatal(err)
	}
	if cmp != 1 {
		t.Fatal("expected seek past the last key to return 1, got", cmp)
	}
	if string(s.Key()) != pairs[len(pairs)-1][0] {
		t.Fatal("expected", pairs[len(pairs)-1][0], "got", string(s.Key()))
	}
}

func TestSeekBeforeFirstKeyLeavesScannerUnseeked(t *testing.T) {
	path := setupRoundtripTest(t)
	writeTestFile(t, path, 10, WithBlockSize(1024))

	r := openTestReader(t, path)
	s := r.NewScanner()

	cmp, err := s.SeekTo([]byte(""))
	if err != nil {
		t.Fatal(err)
	}
	if cmp != -1 {
		t.Fatal("expected seek before the first key to return -1, got", cmp)
	}
	if s.Valid() {
		t.Fatal("expected scanner to remain Unseeked")
	}
}

// TestScannerSeekToPredecessorAcrossBlocks seeks a missing key in a file
// split into many small blocks. With a 64-byte block size each block holds
// four 18-byte entries, so k0050 is the third entry of the block starting
// at k0048; the scan overshoots at k0051 and lands on k0050.
func TestScannerSeekToPredecessorAcrossBlocks(t *testing.T) {
	path := setupRoundtripTest(t)

	sink, err := bytesink.CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(sink, WithBlockSize(64))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("k%04d", i)
		value := fmt.Sprintf("v%04d", i)
		if err := w.Append([]byte(key), []byte(value)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r := openTestReader(t, path)
	s := r.NewScanner()

	cmp, err := s.SeekTo([]byte("k0050a"))
	if err != nil {
		t.Fatal(err)
	}
	if cmp != 1 {
		t.Fatal("expected predecessor seek, got cmp =", cmp)
	}
	if string(s.Key()) != "k0050" {
		t.Fatal("expected k0050, got", string(s.Key()))
	}
}

func TestScannerSeekBefore(t *testing.T) {
	path := setupRoundtripTest(t)
	pairs := writeTestFile(t, path, 500, WithBlockSize(1024))

	r := openTestReader(t, path)
	s := r.NewScanner()

	target := pairs[250][0]
	ok, err := s.SeekBefore([]byte(target))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected SeekBefore to find a predecessor")
	}
	if string(s.Key()) != pairs[249][0] {
		t.Fatal("expected", pairs[249][0], "got", string(s.Key()))
	}

	ok, err = s.SeekBefore([]byte(pairs[0][0]))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected SeekBefore on the first key to find nothing")
	}
}

func TestWriterMetaBlockAndFileInfoRoundtrip(t *testing.T) {
	path := setupRoundtripTest(t)

	sink, err := bytesink.CreateFile(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(sink)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AppendMetaBlock("stats", []byte("some-aux-payload")); err != nil {
		t.Fatal(err)
	}
	if err := w.AppendFileInfo([]byte("owner"), []byte("search-team")); err != nil {
		t.Fatal(err)
	}
	if err := w.Append([]byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := w.Append([]byte("b"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r := openTestReader(t, path)

	// The last (and only) data block sits immediately before the meta
	// block section on disk; reading it back exercises fileEndOfBlock's
	// meta-block-aware bound rather than running straight into fileinfo.
	value, found, err := r.Get([]byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(value) != "2" {
		t.Fatal("expected to read back the last data block", "got", string(value), found)
	}

	payload, found, err := r.GetMetaBlock("stats")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(payload) != "some-aux-payload" {
		t.Fatal("expected stats meta block payload", "got", string(payload), found)
	}

	owner, ok := r.FileInfo().Get("owner")
	if !ok || string(owner) != "search-team" {
		t.Fatal("expected owner=search-team", "got", string(owner), ok)
	}

	_, found, err = r.GetMetaBlock("does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected missing meta block to not be found")
	}
}

func TestFileInfoPersistsLastKeyAndAverages(t *testing.T) {
	path := setupRoundtripTest(t)
	pairs := writeTestFile(t, path, 100, WithBlockSize(4096))

	r := openTestReader(t, path)

	last, ok := r.GetLastKey()
	if !ok {
		t.Fatal("expected a last key")
	}
	if string(last) != pairs[len(pairs)-1][0] {
		t.Fatal("expected last key", pairs[len(pairs)-1][0], "got", string(last))
	}

	if r.AvgKeyLen() == 0 {
		t.Fatal("expected nonzero average key length")
	}
	if r.AvgValueLen() == 0 {
		t.Fatal("expected nonzero average value length")
	}
}

func TestBloomFilterExcludesAbsentKeys(t *testing.T) {
	path := setupRoundtripTest(t)
	writeTestFile(t, path, 300, WithBlockSize(2048), WithBloomFilter(300, 0.01))

	r := openTestReader(t, path)

	for i := 0; i < 300; i++ {
		key := fmt.Sprintf("key-%05d", i)
		if !r.MayContainKey([]byte(key)) {
			t.Fatal("bloom filter false negative for", key)
		}
	}

	falsePositives := 0
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("absent-%05d", i)
		if r.MayContainKey([]byte(key)) {
			falsePositives++
		}
	}
	if falsePositives > 50 {
		t.Fatal("unexpectedly high bloom filter false positive rate:", falsePositives)
	}
}
