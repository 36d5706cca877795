// Package blockindex implements the in-memory sorted array of
// (first-key-of-block, file-offset, uncompressed-size) triples that both
// the data-block index and the meta-block index are built from, plus its
// on-disk (de)serialization.
package blockindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/Priyanshu23/hfile/magic"
)

// CompareFunc orders two keys: negative if a < b, zero if equal, positive
// if a > b.
type CompareFunc func(a, b []byte) int

// Entry is one block index record.
type Entry struct {
	FirstKey         []byte
	Offset           int64
	UncompressedSize int32
}

// ErrEmpty is returned by Midkey on an index with no entries.
var ErrEmpty = errors.New("blockindex: index is empty")

// Index is the in-memory, sorted block index. It is not safe for
// concurrent writes; concurrent reads after the index is built are fine.
type Index struct {
	entries  []Entry
	cmp      CompareFunc
	heapSize int64
}

// New creates an empty index ordered by cmp.
func New(cmp CompareFunc) *Index {
	return &Index{cmp: cmp}
}

// Add appends a new block index entry. Entries must be added in
// increasing firstKey order; the index trusts the caller (the Writer) to
// honor this since blocks are produced in append order.
func (ix *Index) Add(firstKey []byte, offset int64, uncompressedSize int32) {
	key := append([]byte(nil), firstKey...)
	ix.entries = append(ix.entries, Entry{FirstKey: key, Offset: offset, UncompressedSize: uncompressedSize})
	ix.heapSize += int64(len(key)) + 8 + 4
}

// Count returns the number of entries.
func (ix *Index) Count() int { return len(ix.entries) }

// EntryAt returns the i'th entry.
func (ix *Index) EntryAt(i int) Entry { return ix.entries[i] }

// HeapSize is a running byte-count estimate of the index's in-memory size,
// for memory-pressure accounting by a caller.
func (ix *Index) HeapSize() int64 { return ix.heapSize }

// Find performs a binary search for key among the entries' first keys. It
// returns the insertion point and whether that point is an exact match.
func (ix *Index) Find(key []byte) (idx int, exact bool) {
	n := len(ix.entries)
	ins := sort.Search(n, func(i int) bool { return ix.cmp(ix.entries[i].FirstKey, key) >= 0 })
	if ins < n && ix.cmp(ix.entries[ins].FirstKey, key) == 0 {
		return ins, true
	}
	return ins, false
}

// BlockContainingKey returns the index of the block that may contain key:
// an exact match on firstKey, or the predecessor block when key falls
// between two blocks' first keys. It returns -1 when key precedes the
// first block's firstKey (the key is not in the file).
func (ix *Index) BlockContainingKey(key []byte) int {
	idx, exact := ix.Find(key)
	if exact {
		return idx
	}
	if idx == 0 {
		return -1
	}
	return idx - 1
}

// Midkey approximates the median key, taken from block boundaries only.
func (ix *Index) Midkey() ([]byte, error) {
	if len(ix.entries) == 0 {
		return nil, ErrEmpty
	}
	return ix.entries[(len(ix.entries)-1)/2].FirstKey, nil
}

// Serialize writes the index in its on-disk form. An empty index writes
// nothing at all, not even the magic.
func (ix *Index) Serialize(w io.Writer) error {
	if len(ix.entries) == 0 {
		return nil
	}
	if _, err := w.Write(magic.IndexBlock); err != nil {
		return err
	}
	var hdr [16]byte
	for _, e := range ix.entries {
		binary.BigEndian.PutUint64(hdr[0:8], uint64(e.Offset))
		binary.BigEndian.PutUint32(hdr[8:12], uint32(e.UncompressedSize))
		binary.BigEndian.PutUint32(hdr[12:16], uint32(len(e.FirstKey)))
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := w.Write(e.FirstKey); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads count entries from r, which must be positioned at the
// start of a serialized index (its magic). cmp orders the resulting
// index's lookups.
func Deserialize(r io.Reader, count int, cmp CompareFunc) (*Index, error) {
	ix := New(cmp)
	if count == 0 {
		return ix, nil
	}

	gotMagic := make([]byte, magic.Len)
	if _, err := io.ReadFull(r, gotMagic); err != nil {
		return nil, fmt.Errorf("blockindex: read magic: %w", err)
	}
	if err := magic.Validate(gotMagic, magic.IndexBlock); err != nil {
		return nil, err
	}

	hdr := make([]byte, 16)
	ix.entries = make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, hdr); err != nil {
			return nil, fmt.Errorf("blockindex: entry %d header: %w", i, err)
		}
		offset := int64(binary.BigEndian.Uint64(hdr[0:8]))
		size := int32(binary.BigEndian.Uint32(hdr[8:12]))
		keyLen := binary.BigEndian.Uint32(hdr[12:16])

		key := make([]byte, keyLen)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("blockindex: entry %d key: %w", i, err)
		}

		ix.entries = append(ix.entries, Entry{FirstKey: key, Offset: offset, UncompressedSize: size})
		ix.heapSize += int64(keyLen) + 8 + 4
	}

	return ix, nil
}
