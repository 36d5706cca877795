package hfile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"

	"github.com/Priyanshu23/hfile/blockcache"
	"github.com/Priyanshu23/hfile/blockindex"
	"github.com/Priyanshu23/hfile/bytesource"
	"github.com/Priyanshu23/hfile/codec"
	"github.com/Priyanshu23/hfile/comparator"
	"github.com/Priyanshu23/hfile/magic"
)

// Reader opens one immutable file for random access and sequential
// scanning. A Reader is safe for concurrent use by multiple goroutines;
// each goroutine should open its own Scanner.
type Reader struct {
	src    bytesource.Source
	cfg    readerConfig
	fileID uint64

	trailer   Trailer
	fileInfo  *FileInfo
	dataIndex *blockindex.Index
	metaIndex *blockindex.Index
	cmp       comparator.Comparator
	cdc       codec.Codec
	bloom     *bloom.BloomFilter
}

// Open opens src as an hfile, reading and validating its trailer, file
// info, and indices up front.
func Open(src bytesource.Source, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	trailer, err := readTrailer(src, src.Length())
	if err != nil {
		return nil, err
	}

	cdc, err := codec.ByOrdinal(trailer.CompressionCodec)
	if err != nil {
		return nil, err
	}

	fiEnd := trailer.DataIndexOffset
	fiR := bytesource.Bounded(src, trailer.FileInfoOffset, fiEnd-trailer.FileInfoOffset)
	fileInfo, err := DeserializeFileInfo(fiR)
	if err != nil {
		return nil, fmt.Errorf("hfile: reading fileinfo: %w", err)
	}

	cmpName := comparator.DefaultName
	if v, ok := fileInfo.Get(FileInfoComparatorKey); ok {
		cmpName = string(v)
	}
	cmp, err := comparator.Resolve(cmpName)
	if err != nil {
		return nil, err
	}

	diEnd := trailer.MetaIndexOffset
	diR := bytesource.Bounded(src, trailer.DataIndexOffset, diEnd-trailer.DataIndexOffset)
	dataIndex, err := blockindex.Deserialize(diR, int(trailer.DataIndexCount), blockindex.CompareFunc(cmp.Compare))
	if err != nil {
		return nil, fmt.Errorf("hfile: reading data index: %w", err)
	}

	miEnd := src.Length() - TrailerSize
	miR := bytesource.Bounded(src, trailer.MetaIndexOffset, miEnd-trailer.MetaIndexOffset)
	lex := comparator.Lexical()
	metaIndex, err := blockindex.Deserialize(miR, int(trailer.MetaIndexCount), blockindex.CompareFunc(lex.Compare))
	if err != nil {
		return nil, fmt.Errorf("hfile: reading meta index: %w", err)
	}

	r := &Reader{
		src:       src,
		cfg:       cfg,
		fileID:    fileIdentity(src),
		trailer:   trailer,
		fileInfo:  fileInfo,
		dataIndex: dataIndex,
		metaIndex: metaIndex,
		cmp:       cmp,
		cdc:       cdc,
	}

	if err := r.loadBloom(); err != nil {
		return nil, err
	}

	return r, nil
}

// fileIdentity derives a stable cache-key namespace for a source, hashing
// its length as a cheap proxy for file identity (two distinct files of
// identical length may collide in the cache, which only costs an extra
// decompress, never a correctness bug, since cache entries are validated
// by the caller's own block index lookup).
func fileIdentity(src bytesource.Source) uint64 {
	var buf [8]byte
	putUint64BE(buf[:], uint64(src.Length()))
	return xxhash.Sum64(buf[:])
}

func (r *Reader) loadBloom() error {
	payload, ok, err := r.GetMetaBlock(bloomMetaKey)
	if err != nil || !ok {
		return err
	}
	f, err := loadBloomFilter(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("hfile: reading bloom filter: %w", err)
	}
	r.bloom = f
	return nil
}

// GetMetaBlock returns the named auxiliary payload from the meta block
// section, if the file carries one under that name.
func (r *Reader) GetMetaBlock(name string) (payload []byte, found bool, err error) {
	idx, exact := r.metaIndex.Find([]byte(name))
	if !exact {
		return nil, false, nil
	}
	entry := r.metaIndex.EntryAt(idx)
	mr := bytesource.Bounded(r.src, entry.Offset, int64(entry.UncompressedSize)+magic.Len+int64(len(name))+16)

	gotMagic := make([]byte, magic.Len)
	if _, err := io.ReadFull(mr, gotMagic); err != nil {
		return nil, false, fmt.Errorf("hfile: reading meta block magic: %w", err)
	}
	if err := magic.Validate(gotMagic, magic.MetaBlock); err != nil {
		return nil, false, err
	}
	gotName, err := readLenPrefixed(mr)
	if err != nil {
		return nil, false, err
	}
	if string(gotName) != name {
		return nil, false, nil
	}
	payload, err = readLenPrefixed(mr)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// MayContainKey reports whether key could be present in the file. It
// never returns a false negative; when the file carries no bloom filter
// it always answers true.
func (r *Reader) MayContainKey(key []byte) bool {
	return mayContain(r.bloom, key)
}

// EntryCount returns the total number of key/value entries in the file.
func (r *Reader) EntryCount() int32 { return r.trailer.EntryCount }

// TotalUncompressedBytes returns the sum of uncompressed block payload
// bytes across the file.
func (r *Reader) TotalUncompressedBytes() int64 { return r.trailer.TotalUncompressedBytes }

// GetFirstKey returns the first key of the file's first data block.
func (r *Reader) GetFirstKey() ([]byte, bool) {
	if r.dataIndex.Count() == 0 {
		return nil, false
	}
	return r.dataIndex.EntryAt(0).FirstKey, true
}

// GetLastKey returns the last key appended to the file, from the
// persisted LASTKEY fileinfo entry.
func (r *Reader) GetLastKey() ([]byte, bool) {
	return r.fileInfo.Get(FileInfoLastKey)
}

// AvgKeyLen returns the persisted average key length, or 0 if the file is
// empty.
func (r *Reader) AvgKeyLen() uint32 {
	v, ok := r.fileInfo.Get(FileInfoAvgKeyLen)
	if !ok {
		return 0
	}
	return getUint32BE(v)
}

// AvgValueLen returns the persisted average value length, or 0 if the
// file is empty.
func (r *Reader) AvgValueLen() uint32 {
	v, ok := r.fileInfo.Get(FileInfoAvgValueLen)
	if !ok {
		return 0
	}
	return getUint32BE(v)
}

// FileInfo exposes the raw fileinfo entries, including any user-supplied
// (non-reserved) keys a writer added.
func (r *Reader) FileInfo() *FileInfo { return r.fileInfo }

// Close releases the underlying source.
func (r *Reader) Close() error {
	return r.src.Close()
}

// loadBlock returns the decompressed payload of data block i, consulting
// and populating the reader's block cache.
func (r *Reader) loadBlock(i int) ([]byte, error) {
	key := blockcache.Key{FileID: r.fileID, Block: i}
	if data, ok := r.cfg.cache.Get(key); ok {
		return data, nil
	}

	entry := r.dataIndex.EntryAt(i)
	blockEnd := r.fileEndOfBlock(i)
	br := bytesource.Bounded(r.src, entry.Offset, blockEnd-entry.Offset)

	gotMagic := make([]byte, magic.Len)
	if _, err := io.ReadFull(br, gotMagic); err != nil {
		return nil, fmt.Errorf("hfile: reading data block %d magic: %w", i, err)
	}
	if err := magic.Validate(gotMagic, magic.DataBlock); err != nil {
		return nil, err
	}

	dec, err := r.cdc.BorrowDecompressor(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	defer r.cdc.ReturnDecompressor(dec)

	data := make([]byte, entry.UncompressedSize)
	if _, err := io.ReadFull(dec, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}

	r.cfg.cache.Put(key, data)
	return data, nil
}

// fileEndOfBlock returns the file offset one past the last byte belonging
// to data block i, used to bound the compressed stream a decompressor may
// read from. The on-disk layout places meta blocks between the last data
// block and fileinfo, so the last data block's bound is the first meta
// block's offset when any exist, and fileinfo's offset otherwise.
func (r *Reader) fileEndOfBlock(i int) int64 {
	if i+1 < r.dataIndex.Count() {
		return r.dataIndex.EntryAt(i + 1).Offset
	}
	if r.metaIndex.Count() > 0 {
		return r.metaIndex.EntryAt(0).Offset
	}
	return r.trailer.FileInfoOffset
}
