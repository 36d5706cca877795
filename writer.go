package hfile

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Priyanshu23/hfile/blockindex"
	"github.com/Priyanshu23/hfile/bytesink"
	"github.com/Priyanshu23/hfile/codec"
	"github.com/Priyanshu23/hfile/comparator"
	"github.com/Priyanshu23/hfile/magic"
)

// Writer builds one immutable, sorted, block-structured file. Keys must be
// appended in increasing order; Append enforces this.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	sink bytesink.Sink
	cfg  writerConfig
	cmp  comparator.Comparator
	cdc  codec.Codec

	dataIndex *blockindex.Index
	metaIndex *blockindex.Index
	fileInfo  *FileInfo

	bloom       *bloomBuilder
	pendingMeta []namedMetaBlock

	curBlockStart int64 // sink offset where the current block began
	curBlockBuf   bytes.Buffer
	curCompressor codec.Compressor
	curFirstKey   []byte
	curUncompSize int64

	lastKey     []byte
	entryCount  int32
	totalUncomp int64
	totalKeyLen int64
	totalValLen int64

	closed bool
}

// NewWriter creates a Writer that appends to sink, applying opts over the
// defaults (uncompressed 64 KiB blocks, lexicographic comparator, no
// compression, no bloom filter).
func NewWriter(sink bytesink.Sink, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cmp, err := comparator.Resolve(cfg.cmpName)
	if err != nil {
		return nil, err
	}
	cdc, err := codec.ByName(cfg.codecName)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		sink:      sink,
		cfg:       cfg,
		cmp:       cmp,
		cdc:       cdc,
		dataIndex: blockindex.New(cmp.Compare),
		metaIndex: blockindex.New(comparator.Lexical().Compare),
		fileInfo:  NewFileInfo(),
	}
	if cfg.withBloom {
		w.bloom = newBloomBuilder(cfg.bloomKeys, cfg.bloomFPRate)
	}
	return w, nil
}

// namedMetaBlock is a caller-supplied auxiliary payload queued by
// AppendMetaBlock and written at Close alongside the (optional) bloom
// filter meta block.
type namedMetaBlock struct {
	name    string
	payload []byte
}

// AppendMetaBlock queues an auxiliary named payload to be written into
// the meta block section at Close, alongside the built-in bloom filter
// block when one was requested.
func (w *Writer) AppendMetaBlock(name string, payload []byte) error {
	if w.closed {
		return ErrClosed
	}
	if name == "" {
		return fmt.Errorf("%w: meta block name is empty", ErrInvalidKey)
	}
	w.pendingMeta = append(w.pendingMeta, namedMetaBlock{name: name, payload: append([]byte(nil), payload...)})
	return nil
}

// AppendFileInfo adds a user-supplied fileinfo entry, persisted alongside
// the writer's own reserved hfile.* entries at Close. Reserved-prefix
// keys are rejected, matching FileInfo.Put.
func (w *Writer) AppendFileInfo(key, value []byte) error {
	if w.closed {
		return ErrClosed
	}
	return w.fileInfo.Put(key, value)
}

// Append adds one key/value entry. Keys must be strictly greater than the
// previously appended key under the Writer's comparator.
func (w *Writer) Append(key, value []byte) error {
	if w.closed {
		return ErrClosed
	}
	if len(key) == 0 || len(key) > MaxKeyLen {
		return fmt.Errorf("%w: length %d", ErrInvalidKey, len(key))
	}
	if isReserved(key) {
		return fmt.Errorf("%w: %q", ErrReservedPrefix, key)
	}
	if w.lastKey != nil && w.cmp.Compare(key, w.lastKey) <= 0 {
		return fmt.Errorf("%w: %q does not follow %q", ErrOutOfOrder, key, w.lastKey)
	}

	if w.curCompressor == nil {
		if err := w.startBlock(); err != nil {
			return err
		}
	}
	if w.curFirstKey == nil {
		w.curFirstKey = append([]byte(nil), key...)
	}

	if err := writeEntry(&w.curBlockBuf, key, value); err != nil {
		return err
	}
	if _, err := w.curCompressor.Write(w.curBlockBuf.Bytes()); err != nil {
		return err
	}
	size := w.curBlockBuf.Len()
	w.curUncompSize += int64(size)
	w.curBlockBuf.Reset()

	if w.bloom != nil {
		w.bloom.add(key)
	}

	w.lastKey = append(w.lastKey[:0], key...)
	w.entryCount++
	w.totalUncomp += int64(size)
	w.totalKeyLen += int64(len(key))
	w.totalValLen += int64(len(value))

	if int(w.curUncompSize) >= w.cfg.blockSize {
		if err := w.finishBlock(); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) startBlock() error {
	off, err := w.sink.CurrentOffset()
	if err != nil {
		return err
	}
	w.curBlockStart = off
	w.curFirstKey = nil
	w.curUncompSize = 0

	if _, err := w.sink.Write(magic.DataBlock); err != nil {
		return err
	}
	w.curCompressor = w.cdc.BorrowCompressor(w.sink)
	return nil
}

// finishBlock closes out the current data block's compressed stream and
// records it in the data index. It is a no-op if no block is open.
func (w *Writer) finishBlock() error {
	if w.curCompressor == nil {
		return nil
	}
	if err := w.curCompressor.Close(); err != nil {
		return err
	}
	w.cdc.ReturnCompressor(w.curCompressor)
	w.curCompressor = nil

	w.dataIndex.Add(w.curFirstKey, w.curBlockStart, int32(w.curUncompSize))
	return nil
}

// Close finalizes the file: flushes the final data block, writes the meta
// blocks, file info, indices, and trailer, then closes the sink.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.finishBlock(); err != nil {
		return err
	}

	fi := w.fileInfo
	if w.lastKey != nil {
		fi.setReserved(FileInfoLastKey, w.lastKey)
	}
	if w.entryCount > 0 {
		fi.setReserved(FileInfoAvgKeyLen, encodeAvg(w.totalKeyLen, int64(w.entryCount)))
		fi.setReserved(FileInfoAvgValueLen, encodeAvg(w.totalValLen, int64(w.entryCount)))
	}
	fi.setReserved(FileInfoComparatorKey, []byte(w.cmp.Name()))

	metaBlocks := append([]namedMetaBlock(nil), w.pendingMeta...)
	if w.bloom != nil {
		var buf bytes.Buffer
		if err := w.bloom.serialize(&buf); err != nil {
			return err
		}
		metaBlocks = append(metaBlocks, namedMetaBlock{name: bloomMetaKey, payload: buf.Bytes()})
	}
	sort.Slice(metaBlocks, func(i, j int) bool { return metaBlocks[i].name < metaBlocks[j].name })

	for _, mb := range metaBlocks {
		metaOff, err := w.sink.CurrentOffset()
		if err != nil {
			return err
		}
		if _, err := w.sink.Write(magic.MetaBlock); err != nil {
			return err
		}
		if err := writeLenPrefixed(w.sink, []byte(mb.name)); err != nil {
			return err
		}
		if err := writeLenPrefixed(w.sink, mb.payload); err != nil {
			return err
		}
		w.metaIndex.Add([]byte(mb.name), metaOff, int32(len(mb.payload)))
	}

	fileInfoOff, err := w.sink.CurrentOffset()
	if err != nil {
		return err
	}
	if err := fi.Serialize(w.sink); err != nil {
		return err
	}

	dataIndexOff, err := w.sink.CurrentOffset()
	if err != nil {
		return err
	}
	if err := w.dataIndex.Serialize(w.sink); err != nil {
		return err
	}

	metaIndexOff, err := w.sink.CurrentOffset()
	if err != nil {
		return err
	}
	if err := w.metaIndex.Serialize(w.sink); err != nil {
		return err
	}

	trailer := Trailer{
		FileInfoOffset:         fileInfoOff,
		DataIndexOffset:        dataIndexOff,
		DataIndexCount:         int32(w.dataIndex.Count()),
		MetaIndexOffset:        metaIndexOff,
		MetaIndexCount:         int32(w.metaIndex.Count()),
		TotalUncompressedBytes: w.totalUncomp,
		EntryCount:             w.entryCount,
		CompressionCodec:       w.cdc.Ordinal(),
		Version:                CurrentVersion,
	}
	if _, err := w.sink.Write(trailer.Encode()); err != nil {
		return err
	}

	return w.sink.Close()
}

// encodeAvg big-endian encodes round(total/count) as a 4-byte value, the
// on-disk form of the AVG_KEY_LEN / AVG_VALUE_LEN fileinfo entries.
func encodeAvg(total, count int64) []byte {
	var avg uint32
	if count > 0 {
		avg = uint32((total + count/2) / count)
	}
	buf := make([]byte, 4)
	putUint32BE(buf, avg)
	return buf
}
