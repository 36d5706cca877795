package hfile

import (
	"fmt"
	"io"

	"github.com/Priyanshu23/hfile/magic"
)

// TrailerSize is the fixed on-disk size of a trailer record.
const TrailerSize = 60

// CurrentVersion is the only trailer version this engine produces or
// accepts.
const CurrentVersion = 1

// Trailer is the fixed-size record at end-of-file locating every other
// section.
type Trailer struct {
	FileInfoOffset         int64
	DataIndexOffset        int64
	DataIndexCount         int32
	MetaIndexOffset        int64
	MetaIndexCount         int32
	TotalUncompressedBytes int64
	EntryCount             int32
	CompressionCodec       int32
	Version                int32
}

// Encode serializes the trailer to its 60-byte on-disk form.
func (t Trailer) Encode() []byte {
	buf := make([]byte, TrailerSize)
	copy(buf[0:8], magic.Trailer)
	putUint64BE(buf[8:16], uint64(t.FileInfoOffset))
	putUint64BE(buf[16:24], uint64(t.DataIndexOffset))
	putUint32BE(buf[24:28], uint32(t.DataIndexCount))
	putUint64BE(buf[28:36], uint64(t.MetaIndexOffset))
	putUint32BE(buf[36:40], uint32(t.MetaIndexCount))
	putUint64BE(buf[40:48], uint64(t.TotalUncompressedBytes))
	putUint32BE(buf[48:52], uint32(t.EntryCount))
	putUint32BE(buf[52:56], uint32(t.CompressionCodec))
	putUint32BE(buf[56:60], uint32(t.Version))
	return buf
}

// DecodeTrailer parses a 60-byte trailer record, validating its magic and
// version.
func DecodeTrailer(buf []byte) (Trailer, error) {
	var t Trailer
	if len(buf) != TrailerSize {
		return t, fmt.Errorf("hfile: trailer: %w: expected %d bytes, got %d", ErrShortRead, TrailerSize, len(buf))
	}
	if err := magic.Validate(buf[0:8], magic.Trailer); err != nil {
		return t, err
	}

	t.FileInfoOffset = int64(getUint64BE(buf[8:16]))
	t.DataIndexOffset = int64(getUint64BE(buf[16:24]))
	t.DataIndexCount = int32(getUint32BE(buf[24:28]))
	t.MetaIndexOffset = int64(getUint64BE(buf[28:36]))
	t.MetaIndexCount = int32(getUint32BE(buf[36:40]))
	t.TotalUncompressedBytes = int64(getUint64BE(buf[40:48]))
	t.EntryCount = int32(getUint32BE(buf[48:52]))
	t.CompressionCodec = int32(getUint32BE(buf[52:56]))
	t.Version = int32(getUint32BE(buf[56:60]))

	if t.Version != CurrentVersion {
		return t, fmt.Errorf("%w: %d", ErrUnsupportedVersion, t.Version)
	}

	return t, nil
}

// readTrailer reads and decodes the trailer from the last TrailerSize
// bytes of src, which has fileSize total bytes.
func readTrailer(r io.ReaderAt, fileSize int64) (Trailer, error) {
	if fileSize < TrailerSize {
		return Trailer{}, fmt.Errorf("hfile: file too small for trailer: %w", ErrShortRead)
	}
	buf := make([]byte, TrailerSize)
	if _, err := r.ReadAt(buf, fileSize-TrailerSize); err != nil {
		return Trailer{}, fmt.Errorf("hfile: read trailer: %w", err)
	}
	return DecodeTrailer(buf)
}
