package hfile

import (
	"encoding/binary"
	"io"
)

// MaxKeyLen is the largest permitted key size, per spec.
const MaxKeyLen = 65536

// writeEntry big-endian encodes one key/value entry directly to w: 4-byte
// keyLen, 4-byte valueLen, key bytes, value bytes.
func writeEntry(w io.Writer, key, value []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(key)))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(value)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(key); err != nil {
		return err
	}
	if _, err := w.Write(value); err != nil {
		return err
	}
	return nil
}

// entrySize is the on-disk size of one key/value entry.
func entrySize(keyLen, valueLen int) int {
	return 8 + keyLen + valueLen
}

// putUint32BE and putUint64BE/getUint64BE/getUint32BE are the ByteBuf-style
// fixed-width helpers used by fileinfo.go and trailer.go.

func putUint32BE(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func putUint64BE(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func getUint32BE(b []byte) uint32    { return binary.BigEndian.Uint32(b) }
func getUint64BE(b []byte) uint64    { return binary.BigEndian.Uint64(b) }

// writeLenPrefixed writes a 4-byte big-endian length followed by data.
func writeLenPrefixed(w io.Writer, data []byte) error {
	var lenBuf [4]byte
	putUint32BE(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// readLenPrefixed reads a 4-byte big-endian length then that many bytes.
func readLenPrefixed(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := getUint32BE(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
