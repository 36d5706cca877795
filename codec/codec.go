// Package codec is the compression facade the file engine compresses and
// decompresses blocks through. Each registered codec wraps a raw
// io.Writer/io.Reader in a compressing/decompressing stream and pools the
// underlying compressor/decompressor so repeated block flushes don't pay
// allocation cost for every block.
package codec

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Compressor is a streaming compressing sink borrowed from a Codec. Close
// finalizes the compressed stream (writes any trailing framing) without
// closing the underlying writer it was borrowed against.
type Compressor interface {
	io.Writer
	Close() error
}

// Decompressor is a streaming decompressing source borrowed from a Codec.
type Decompressor interface {
	io.Reader
	Close() error
}

// Codec names a compression algorithm and its stable trailer ordinal.
type Codec interface {
	Name() string
	Ordinal() int32
	BorrowCompressor(w io.Writer) Compressor
	ReturnCompressor(c Compressor)
	BorrowDecompressor(r io.Reader) (Decompressor, error)
	ReturnDecompressor(d Decompressor)
}

// ErrUnknownCodec is returned when a trailer's codec ordinal, or a
// caller-requested codec name, isn't registered.
var ErrUnknownCodec = errors.New("codec: unknown compression codec")

var (
	mu          sync.RWMutex
	byName      = map[string]Codec{}
	byOrdinal   = map[int32]Codec{}
	nextOrdinal int32
)

// Register assigns the next sequential ordinal to a codec produced by
// factory and adds it under name. Ordinals are therefore stable for the
// lifetime of the process and assigned strictly in registration order, as
// the on-disk format requires.
func Register(name string, factory func(ordinal int32) Codec) Codec {
	mu.Lock()
	defer mu.Unlock()
	c := factory(nextOrdinal)
	byName[name] = c
	byOrdinal[c.Ordinal()] = c
	nextOrdinal++
	return c
}

// ByName resolves a codec by its registered name.
func ByName(name string) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// ByOrdinal resolves a codec by its trailer ordinal.
func ByOrdinal(ordinal int32) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := byOrdinal[ordinal]
	if !ok {
		return nil, fmt.Errorf("%w: ordinal %d", ErrUnknownCodec, ordinal)
	}
	return c, nil
}

func init() {
	Register("none", newNoneCodec)
	Register("gz", newGzipCodec)
	Register("lz4", newLZ4Codec)
}
