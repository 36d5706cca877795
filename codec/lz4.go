package codec

import (
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec backs the "lz4" codec, pooling *lz4.Writer the same way
// arloliu-mebo's compress package pools an lz4.Compressor.
type lz4Codec struct {
	ordinal int32
	wpool   sync.Pool
	rpool   sync.Pool
}

func newLZ4Codec(ordinal int32) Codec {
	c := &lz4Codec{ordinal: ordinal}
	c.wpool.New = func() any { return lz4.NewWriter(io.Discard) }
	return c
}

func (c *lz4Codec) Name() string   { return "lz4" }
func (c *lz4Codec) Ordinal() int32 { return c.ordinal }

func (c *lz4Codec) BorrowCompressor(w io.Writer) Compressor {
	lw := c.wpool.Get().(*lz4.Writer)
	lw.Reset(w)
	return lw
}

func (c *lz4Codec) ReturnCompressor(cm Compressor) {
	if lw, ok := cm.(*lz4.Writer); ok {
		c.wpool.Put(lw)
	}
}

// lz4Decompressor adapts *lz4.Reader, which has no Close method of its
// own, to the Decompressor interface.
type lz4Decompressor struct {
	*lz4.Reader
}

func (lz4Decompressor) Close() error { return nil }

func (c *lz4Codec) BorrowDecompressor(r io.Reader) (Decompressor, error) {
	if v := c.rpool.Get(); v != nil {
		lr := v.(*lz4.Reader)
		lr.Reset(r)
		return lz4Decompressor{lr}, nil
	}
	return lz4Decompressor{lz4.NewReader(r)}, nil
}

func (c *lz4Codec) ReturnDecompressor(d Decompressor) {
	if ld, ok := d.(lz4Decompressor); ok {
		c.rpool.Put(ld.Reader)
	}
}
