package codec

import (
	"io"
	"sync"

	kgzip "github.com/klauspost/compress/gzip"
)

// gzipCodec backs the "gz" codec. *gzip.Writer/*gzip.Reader are genuine
// streaming wrappers with a Reset method, which is exactly the
// borrow-compress-return-to-pool shape the file engine needs per block.
type gzipCodec struct {
	ordinal int32
	wpool   sync.Pool
	rpool   sync.Pool
}

func newGzipCodec(ordinal int32) Codec {
	c := &gzipCodec{ordinal: ordinal}
	c.wpool.New = func() any { return kgzip.NewWriter(io.Discard) }
	return c
}

func (c *gzipCodec) Name() string   { return "gz" }
func (c *gzipCodec) Ordinal() int32 { return c.ordinal }

func (c *gzipCodec) BorrowCompressor(w io.Writer) Compressor {
	gw := c.wpool.Get().(*kgzip.Writer)
	gw.Reset(w)
	return gw
}

func (c *gzipCodec) ReturnCompressor(cm Compressor) {
	if gw, ok := cm.(*kgzip.Writer); ok {
		c.wpool.Put(gw)
	}
}

func (c *gzipCodec) BorrowDecompressor(r io.Reader) (Decompressor, error) {
	if v := c.rpool.Get(); v != nil {
		gr := v.(*kgzip.Reader)
		if err := gr.Reset(r); err != nil {
			return nil, err
		}
		return gr, nil
	}
	return kgzip.NewReader(r)
}

func (c *gzipCodec) ReturnDecompressor(d Decompressor) {
	if gr, ok := d.(*kgzip.Reader); ok {
		c.rpool.Put(gr)
	}
}
