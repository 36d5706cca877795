package codec

import "io"

// noneCodec is the pass-through codec (ordinal 0). There is no third-party
// library that "does nothing" to wire here, so this one codec is the
// single hand-rolled exception to the rest of the package.
type noneCodec struct {
	ordinal int32
}

func newNoneCodec(ordinal int32) Codec { return &noneCodec{ordinal: ordinal} }

func (c *noneCodec) Name() string   { return "none" }
func (c *noneCodec) Ordinal() int32 { return c.ordinal }

type noneCompressor struct{ io.Writer }

func (noneCompressor) Close() error { return nil }

func (c *noneCodec) BorrowCompressor(w io.Writer) Compressor {
	return noneCompressor{w}
}

func (c *noneCodec) ReturnCompressor(Compressor) {}

type noneDecompressor struct{ io.Reader }

func (noneDecompressor) Close() error { return nil }

func (c *noneCodec) BorrowDecompressor(r io.Reader) (Decompressor, error) {
	return noneDecompressor{r}, nil
}

func (c *noneCodec) ReturnDecompressor(Decompressor) {}
