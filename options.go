package hfile

import "github.com/Priyanshu23/hfile/blockcache"

// DefaultBlockSize is the target uncompressed size, in bytes, of a data
// block before the Writer rolls over to a new one.
const DefaultBlockSize = 64 * 1024

// writerConfig holds the resolved settings a Writer was built with.
type writerConfig struct {
	blockSize   int
	codecName   string
	cmpName     string
	withBloom   bool
	bloomKeys   uint
	bloomFPRate float64
}

func defaultWriterConfig() writerConfig {
	return writerConfig{
		blockSize: DefaultBlockSize,
		codecName: "none",
		cmpName:   "bytes.compare",
	}
}

// WriterOption configures a Writer at construction time, following the
// functional-options style the teacher uses for its segment manager.
type WriterOption func(*writerConfig)

// WithBlockSize sets the target uncompressed data block size.
func WithBlockSize(n int) WriterOption {
	return func(c *writerConfig) { c.blockSize = n }
}

// WithCodec selects the block compression codec by its registered name
// ("none", "gz", "lz4").
func WithCodec(name string) WriterOption {
	return func(c *writerConfig) { c.codecName = name }
}

// WithComparator selects the registered key comparator by name.
func WithComparator(name string) WriterOption {
	return func(c *writerConfig) { c.cmpName = name }
}

// WithBloomFilter asks the Writer to build and persist a bloom filter
// sized for the given expected key count and false-positive rate.
func WithBloomFilter(expectedKeys uint, falsePositiveRate float64) WriterOption {
	return func(c *writerConfig) {
		c.withBloom = true
		c.bloomKeys = expectedKeys
		c.bloomFPRate = falsePositiveRate
	}
}

// readerConfig holds the resolved settings a Reader was built with.
type readerConfig struct {
	cache blockcache.Cache
}

func defaultReaderConfig() readerConfig {
	return readerConfig{cache: blockcache.NewNoop()}
}

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*readerConfig)

// WithBlockCache installs a block cache used to avoid re-decompressing
// recently read blocks.
func WithBlockCache(c blockcache.Cache) ReaderOption {
	return func(rc *readerConfig) { rc.cache = c }
}
