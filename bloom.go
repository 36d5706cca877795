package hfile

import (
	"io"

	"github.com/bits-and-blooms/bloom/v3"
)

// bloomMetaKey is the meta block name the optional bloom filter is
// persisted under.
const bloomMetaKey = "bloom"

// bloomBuilder accumulates keys during a write and serializes to the meta
// block bloom.* persists under.
type bloomBuilder struct {
	filter *bloom.BloomFilter
}

func newBloomBuilder(expectedKeys uint, falsePositiveRate float64) *bloomBuilder {
	return &bloomBuilder{filter: bloom.NewWithEstimates(expectedKeys, falsePositiveRate)}
}

func (b *bloomBuilder) add(key []byte) {
	b.filter.Add(key)
}

func (b *bloomBuilder) serialize(w io.Writer) error {
	_, err := b.filter.WriteTo(w)
	return err
}

// loadBloomFilter deserializes a bloom filter previously written by
// bloomBuilder.serialize.
func loadBloomFilter(r io.Reader) (*bloom.BloomFilter, error) {
	f := &bloom.BloomFilter{}
	if _, err := f.ReadFrom(r); err != nil {
		return nil, err
	}
	return f, nil
}

// mayContain reports whether key could be present, consulting the bloom
// filter when one was loaded; a nil filter always answers true so callers
// fall through to the real index lookup.
func mayContain(f *bloom.BloomFilter, key []byte) bool {
	if f == nil {
		return true
	}
	return f.Test(key)
}
