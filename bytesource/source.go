// Package bytesource is the ByteSource collaborator: positioned reads of a
// seekable byte range of known length, plus the bounded input-range
// adapter the Reader uses to hand a codec exactly the compressed bytes of
// one block.
package bytesource

import (
	"io"
	"os"
)

// Source is the read side of the file engine's filesystem boundary.
type Source interface {
	io.ReaderAt
	Length() int64
	Close() error
}

// FileSource adapts *os.File to Source.
type FileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path read-only and stats its length up front.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := NewFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

// NewFileSource wraps an already-open file.
func NewFileSource(f *os.File) (*FileSource, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &FileSource{f: f, size: stat.Size()}, nil
}

func (s *FileSource) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *FileSource) Length() int64                           { return s.size }
func (s *FileSource) Close() error                            { return s.f.Close() }

// Bounded returns a reader restricted to the byte range [offset,
// offset+length) of src, so a codec or index deserializer can never read
// past the span it was handed.
func Bounded(src Source, offset, length int64) *io.SectionReader {
	return io.NewSectionReader(src, offset, length)
}
