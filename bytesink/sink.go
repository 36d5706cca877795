// Package bytesink is the ByteSink collaborator: positioned writes to a
// byte-addressable destination, with the current write offset available
// for recording block/index/trailer positions as the Writer emits them.
package bytesink

import (
	"io"
	"os"
)

// Sink is the write side of the file engine's filesystem boundary.
type Sink interface {
	io.Writer
	CurrentOffset() (int64, error)
	Close() error
}

// FileSink adapts *os.File to Sink.
type FileSink struct {
	f *os.File
}

// NewFileSink wraps an already-open file positioned at its intended write
// start (typically offset 0 for a freshly created file).
func NewFileSink(f *os.File) *FileSink {
	return &FileSink{f: f}
}

// CreateFile creates (or truncates) path and wraps it as a Sink.
func CreateFile(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return NewFileSink(f), nil
}

func (s *FileSink) Write(p []byte) (int, error) { return s.f.Write(p) }

func (s *FileSink) CurrentOffset() (int64, error) {
	return s.f.Seek(0, io.SeekCurrent)
}

func (s *FileSink) Close() error { return s.f.Close() }
