// Package store allocates the sequentially numbered files a batch of
// Writers outputs into one directory, such as a compaction job's output
// set. It resumes numbering from whatever files already exist, the way a
// log-segment directory does, but never reopens or appends to a file
// once it has been handed out: every hfile this engine produces is
// write-once.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/Priyanshu23/hfile/bytesink"
)

const fileExt = ".hfile"

var fileNamePattern = regexp.MustCompile(`^data-(\d+)\.hfile$`)

// Allocator hands out sequentially numbered output files within one
// directory.
type Allocator struct {
	mu     sync.Mutex
	dir    string
	nextID int
}

// NewAllocator opens (creating if necessary) dir and scans it for
// previously allocated files, so a later run resumes numbering rather
// than colliding with earlier output.
func NewAllocator(dir string) (*Allocator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	maxID := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		matches := fileNamePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}
		id, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		if id > maxID {
			maxID = id
		}
	}

	return &Allocator{dir: dir, nextID: maxID + 1}, nil
}

func (a *Allocator) idToPath(id int) string {
	return filepath.Join(a.dir, fmt.Sprintf("data-%06d%s", id, fileExt))
}

// Allocated is one freshly created output file: its sequence number, path,
// and an open Sink ready for a Writer.
type Allocated struct {
	ID   int
	Path string
	Sink *bytesink.FileSink
}

// Next creates and returns the next sequentially numbered output file in
// the directory. The caller owns the returned Sink and must Close it
// (a Writer's Close does this).
func (a *Allocator) Next() (Allocated, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	path := a.idToPath(id)

	sink, err := bytesink.CreateFile(path)
	if err != nil {
		return Allocated{}, fmt.Errorf("store: allocating %s: %w", path, err)
	}

	a.nextID++
	return Allocated{ID: id, Path: path, Sink: sink}, nil
}
