package hfile

import (
	"errors"
	"os"

	"github.com/Priyanshu23/hfile/blockindex"
	"github.com/Priyanshu23/hfile/codec"
	"github.com/Priyanshu23/hfile/comparator"
	"github.com/Priyanshu23/hfile/magic"
)

// Error kinds. Several are aliases of a collaborator package's own
// sentinel so errors.Is works whether the caller imports hfile or the
// collaborator package directly.
var (
	ErrInvalidKey          = errors.New("hfile: invalid key")
	ErrInvalidValue        = errors.New("hfile: invalid value")
	ErrOutOfOrder          = errors.New("hfile: key out of order")
	ErrReservedPrefix      = errors.New("hfile: fileinfo key uses reserved prefix")
	ErrBadMagic            = magic.ErrBadMagic
	ErrShortRead           = errors.New("hfile: short read")
	ErrUnknownCodec        = codec.ErrUnknownCodec
	ErrUnknownComparator   = comparator.ErrUnknownComparator
	ErrUnsupportedVersion  = errors.New("hfile: unsupported trailer version")
	ErrDecompressionFailed = errors.New("hfile: decompression failed")
	ErrNotSeeked           = errors.New("hfile: scanner not seeked")
	ErrEmpty               = blockindex.ErrEmpty

	// ErrClosed is returned by Writer.Append, AppendMetaBlock and
	// AppendFileInfo once the Writer has been closed, matching the sentinel
	// the teacher's WAL writer reuses for the same purpose.
	ErrClosed = os.ErrClosed
)
