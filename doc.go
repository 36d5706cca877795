// Package hfile implements an immutable, sorted, block-structured
// key/value file format: a Writer appends keys in increasing order and
// produces one self-describing file; a Reader opens that file for random
// point lookups and ordered range scans via a Scanner.
//
// A file is organized as a sequence of independently compressed data
// blocks, followed by zero or more named meta blocks (caller payloads from
// AppendMetaBlock and the optional bloom filter), a small file-info entry map, a block index for
// the data blocks and one for the meta blocks, and a fixed-size trailer
// that locates everything else. Every section but the trailer itself is
// located by walking backward from end of file through the trailer.
package hfile
