package hfile

import "fmt"

// scannerState is the Scanner's internal state machine: a freshly created
// Scanner is Unseeked and must have SeekTo/SeekBefore/SeekToFirst called
// before Key, Value, or Next are valid.
type scannerState int

const (
	stateUnseeked scannerState = iota
	stateSeeked
	stateExhausted
)

// Scanner iterates a Reader's entries in key order, either from an
// explicit seek or from the start of the file. A Scanner holds zero-copy
// views into its current block's decoded bytes, so Key/Value results are
// only valid until the next seek or Next call.
//
// A Scanner is not safe for concurrent use; each goroutine scanning a
// Reader should create its own.
type Scanner struct {
	r     *Reader
	state scannerState

	blockIdx int
	block    []byte
	pos      int // offset of the current entry within block
	nextPos  int // offset one past the current entry
	curKey   []byte
	curVal   []byte
}

// NewScanner creates a Scanner over r. It must be seeked before use.
func (r *Reader) NewScanner() *Scanner {
	return &Scanner{r: r, blockIdx: -1}
}

// SeekToFirst positions the scanner at the file's first entry.
func (s *Scanner) SeekToFirst() (bool, error) {
	if s.r.dataIndex.Count() == 0 {
		s.state = stateExhausted
		return false, nil
	}
	if err := s.loadBlock(0); err != nil {
		return false, err
	}
	s.pos = 0
	if err := s.decodeAt(s.pos); err != nil {
		return false, err
	}
	s.state = stateSeeked
	return true, nil
}

// SeekTo positions the scanner on the greatest key less than or equal to
// target: -1 means target is before every key in the file (the scanner is
// left Unseeked), 0 means target itself was found, 1 means the scanner
// landed on target's predecessor.
func (s *Scanner) SeekTo(target []byte) (int, error) {
	blockIdx := s.r.dataIndex.BlockContainingKey(target)
	if blockIdx < 0 {
		s.state = stateUnseeked
		return -1, nil
	}
	if err := s.loadBlock(blockIdx); err != nil {
		return 0, err
	}
	return s.seekWithinBlock(target)
}

// seekWithinBlock scans the already-loaded block linearly for target,
// landing on an exact match or, failing that, on the greatest key less
// than target found in the block. BlockContainingKey guarantees the
// block's firstKey is <= target, so a predecessor always exists within
// it.
func (s *Scanner) seekWithinBlock(target []byte) (int, error) {
	pos := 0
	lastPos := -1
	for pos < len(s.block) {
		key, _, next, err := decodeEntryAt(s.block, pos)
		if err != nil {
			return 0, err
		}
		c := s.r.cmp.Compare(key, target)
		if c == 0 {
			s.pos = pos
			if err := s.decodeAt(pos); err != nil {
				return 0, err
			}
			s.state = stateSeeked
			return 0, nil
		}
		if c > 0 {
			// Overshot: target lies strictly between the previous entry
			// and this one, so the previous entry is the predecessor.
			if lastPos < 0 {
				s.state = stateUnseeked
				return -1, nil
			}
			s.pos = lastPos
			if err := s.decodeAt(lastPos); err != nil {
				return 0, err
			}
			s.state = stateSeeked
			return 1, nil
		}
		lastPos = pos
		pos = next
	}

	// Reached the end of the block without an exact match or overshoot:
	// target is after every key in the block, so its last entry is the
	// predecessor.
	if lastPos < 0 {
		s.state = stateUnseeked
		return -1, nil
	}
	s.pos = lastPos
	if err := s.decodeAt(lastPos); err != nil {
		return 0, err
	}
	s.state = stateSeeked
	return 1, nil
}

// SeekBefore positions the scanner at the last entry whose key is
// strictly less than target. It returns false if no such entry exists
// (target is at or before the first key in the file).
func (s *Scanner) SeekBefore(target []byte) (bool, error) {
	blockIdx := s.r.dataIndex.BlockContainingKey(target)
	if blockIdx < 0 {
		s.state = stateUnseeked
		return false, nil
	}

	if err := s.loadBlock(blockIdx); err != nil {
		return false, err
	}

	found := false
	pos := 0
	lastPos := 0
	for pos < len(s.block) {
		key, _, next, err := decodeEntryAt(s.block, pos)
		if err != nil {
			return false, err
		}
		if s.r.cmp.Compare(key, target) >= 0 {
			break
		}
		found = true
		lastPos = pos
		pos = next
	}
	if found {
		s.pos = lastPos
		if err := s.decodeAt(lastPos); err != nil {
			return false, err
		}
		s.state = stateSeeked
		return true, nil
	}

	// Every entry in this block is >= target; the predecessor, if any,
	// is the previous block's last entry.
	if blockIdx == 0 {
		s.state = stateUnseeked
		return false, nil
	}
	if err := s.loadBlock(blockIdx - 1); err != nil {
		return false, err
	}
	lastPos = s.lastEntryPos()
	s.pos = lastPos
	if err := s.decodeAt(lastPos); err != nil {
		return false, err
	}
	s.state = stateSeeked
	return true, nil
}

// lastEntryPos returns the byte offset of the last entry in the
// currently loaded block.
func (s *Scanner) lastEntryPos() int {
	pos, last := 0, 0
	for pos < len(s.block) {
		last = pos
		_, _, next, err := decodeEntryAt(s.block, pos)
		if err != nil {
			return last
		}
		pos = next
	}
	return last
}

// Next advances the scanner to the following entry, crossing a block
// boundary if necessary. It returns false once the file is exhausted.
func (s *Scanner) Next() (bool, error) {
	if s.state != stateSeeked {
		return false, ErrNotSeeked
	}
	if s.nextPos < len(s.block) {
		s.pos = s.nextPos
		if err := s.decodeAt(s.pos); err != nil {
			return false, err
		}
		return true, nil
	}

	if s.blockIdx+1 >= s.r.dataIndex.Count() {
		s.state = stateExhausted
		return false, nil
	}
	if err := s.loadBlock(s.blockIdx + 1); err != nil {
		return false, err
	}
	s.pos = 0
	if err := s.decodeAt(s.pos); err != nil {
		return false, err
	}
	return true, nil
}

// Key returns the current entry's key. The slice is only valid until the
// next seek or Next call.
func (s *Scanner) Key() []byte {
	return s.curKey
}

// Value returns the current entry's value. The slice is only valid until
// the next seek or Next call.
func (s *Scanner) Value() []byte {
	return s.curVal
}

// Valid reports whether the scanner is positioned on an entry.
func (s *Scanner) Valid() bool {
	return s.state == stateSeeked
}

func (s *Scanner) loadBlock(i int) error {
	data, err := s.r.loadBlock(i)
	if err != nil {
		return err
	}
	s.blockIdx = i
	s.block = data
	return nil
}

func (s *Scanner) decodeAt(pos int) error {
	key, val, next, err := decodeEntryAt(s.block, pos)
	if err != nil {
		return err
	}
	s.curKey = key
	s.curVal = val
	s.nextPos = next
	return nil
}

// decodeEntryAt decodes the entry at pos within block, returning
// zero-copy views into block for the key and value.
func decodeEntryAt(block []byte, pos int) (key, value []byte, next int, err error) {
	if pos+8 > len(block) {
		return nil, nil, 0, fmt.Errorf("hfile: %w: entry header at %d", ErrShortRead, pos)
	}
	keyLen := int(getUint32BE(block[pos : pos+4]))
	valLen := int(getUint32BE(block[pos+4 : pos+8]))
	start := pos + 8
	if start+keyLen+valLen > len(block) {
		return nil, nil, 0, fmt.Errorf("hfile: %w: entry body at %d", ErrShortRead, pos)
	}
	key = block[start : start+keyLen]
	value = block[start+keyLen : start+keyLen+valLen]
	return key, value, start + keyLen + valLen, nil
}

// Get performs a point lookup for key, returning its value and whether it
// was found. It is a convenience wrapper around SeekTo for callers that
// don't need to hold a long-lived Scanner.
func (r *Reader) Get(key []byte) (value []byte, found bool, err error) {
	if !r.MayContainKey(key) {
		return nil, false, nil
	}
	s := r.NewScanner()
	cmp, err := s.SeekTo(key)
	if err != nil || cmp != 0 {
		return nil, false, err
	}
	out := append([]byte(nil), s.Value()...)
	return out, true, nil
}
