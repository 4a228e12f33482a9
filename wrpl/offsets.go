package wrpl

import (
	"bytes"
	"errors"
)

var ErrNoCandidateFound = errors.New("no compressed body candidate found")

// zlibSignatures are the stream headers seen in replay bodies:
// best speed (client replays), default, best compression.
var zlibSignatures = [][]byte{
	{0x78, 0x5E},
	{0x78, 0x9C},
	{0x78, 0xDA},
}

// BodyRange locates the compressed payload within the original file.
// The end is best effort: the stream's true length is only known after
// decompression.
type BodyRange struct {
	Offset int
	Length int
}

// OffsetScanner yields candidate offsets for the compressed body. The
// declared rez_offset is tried first when a zlib signature sits there;
// after that the scanner walks forward from the end of the fixed header,
// bounded by the scan window, lowest offset first. The sequence is
// finite and restartable via Reset.
type OffsetScanner struct {
	data     []byte
	rez      int
	pos      int
	limit    int
	triedRez bool
}

// NewOffsetScanner builds a scanner over the full file contents.
func NewOffsetScanner(data []byte, h *ReplayHeader, cfg Config) *OffsetScanner {
	s := &OffsetScanner{data: data, rez: -1}
	if h != nil && h.RezOffset != 0 {
		s.rez = int(h.RezOffset)
	}
	s.Reset()
	s.limit = HeaderSize + cfg.MaxScanWindow
	if s.limit > len(data) || cfg.MaxScanWindow <= 0 {
		s.limit = len(data)
	}
	return s
}

// Reset restarts the candidate sequence from the beginning of the
// search window.
func (s *OffsetScanner) Reset() {
	s.pos = HeaderSize
	s.triedRez = false
}

// Next returns the next candidate offset, or false when the sequence is
// exhausted.
func (s *OffsetScanner) Next() (int, bool) {
	if !s.triedRez {
		s.triedRez = true
		if s.rez >= 0 && signatureAt(s.data, s.rez) {
			return s.rez, true
		}
	}
	for s.pos < s.limit {
		idx := bytes.IndexByte(s.data[s.pos:s.limit], 0x78)
		if idx < 0 {
			s.pos = s.limit
			break
		}
		at := s.pos + idx
		s.pos = at + 1
		if at == s.rez { // already tried as the declared offset
			continue
		}
		if signatureAt(s.data, at) {
			return at, true
		}
	}
	return 0, false
}

func signatureAt(data []byte, off int) bool {
	if off < 0 || off+2 > len(data) {
		return false
	}
	for _, sig := range zlibSignatures {
		if bytes.Equal(data[off:off+2], sig) {
			return true
		}
	}
	return false
}

// ScanBodyRange returns the first candidate as a BodyRange or
// ErrNoCandidateFound.
func ScanBodyRange(data []byte, h *ReplayHeader, cfg Config) (BodyRange, error) {
	off, ok := NewOffsetScanner(data, h, cfg).Next()
	if !ok {
		return BodyRange{}, ErrNoCandidateFound
	}
	return BodyRange{Offset: off, Length: len(data) - off}, nil
}
