package wrpl

import (
	"errors"
	"testing"
)

// buildFile lays out a header followed by filler, then plants the given
// byte runs at absolute offsets.
func buildFile(t *testing.T, size int, mutate func(*rawHeader), plant map[int][]byte) []byte {
	t.Helper()
	if size < HeaderSize {
		t.Fatalf("file size %d below header size", size)
	}
	data := make([]byte, size)
	copy(data, buildRawHeader(t, mutate))
	for off, b := range plant {
		copy(data[off:], b)
	}
	return data
}

func TestOffsetScannerFindsSignature(t *testing.T) {
	data := buildFile(t, HeaderSize+512, func(raw *rawHeader) { raw.RezOffset = 0 },
		map[int][]byte{HeaderSize + 100: {0x78, 0x9C}})
	off, ok := NewOffsetScanner(data, nil, DefaultConfig()).Next()
	if !ok || off != HeaderSize+100 {
		t.Fatalf("got (%d, %v), want (%d, true)", off, ok, HeaderSize+100)
	}
}

func TestOffsetScannerPrefersDeclaredOffset(t *testing.T) {
	// valid signatures both early and at the declared offset: the
	// declared one must be yielded first even though it sits later
	rez := HeaderSize + 300
	data := buildFile(t, HeaderSize+512, func(raw *rawHeader) { raw.RezOffset = uint32(rez) },
		map[int][]byte{
			HeaderSize + 10: {0x78, 0x5E},
			rez:             {0x78, 0xDA},
		})
	h, _, err := ParseHeader(data, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s := NewOffsetScanner(data, h, DefaultConfig())
	first, _ := s.Next()
	second, _ := s.Next()
	if first != rez {
		t.Errorf("first candidate = %d, want declared %d", first, rez)
	}
	if second != HeaderSize+10 {
		t.Errorf("second candidate = %d, want %d", second, HeaderSize+10)
	}
}

func TestOffsetScannerFallsBackOnBadDeclaredOffset(t *testing.T) {
	// declared offset points at junk, a real signature sits later
	data := buildFile(t, HeaderSize+512, func(raw *rawHeader) { raw.RezOffset = uint32(HeaderSize + 5) },
		map[int][]byte{HeaderSize + 200: {0x78, 0x9C}})
	h, _, err := ParseHeader(data, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	off, ok := NewOffsetScanner(data, h, DefaultConfig()).Next()
	if !ok || off != HeaderSize+200 {
		t.Fatalf("got (%d, %v), want (%d, true)", off, ok, HeaderSize+200)
	}
}

func TestOffsetScannerLowestOffsetWinsAndRestarts(t *testing.T) {
	data := buildFile(t, HeaderSize+512, func(raw *rawHeader) { raw.RezOffset = 0 },
		map[int][]byte{
			HeaderSize + 50:  {0x78, 0xDA},
			HeaderSize + 150: {0x78, 0x5E},
		})
	s := NewOffsetScanner(data, nil, DefaultConfig())
	var got []int
	for {
		off, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, off)
	}
	if len(got) != 2 || got[0] != HeaderSize+50 || got[1] != HeaderSize+150 {
		t.Fatalf("candidates = %v", got)
	}
	s.Reset()
	off, ok := s.Next()
	if !ok || off != HeaderSize+50 {
		t.Fatalf("after Reset got (%d, %v)", off, ok)
	}
}

func TestOffsetScannerBoundedWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxScanWindow = 64
	data := buildFile(t, HeaderSize+512, func(raw *rawHeader) { raw.RezOffset = 0 },
		map[int][]byte{HeaderSize + 100: {0x78, 0x9C}}) // outside the window
	if _, ok := NewOffsetScanner(data, nil, cfg).Next(); ok {
		t.Fatal("candidate found outside the scan window")
	}
	_, err := ScanBodyRange(data, nil, cfg)
	if !errors.Is(err, ErrNoCandidateFound) {
		t.Fatalf("err = %v, want ErrNoCandidateFound", err)
	}
}

func TestOffsetScannerIgnoresLoneSignatureByte(t *testing.T) {
	data := buildFile(t, HeaderSize+128, func(raw *rawHeader) { raw.RezOffset = 0 },
		map[int][]byte{
			HeaderSize + 10: {0x78, 0x00}, // 0x78 without a valid second byte
			HeaderSize + 40: {0x78, 0x9C},
		})
	off, ok := NewOffsetScanner(data, nil, DefaultConfig()).Next()
	if !ok || off != HeaderSize+40 {
		t.Fatalf("got (%d, %v), want (%d, true)", off, ok, HeaderSize+40)
	}
}
