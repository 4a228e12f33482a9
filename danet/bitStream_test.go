package danet

import (
	"bytes"
	"io"
	"testing"
)

func TestReadBitsAligned(t *testing.T) {
	r := NewBitReader([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	got, err := r.ReadBits(16)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if !bytes.Equal(got, []byte{0xAA, 0xBB}) {
		t.Errorf("got % x", got)
	}
	if r.BitOffset != 16 {
		t.Errorf("offset = %d", r.BitOffset)
	}
}

func TestReadBitsUnaligned(t *testing.T) {
	// 1010_1010 1111_0000: skip 4 bits, the next 8 straddle the boundary
	r := NewBitReader([]byte{0xAA, 0xF0})
	r.IgnoreBits(4)
	got, err := r.ReadBits(8)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if got[0] != 0xAF {
		t.Errorf("got %#x, want 0xAF", got[0])
	}
}

func TestReadBitsPartialByte(t *testing.T) {
	r := NewBitReader([]byte{0b1101_0000})
	got, err := r.ReadBits(3)
	if err != nil {
		t.Fatalf("ReadBits: %v", err)
	}
	if got[0] != 0b110 {
		t.Errorf("got %#b, want 0b110", got[0])
	}
	if r.BitOffset != 3 {
		t.Errorf("offset = %d", r.BitOffset)
	}
}

func TestReadBitsExhaustsExactly(t *testing.T) {
	r := NewBitReader([]byte{0x01, 0x02})
	if _, err := r.ReadBits(16); err != nil {
		t.Fatalf("full read: %v", err)
	}
	if _, err := r.ReadBits(1); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestReadCompressed(t *testing.T) {
	cases := []struct {
		in   []byte
		want uint64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7F}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xAC, 0x02}, 300},
		{[]byte{0xFF, 0xFF, 0x7F}, (1 << 21) - 1},
	}
	for _, c := range cases {
		got, err := NewBitReader(c.in).ReadCompressed()
		if err != nil {
			t.Errorf("% x: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("% x: got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestReadCompressedTruncated(t *testing.T) {
	r := NewBitReader([]byte{0x80}) // continuation bit with nothing after it
	if _, err := r.ReadCompressed(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestReadLenStr(t *testing.T) {
	r := NewBitReader(append([]byte{0x05}, []byte("hello tail")...))
	got, err := r.ReadLenStr()
	if err != nil {
		t.Fatalf("ReadLenStr: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestReaderInterface(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r := NewBitReader(data)
	r.IgnoreBytes(2)
	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("io.ReadAll: %v", err)
	}
	if !bytes.Equal(rest, data[2:]) {
		t.Errorf("got % x", rest)
	}
}

func TestAlignToByteBoundary(t *testing.T) {
	r := NewBitReader([]byte{0xFF, 0x42})
	r.IgnoreBits(3)
	r.AlignToByteBoundary()
	b, err := r.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 0x42 {
		t.Errorf("got %#x", b)
	}
	r2 := NewBitReader([]byte{0x11})
	r2.AlignToByteBoundary() // already aligned, must not move
	if r2.BitOffset != 0 {
		t.Errorf("offset = %d", r2.BitOffset)
	}
}
