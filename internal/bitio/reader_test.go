package bitio

import (
	"bytes"
	"testing"
)

func TestReaderReadBits(t *testing.T) {
	// 0b10110010, 0b00000001 read LSB-first: first 3 bits are 0,1,0 (=2).
	for i, tc := range []struct {
		data []byte
		n    uint
		want uint32
	}{
		{[]byte{0xb2}, 3, 2},
		{[]byte{0xb2}, 8, 0xb2},
		{[]byte{0x01, 0x00}, 9, 1},
		{[]byte{0xff, 0xff, 0xff}, 17, 0x1ffff},
	} {
		r := NewReader(bytes.NewReader(tc.data))
		if got := r.ReadBits(tc.n); got != tc.want {
			t.Errorf("%v: got %#x, want %#x", i, got, tc.want)
		}
	}
}

func TestReaderAlignAndRaw(t *testing.T) {
	data := []byte{0xff, 0x41, 0x42, 0x43}
	r := NewReader(bytes.NewReader(data))
	r.ReadBits(3)
	r.AlignToByte()
	raw, err := r.ReadRaw(3)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if !bytes.Equal(raw, []byte{0x41, 0x42, 0x43}) {
		t.Errorf("got %x, want 414243", raw)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01}))
	r.ReadBits(8)
	r.Refill(false)
	if r.Err() == nil {
		t.Errorf("expected error on mid-block truncation")
	}
}

func TestReaderHeaderEOF(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	r.Refill(true)
	if r.Err() != nil {
		t.Errorf("header-scan EOF should not be an error, got %v", r.Err())
	}
}

func TestBitPos(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xff, 0xff}))
	r.ReadBits(5)
	if got, want := r.BitPos(), int64(5); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
