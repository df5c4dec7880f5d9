// Package gzi writes the GZI sidecar index: a little-endian table of
// (compressed_offset, uncompressed_offset) pairs marking the start of
// each BGZF block after the first, letting downstream tools seek
// directly to a block without scanning from the start of the file.
package gzi

import (
	"encoding/binary"
	"io"
)

// Entry records one block boundary: the compressed byte offset of the
// block's first byte, and the cumulative uncompressed byte offset at
// that point.
type Entry struct {
	CompressedOffset   uint64
	UncompressedOffset uint64
}

// Writer accumulates Entry records and serializes them in WriteTo, per
// the GZI format: an 8-byte little-endian count followed by that many
// (offset, offset) uint64 pairs.
type Writer struct {
	entries []Entry
}

// New returns an empty GZI Writer.
func New() *Writer {
	return &Writer{}
}

// Add records one block boundary. The first block (offset 0,0) is
// conventionally omitted, matching samtools' bgzip -r output.
func (w *Writer) Add(compressedOffset, uncompressedOffset uint64) {
	w.entries = append(w.entries, Entry{compressedOffset, uncompressedOffset})
}

// Len returns the number of recorded entries.
func (w *Writer) Len() int { return len(w.entries) }

// WriteTo serializes the index to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(w.entries)))
	n, err := dst.Write(header[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	buf := make([]byte, 16)
	for _, e := range w.entries {
		binary.LittleEndian.PutUint64(buf[0:8], e.CompressedOffset)
		binary.LittleEndian.PutUint64(buf[8:16], e.UncompressedOffset)
		n, err := dst.Write(buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
