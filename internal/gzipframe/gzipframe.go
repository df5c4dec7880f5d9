// Package gzipframe parses gzip member headers and trailers (RFC 1952),
// leaving the DEFLATE payload between them to internal/deflate. It skips
// past optional header fields rather than interpreting them, per
// spec.md's "core ignores the input header's contents except to skip
// past them" note — this is grounded on the pack's grailbio-bio bgzf
// writer, which builds its own canonical header rather than echoing the
// source's.
package gzipframe

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"

	"github.com/halfdecomp/rebgzf/internal/bitio"
)

// ErrMalformed covers a bad magic number, an unsupported compression
// method, or (when FHCRC is set) a header CRC16 mismatch.
var ErrMalformed = errors.New("gzipframe: malformed gzip header")

const (
	idByte1  = 0x1f
	idByte2  = 0x8b
	methodDeflate = 8

	flagFHCRC    = 1 << 1
	flagFEXTRA   = 1 << 2
	flagFNAME    = 1 << 3
	flagFCOMMENT = 1 << 4
)

// Header holds the fields of one gzip member header that the spec cares
// about; the FNAME/FCOMMENT string fields are consumed but not retained,
// but FEXTRA subfields are kept since callers (the BGZF `BC` subfield
// probe in cmd/rebgzf) need to inspect them.
type Header struct {
	Flags          byte
	MTIME          uint32
	XFL            byte
	OS             byte
	ExtraSubfields []ExtraSubfield
}

// ExtraSubfield is one SI1/SI2-tagged subfield of a gzip FEXTRA block
// (RFC 1952 §2.3.1.1). BGZF uses SI1='B', SI2='C' to carry the total
// member size.
type ExtraSubfield struct {
	SI1, SI2 byte
	Data     []byte
}

// ReadHeader parses one gzip member header from r. It returns io.EOF if
// r ends before the two magic bytes of a new header are read (the
// concatenated-member "no more members" case); a short read later in
// the header is ErrMalformed.
func ReadHeader(r *bitio.Reader) (*Header, error) {
	r.AlignToByte()
	magic, err := r.ReadRaw(2)
	if err != nil {
		return nil, io.EOF
	}
	if magic[0] != idByte1 || magic[1] != idByte2 {
		return nil, ErrMalformed
	}
	rest, err := r.ReadRaw(8)
	if err != nil {
		return nil, ErrMalformed
	}
	method := rest[0]
	if method != methodDeflate {
		return nil, ErrMalformed
	}
	h := &Header{
		Flags: rest[1],
		MTIME: binary.LittleEndian.Uint32(rest[2:6]),
		XFL:   rest[6],
		OS:    rest[7],
	}

	headerCRC := crc32Helper(magic, rest)

	if h.Flags&flagFEXTRA != 0 {
		xlenBytes, err := r.ReadRaw(2)
		if err != nil {
			return nil, ErrMalformed
		}
		headerCRC.Write(xlenBytes)
		xlen := int(binary.LittleEndian.Uint16(xlenBytes))
		extra, err := r.ReadRaw(xlen)
		if err != nil {
			return nil, ErrMalformed
		}
		headerCRC.Write(extra)
		subs, err := parseExtraSubfields(extra)
		if err != nil {
			return nil, ErrMalformed
		}
		h.ExtraSubfields = subs
	}
	if h.Flags&flagFNAME != 0 {
		if err := skipCString(r, headerCRC); err != nil {
			return nil, ErrMalformed
		}
	}
	if h.Flags&flagFCOMMENT != 0 {
		if err := skipCString(r, headerCRC); err != nil {
			return nil, ErrMalformed
		}
	}
	if h.Flags&flagFHCRC != 0 {
		want, err := r.ReadRaw(2)
		if err != nil {
			return nil, ErrMalformed
		}
		got := uint16(headerCRC.Sum32())
		if binary.LittleEndian.Uint16(want) != got {
			return nil, ErrMalformed
		}
	}
	return h, nil
}

// Trailer is the 8-byte gzip trailer: CRC32 and ISIZE (mod 2^32) of the
// uncompressed stream.
type Trailer struct {
	CRC32 uint32
	ISIZE uint32
}

// ReadTrailer reads the 8-byte CRC32+ISIZE trailer following the final
// DEFLATE block. It first aligns r to a byte boundary, since the
// DEFLATE parser leaves the reader mid-byte after the final block's EOB
// symbol.
func ReadTrailer(r *bitio.Reader) (*Trailer, error) {
	r.AlignToByte()
	b, err := r.ReadRaw(8)
	if err != nil {
		return nil, ErrMalformed
	}
	return &Trailer{
		CRC32: binary.LittleEndian.Uint32(b[0:4]),
		ISIZE: binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// parseExtraSubfields walks the SI1/SI2/SLEN/DATA subfields packed into
// a gzip FEXTRA block (RFC 1952 §2.3.1.1).
func parseExtraSubfields(extra []byte) ([]ExtraSubfield, error) {
	var subs []ExtraSubfield
	for len(extra) > 0 {
		if len(extra) < 4 {
			return nil, ErrMalformed
		}
		slen := int(binary.LittleEndian.Uint16(extra[2:4]))
		if len(extra) < 4+slen {
			return nil, ErrMalformed
		}
		subs = append(subs, ExtraSubfield{
			SI1:  extra[0],
			SI2:  extra[1],
			Data: extra[4 : 4+slen],
		})
		extra = extra[4+slen:]
	}
	return subs, nil
}

func skipCString(r *bitio.Reader, h *crcWriter) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		h.Write([]byte{b})
		if b == 0 {
			return nil
		}
	}
}

// crcWriter lets header-CRC accumulation share the same Write-based
// style as hash/crc32 without importing a hash.Hash32 just to discard
// most of its interface.
type crcWriter struct {
	sum uint32
}

func (c *crcWriter) Write(p []byte) {
	c.sum = crc32.Update(c.sum, crc32.IEEETable, p)
}

func (c *crcWriter) Sum32() uint32 { return c.sum }

func crc32Helper(magic []byte, rest []byte) *crcWriter {
	c := &crcWriter{}
	c.Write(magic)
	c.Write(rest)
	return c
}
