// Package bgzfio wraps re-encoded DEFLATE payloads into BGZF members: a
// canonical gzip header carrying a BC extra subfield, the payload, and a
// CRC32/ISIZE trailer. Byte layout is grounded on the pack's
// grailbio-bio bgzf.Writer (same extra-subfield bytes, same BSIZE patch
// offset), adapted here to wrap an already-produced DEFLATE byte slice
// instead of driving a compress/flate-style Writer internally, since the
// payload has already been re-encoded upstream from an LZ77 token
// stream rather than compressed fresh.
package bgzfio

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	// MaxMemberSize is the hard BGZF limit on total (header + payload +
	// trailer) member length; BSIZE is this value minus one.
	MaxMemberSize = 0x10000

	// DefaultBlockCeiling is the default uncompressed-byte ceiling a
	// splitter should target per block: comfortably under 65536 so a
	// worst-case incompressible block (stored, one byte per 5-byte
	// stored-block overhead) still fits within MaxMemberSize.
	DefaultBlockCeiling = 65280
)

var (
	// bgzfExtraPrefix identifies the BC subfield; byte layout per the
	// SAM/BAM spec: subfield id 'B','C', subfield length (2, little
	// endian), then the 2-byte BSIZE payload this package patches in.
	bgzfExtraPrefix = [4]byte{'B', 'C', 2, 0}

	// Terminator is the 28-byte empty BGZF block that must end a valid
	// stream.
	Terminator = []byte{
		0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00, 0x42, 0x43,
		0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// ErrBlockTooLarge is returned when a member would exceed MaxMemberSize.
var ErrBlockTooLarge = errors.New("bgzfio: member exceeds 65536 bytes")

// ErrSizeTooLarge is returned when a block's uncompressed size would
// overflow the 16-bit ISIZE field BGZF relies on for random access.
var ErrSizeTooLarge = errors.New("bgzfio: uncompressed size exceeds 65535 bytes")

// headerSize is the fixed 12-byte gzip header plus the 6-byte extra
// field BGZF always carries (XLEN=6, all of it the BC subfield).
const headerSize = 12 + 6

// WriteBlock assembles one BGZF member from an already-encoded DEFLATE
// payload and writes it to w. crc and isize are the CRC32 and byte
// count of the uncompressed data the payload decodes to (tracked
// incrementally by the caller as tokens are produced, never requiring
// the full plaintext to be materialized at once).
func WriteBlock(w io.Writer, payload []byte, crc uint32, isize uint32) (int, error) {
	if isize > 0xffff {
		return 0, ErrSizeTooLarge
	}
	total := headerSize + len(payload) + 8
	if total > MaxMemberSize {
		return 0, ErrBlockTooLarge
	}
	bsize := uint16(total - 1)

	buf := make([]byte, 0, total)
	buf = append(buf, 0x1f, 0x8b, 0x08, 0x04) // ID1 ID2 CM=deflate FLG=FEXTRA
	buf = append(buf, 0, 0, 0, 0)             // MTIME = 0, canonical output need not preserve the source's
	buf = append(buf, 0, 0xff)                // XFL=0, OS=unknown
	buf = append(buf, 6, 0)                   // XLEN = 6
	buf = append(buf, bgzfExtraPrefix[:]...)
	var bsizeBytes [2]byte
	binary.LittleEndian.PutUint16(bsizeBytes[:], bsize)
	buf = append(buf, bsizeBytes[:]...)

	buf = append(buf, payload...)

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc)
	binary.LittleEndian.PutUint32(trailer[4:8], isize)
	buf = append(buf, trailer[:]...)

	return w.Write(buf)
}

// WriteTerminator appends the 28-byte empty BGZF block that marks the
// end of a valid stream.
func WriteTerminator(w io.Writer) (int, error) {
	return w.Write(Terminator)
}
