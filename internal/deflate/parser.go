package deflate

import (
	"io"

	"github.com/halfdecomp/rebgzf/internal/bitio"
	"github.com/halfdecomp/rebgzf/internal/huffman"
)

// Parser decodes a DEFLATE bitstream block by block, token by token,
// never assembling plaintext itself; callers that need bytes feed the
// tokens through internal/window.
type Parser struct {
	r *bitio.Reader
}

// NewParser returns a Parser reading from r, which must already be
// positioned at the start of a DEFLATE stream (immediately after any
// gzip member header).
func NewParser(r *bitio.Reader) *Parser {
	return &Parser{r: r}
}

// BitPos returns the parser's current position in the underlying stream.
func (p *Parser) BitPos() int64 { return p.r.BitPos() }

// Next parses and returns the next block. DEFLATE has no "no more
// blocks" marker besides the Final flag, so callers stop after a Final
// block; Next does not return io.EOF, and a call past the end of the
// input reports an error.
func (p *Parser) Next() (*Block, error) {
	start := p.r.BitPos()
	p.r.Refill(true)
	if err := p.r.Err(); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}

	final := p.r.ReadBits(1) == 1
	btype := p.r.ReadBits(2)

	b := &Block{Final: final, StartBit: start}

	var err error
	switch btype {
	case 0:
		b.Type = Stored
		err = p.parseStored(b)
	case 1:
		b.Type = FixedHuffman
		err = p.parseCompressed(b, huffman.FixedLiteralDecoder, huffman.FixedDistanceDecoder)
	case 2:
		b.Type = DynamicHuffman
		err = p.parseDynamic(b)
	default:
		return nil, ErrMalformed
	}
	if err != nil {
		return nil, err
	}
	b.EndBit = p.r.BitPos()
	if perr := p.r.Err(); perr != nil {
		if perr == io.EOF {
			return nil, ErrTruncated
		}
		return nil, perr
	}
	return b, nil
}

func (p *Parser) parseStored(b *Block) error {
	p.r.AlignToByte()
	lenBytes, err := p.r.ReadRaw(2)
	if err != nil {
		return ErrTruncated
	}
	nlenBytes, err := p.r.ReadRaw(2)
	if err != nil {
		return ErrTruncated
	}
	length := int(lenBytes[0]) | int(lenBytes[1])<<8
	nlen := int(nlenBytes[0]) | int(nlenBytes[1])<<8
	if length != (nlen^0xffff)&0xffff {
		return ErrMalformed
	}
	data, err := p.r.ReadRaw(length)
	if err != nil {
		return ErrTruncated
	}
	b.StoredData = data
	return nil
}

func (p *Parser) parseDynamic(b *Block) error {
	hlit := int(p.r.ReadBits(5)) + 257
	hdist := int(p.r.ReadBits(5)) + 1
	hclen := int(p.r.ReadBits(4)) + 4

	var clLengths [19]uint8
	for i := 0; i < hclen; i++ {
		clLengths[codeLengthOrder[i]] = uint8(p.r.ReadBits(3))
	}
	clDecoder, err := huffman.New(clLengths[:])
	if err != nil {
		return ErrMalformed
	}

	combined := make([]uint8, hlit+hdist)
	for i := 0; i < len(combined); {
		sym, err := clDecoder.Decode(p.r)
		if err != nil {
			return ErrMalformed
		}
		switch {
		case sym < 16:
			combined[i] = uint8(sym)
			i++
		case sym == 16:
			if i == 0 {
				return ErrMalformed
			}
			rep := int(p.r.ReadBits(2)) + 3
			prev := combined[i-1]
			for j := 0; j < rep && i < len(combined); j++ {
				combined[i] = prev
				i++
			}
		case sym == 17:
			rep := int(p.r.ReadBits(3)) + 3
			for j := 0; j < rep && i < len(combined); j++ {
				combined[i] = 0
				i++
			}
		case sym == 18:
			rep := int(p.r.ReadBits(7)) + 11
			for j := 0; j < rep && i < len(combined); j++ {
				combined[i] = 0
				i++
			}
		default:
			return ErrMalformed
		}
	}
	if p.r.Err() != nil {
		return ErrTruncated
	}

	litLengths := combined[:hlit]
	distLengths := combined[hlit:]
	litDecoder, err := huffman.New(litLengths)
	if err != nil {
		return ErrMalformed
	}
	distDecoder, derr := distanceDecoderFor(distLengths)
	if derr != nil {
		return derr
	}
	return p.parseCompressed(b, litDecoder, distDecoder)
}

// distanceDecoderFor builds a distance-alphabet decoder, tolerating the
// RFC 1951 section 3.2.7 special case of a single distance code of
// length 1 used by some encoders (notably zlib) for an empty distance
// alphabet (a block with no references at all).
func distanceDecoderFor(lengths []uint8) (*huffman.Decoder, error) {
	used := 0
	for _, l := range lengths {
		if l > 0 {
			used++
		}
	}
	if used == 0 {
		synthetic := make([]uint8, len(lengths))
		synthetic[0] = 1
		return huffman.New(synthetic)
	}
	return huffman.New(lengths)
}

func (p *Parser) parseCompressed(b *Block, lit, dist *huffman.Decoder) error {
	for {
		sym, err := lit.Decode(p.r)
		if err != nil {
			return ErrMalformed
		}
		if p.r.Err() != nil {
			return ErrTruncated
		}
		switch {
		case sym < 256:
			b.Tokens = append(b.Tokens, Token{Kind: Literal, Literal: byte(sym)})
		case sym == 256:
			return nil
		case sym <= 285:
			idx := int(sym) - 257
			if idx >= len(lengthBase) {
				return ErrMalformed
			}
			length := lengthBase[idx]
			if lengthExtraBits[idx] > 0 {
				length += int(p.r.ReadBits(lengthExtraBits[idx]))
			}
			distSym, err := dist.Decode(p.r)
			if err != nil {
				return ErrMalformed
			}
			if int(distSym) >= len(distanceBase) {
				return ErrMalformed
			}
			distance := distanceBase[distSym]
			if distanceExtraBits[distSym] > 0 {
				distance += int(p.r.ReadBits(distanceExtraBits[distSym]))
			}
			if p.r.Err() != nil {
				return ErrTruncated
			}
			b.Tokens = append(b.Tokens, Token{Kind: Reference, Length: length, Distance: distance})
		default:
			return ErrMalformed
		}
	}
}
