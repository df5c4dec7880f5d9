// Package deflate parses and re-emits RFC 1951 DEFLATE block streams as
// sequences of LZ77 tokens, without ever materializing the decompressed
// plaintext. This is the "half-decompression" core: a Block's Tokens slice
// is enough to reconstruct the original bytes via internal/window, or to
// re-encode a fresh DEFLATE stream carrying the same bytes in different
// block boundaries.
package deflate

// TokenKind distinguishes the two LZ77 token shapes DEFLATE emits.
type TokenKind uint8

const (
	// Literal carries a single decoded byte.
	Literal TokenKind = iota
	// Reference carries a (distance, length) back-reference into the
	// 32KiB sliding window.
	Reference
)

// Token is one LZ77 symbol: either a literal byte or a back-reference.
// Length and Distance are only meaningful when Kind is Reference.
type Token struct {
	Kind     TokenKind
	Literal  byte
	Length   int // 3..258
	Distance int // 1..32768
}

// Size reports how many plaintext bytes this token expands to.
func (t Token) Size() int {
	if t.Kind == Literal {
		return 1
	}
	return t.Length
}

// BlockType mirrors RFC 1951 section 3.2.3's BTYPE field.
type BlockType uint8

const (
	Stored BlockType = iota
	FixedHuffman
	DynamicHuffman
)

// Block is one parsed DEFLATE block: its framing (type, final flag) plus
// the token stream it decodes to. StoredData holds the raw bytes for
// Stored blocks instead of populating Tokens, since a stored block has no
// LZ77 structure to preserve.
type Block struct {
	Final      bool
	Type       BlockType
	Tokens     []Token // valid when Type != Stored
	StoredData []byte  // valid when Type == Stored

	// StartBit and EndBit record the block's extent in the source
	// bitstream, for diagnostics.
	StartBit int64
	EndBit   int64
}

// UncompressedLen returns the number of plaintext bytes this block
// expands to.
func (b *Block) UncompressedLen() int {
	if b.Type == Stored {
		return len(b.StoredData)
	}
	n := 0
	for _, t := range b.Tokens {
		n += t.Size()
	}
	return n
}
