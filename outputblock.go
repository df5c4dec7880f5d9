// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

import (
	"hash/crc32"

	"github.com/halfdecomp/rebgzf/internal/deflate"
)

// OutputBlock is one prospective BGZF block under construction: a run
// of LZ77 tokens whose expanded length does not exceed the configured
// ceiling, plus the running CRC32/byte-count needed for its eventual
// BGZF trailer.
type OutputBlock struct {
	Seq              uint64
	Tokens           []deflate.Token
	UncompressedSize int
	CRC32            uint32
}

func (b *OutputBlock) appendLiteral(lit byte) {
	b.Tokens = append(b.Tokens, deflate.Token{Kind: deflate.Literal, Literal: lit})
	b.CRC32 = crc32.Update(b.CRC32, crc32.IEEETable, []byte{lit})
	b.UncompressedSize++
}

func (b *OutputBlock) appendReference(length, distance int, resolved []byte) {
	b.Tokens = append(b.Tokens, deflate.Token{Kind: deflate.Reference, Length: length, Distance: distance})
	b.CRC32 = crc32.Update(b.CRC32, crc32.IEEETable, resolved)
	b.UncompressedSize += length
}
