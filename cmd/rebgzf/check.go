// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"io"

	"github.com/halfdecomp/rebgzf/internal/bitio"
	"github.com/halfdecomp/rebgzf/internal/deflate"
	"github.com/halfdecomp/rebgzf/internal/gzipframe"
)

// alreadyBGZF reports whether every gzip member in r carries a well-formed
// BC extra subfield, the signature grailbio-bio's bgzf writer and
// ianlewis-go-dictzip's reader both use to self-identify BGZF content. It
// walks each member's DEFLATE payload and trailer (the same way
// index.go's buildIndex and inspect.go's inspect do) to reach the next
// member's header, since a later, non-BGZF member would otherwise go
// unprobed.
func alreadyBGZF(r io.Reader) (bool, error) {
	br := bitio.NewReader(r)
	sawMember := false
	for {
		hdr, err := gzipframe.ReadHeader(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, err
		}
		sawMember = true
		if !hasBCSubfield(hdr) {
			return false, nil
		}

		parser := deflate.NewParser(br)
		for {
			blk, err := parser.Next()
			if err != nil {
				return false, err
			}
			if blk.Final {
				break
			}
		}
		if _, err := gzipframe.ReadTrailer(br); err != nil {
			return false, err
		}
	}
	return sawMember, nil
}

func hasBCSubfield(hdr *gzipframe.Header) bool {
	for _, sub := range hdr.ExtraSubfields {
		if sub.SI1 == 'B' && sub.SI2 == 'C' && len(sub.Data) == 2 {
			return true
		}
	}
	return false
}
