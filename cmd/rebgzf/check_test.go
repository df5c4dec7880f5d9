// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"compress/gzip"
	"hash/crc32"
	"testing"

	"github.com/halfdecomp/rebgzf/internal/bgzfio"
	"github.com/halfdecomp/rebgzf/internal/deflate"
)

func bgzfMember(t *testing.T, data []byte) []byte {
	t.Helper()
	tokens := make([]deflate.Token, len(data))
	for i, b := range data {
		tokens[i] = deflate.Token{Kind: deflate.Literal, Literal: b}
	}
	payload := bgzfio.EncodeBlock(tokens, 1)
	crc := crc32.ChecksumIEEE(data)
	var buf bytes.Buffer
	if _, err := bgzfio.WriteBlock(&buf, payload, crc, uint32(len(data))); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	return buf.Bytes()
}

func plainGzipMember(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAlreadyBGZFAllMembersTagged(t *testing.T) {
	var input bytes.Buffer
	input.Write(bgzfMember(t, []byte("abc")))
	input.Write(bgzfMember(t, []byte("def")))

	got, err := alreadyBGZF(bytes.NewReader(input.Bytes()))
	if err != nil {
		t.Fatalf("alreadyBGZF: %v", err)
	}
	if !got {
		t.Fatalf("got false, want true: every member carries a BC subfield")
	}
}

func TestAlreadyBGZFLaterMemberUntagged(t *testing.T) {
	var input bytes.Buffer
	input.Write(bgzfMember(t, []byte("abc")))
	input.Write(plainGzipMember(t, []byte("def")))

	got, err := alreadyBGZF(bytes.NewReader(input.Bytes()))
	if err != nil {
		t.Fatalf("alreadyBGZF: %v", err)
	}
	if got {
		t.Fatalf("got true, want false: second member has no BC subfield")
	}
}

func TestAlreadyBGZFFirstMemberUntagged(t *testing.T) {
	var input bytes.Buffer
	input.Write(plainGzipMember(t, []byte("abc")))
	input.Write(bgzfMember(t, []byte("def")))

	got, err := alreadyBGZF(bytes.NewReader(input.Bytes()))
	if err != nil {
		t.Fatalf("alreadyBGZF: %v", err)
	}
	if got {
		t.Fatalf("got true, want false: first member has no BC subfield")
	}
}
