// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package rebgzf

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"
	"testing"
)

func gzipCompress(t *testing.T, data []byte, level int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeBGZF(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	zr.Multistream(true)
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return got
}

func TestTranscodeSingleByte(t *testing.T) {
	input := gzipCompress(t, []byte{0x41}, gzip.BestCompression)
	var out bytes.Buffer
	if err := Transcode(context.Background(), bytes.NewReader(input), &out, Concurrency(1)); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	got := decodeBGZF(t, out.Bytes())
	if !bytes.Equal(got, []byte{0x41}) {
		t.Fatalf("got %v, want [0x41]", got)
	}
}

func TestTranscodeRepeatedByte(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 1000)
	input := gzipCompress(t, data, gzip.DefaultCompression)
	var out bytes.Buffer
	if err := Transcode(context.Background(), bytes.NewReader(input), &out, Level(1), Concurrency(1)); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	got := decodeBGZF(t, out.Bytes())
	if !bytes.Equal(got, data) {
		t.Fatalf("mismatch: got %v bytes, want %v", len(got), len(data))
	}
}

func TestTranscodeEndsWithTerminator(t *testing.T) {
	input := gzipCompress(t, []byte("abc"), gzip.DefaultCompression)
	var out bytes.Buffer
	if err := Transcode(context.Background(), bytes.NewReader(input), &out, Concurrency(1)); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	b := out.Bytes()
	if len(b) < 28 {
		t.Fatalf("output too short for a terminator: %v bytes", len(b))
	}
	tail := b[len(b)-28:]
	if !bytes.HasPrefix(tail, []byte{0x1f, 0x8b}) {
		t.Fatalf("missing terminator gzip magic")
	}
}

func TestTranscodeLargerInput(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20000; i++ {
		sb.WriteString("the quick brown fox jumps over the lazy dog\n")
	}
	data := []byte(sb.String())
	input := gzipCompress(t, data, gzip.BestCompression)

	var out bytes.Buffer
	if err := Transcode(context.Background(), bytes.NewReader(input), &out, Level(6), BlockSize(65280), Concurrency(1)); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	got := decodeBGZF(t, out.Bytes())
	if !bytes.Equal(got, data) {
		t.Fatalf("mismatch: got %v bytes, want %v", len(got), len(data))
	}
}

func TestTranscodeParallelMatchesSingleThreaded(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		sb.WriteString("abcdefghijklmnopqrstuvwxyz0123456789\n")
	}
	data := []byte(sb.String())
	input := gzipCompress(t, data, gzip.DefaultCompression)

	var single bytes.Buffer
	if err := Transcode(context.Background(), bytes.NewReader(input), &single, Level(4), Concurrency(1)); err != nil {
		t.Fatalf("Transcode (single): %v", err)
	}
	singleDecoded := decodeBGZF(t, single.Bytes())

	var parallel bytes.Buffer
	if err := Transcode(context.Background(), bytes.NewReader(input), &parallel, Level(4), Concurrency(4)); err != nil {
		t.Fatalf("Transcode (parallel): %v", err)
	}
	parallelDecoded := decodeBGZF(t, parallel.Bytes())

	if !bytes.Equal(singleDecoded, parallelDecoded) {
		t.Fatalf("decoded content differs between engines")
	}
	if !bytes.Equal(singleDecoded, data) {
		t.Fatalf("decoded content does not match original")
	}
}

func TestTranscodeConcatenatedMembers(t *testing.T) {
	var input bytes.Buffer
	input.Write(gzipCompress(t, []byte(strings.Repeat("x", 100)), gzip.DefaultCompression))
	input.Write(gzipCompress(t, []byte(strings.Repeat("y", 100)), gzip.DefaultCompression))

	var out bytes.Buffer
	if err := Transcode(context.Background(), bytes.NewReader(input.Bytes()), &out, Concurrency(1)); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	got := decodeBGZF(t, out.Bytes())
	want := strings.Repeat("x", 100) + strings.Repeat("y", 100)
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTranscodeMalformedDeflate(t *testing.T) {
	// A gzip header followed by a byte whose low 3 bits select the
	// reserved BTYPE=11, which must surface as MalformedDeflate.
	input := gzipCompress(t, []byte("valid"), gzip.DefaultCompression)
	corrupt := append([]byte(nil), input...)
	corrupt[10] |= 0x06 // set BTYPE=11 (bits 1-2) in the first block header byte

	var out bytes.Buffer
	err := Transcode(context.Background(), bytes.NewReader(corrupt), &out, Concurrency(1))
	if err == nil {
		t.Fatalf("expected an error for corrupted DEFLATE stream")
	}
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != KindMalformedDeflate {
		t.Fatalf("got %v, want MalformedDeflate", err)
	}
}

func TestTranscodeInvalidLevel(t *testing.T) {
	var out bytes.Buffer
	err := Transcode(context.Background(), strings.NewReader(""), &out, Level(10))
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != KindConfigError {
		t.Fatalf("got %v, want ConfigError", err)
	}
}

func TestTranscodeInvalidBlockSize(t *testing.T) {
	var out bytes.Buffer
	err := Transcode(context.Background(), strings.NewReader(""), &out, BlockSize(70000))
	rerr, ok := err.(*Error)
	if !ok || rerr.Kind != KindConfigError {
		t.Fatalf("got %v, want ConfigError", err)
	}
}

func TestValidateClampsLevelForFASTQ(t *testing.T) {
	o := defaultOpts()
	o.level = 1
	o.format = FormatFASTQ
	if err := validate(&o); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if o.level != 6 {
		t.Fatalf("got level %v, want 6 (FASTQ floor)", o.level)
	}
}

func TestValidateLeavesHigherLevelAloneForFASTQ(t *testing.T) {
	o := defaultOpts()
	o.level = 9
	o.format = FormatFASTQ
	if err := validate(&o); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if o.level != 9 {
		t.Fatalf("got level %v, want 9 (already above the FASTQ floor)", o.level)
	}
}
