// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"runtime"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
)

type CommonFlags struct {
	Concurrency int  `subcmd:"concurrency,4,'concurrency for the transcoder, 0 for GOMAXPROCS'"`
	Verbose     bool `subcmd:"verbose,false,verbose debug/trace information"`
}

type transcodeFlags struct {
	CommonFlags
	Level       int    `subcmd:"level,6,'DEFLATE compression level (1-9) used to re-encode each block'"`
	BlockSize   int    `subcmd:"block-size,65280,'target uncompressed size of each BGZF block'"`
	FASTQ       bool   `subcmd:"fastq,false,'split on FASTQ record boundaries instead of raw size'"`
	Index       string `subcmd:"index,,'write a .gzi sidecar index to this path'"`
	Verify      bool   `subcmd:"verify,false,'verify each gzip member CRC32/ISIZE while transcoding'"`
	Check       bool   `subcmd:"check,false,'skip transcoding (and exit 0) if the input is already BGZF'"`
	Force       bool   `subcmd:"force,false,'transcode even if --check reports the input is already BGZF'"`
	Output      string `subcmd:"output,,'output file or s3 path, omit for stdout'"`
	ProgressBar bool   `subcmd:"progress,true,'display a progress bar'"`
	JSON        bool   `subcmd:"json,false,'print a one-line JSON summary instead of a progress bar'"`
}

type inspectFlags struct {
	CommonFlags
}

var cmdSet *subcmd.CommandSet

func init() {
	defaultConcurrency := map[string]interface{}{
		"concurrency": runtime.GOMAXPROCS(-1),
	}

	transcodeCmd := subcmd.NewCommand("transcode",
		subcmd.MustRegisterFlagStruct(&transcodeFlags{}, defaultConcurrency, nil),
		transcode, subcmd.ExactlyNumArguments(1))
	transcodeCmd.Document(`half-decompress a gzip file and re-emit it as BGZF. Files may be local, on S3 or a URL.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&inspectFlags{}, nil, nil),
		inspect, subcmd.ExactlyNumArguments(1))
	inspectCmd.Document(`walk a BGZF/gzip file and print per-member (compressed offset, uncompressed size, BC size, CRC32).`)

	cmdSet = subcmd.NewCommandSet(transcodeCmd, inspectCmd)
	cmdSet.Document(`transcode gzip files to BGZF and inspect BGZF structure. Files may be local, on S3 or a URL.`)

	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	// The "index" sub-command is built on cobra rather than subcmd (see
	// SPEC_FULL.md's DOMAIN STACK) so it is dispatched before cmdSet
	// takes over argument parsing.
	if len(os.Args) > 1 && os.Args[1] == "index" {
		cmdutil.HandleSignals(func() {}, os.Interrupt)
		if err := newIndexCommand().Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	cmdSet.MustDispatch(context.Background())
}
