// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wfm-split splits a fastframe WFM capture into n raw curve
// files, one per acquired frame.
package main // import "github.com/go-tek/scope/cmd/wfm-split"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-tek/scope/internal/mmap"
	"github.com/go-tek/scope/wfm"
)

var (
	msg = log.New(os.Stdout, "wfm-split: ", 0)
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("wfm", flag.ExitOnError)

		oname = fset.String("o", "out.curve", "path to output curve file")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: wfm-split [OPTIONS] file.wfm

ex:
 $> wfm-split -o out.curve ./capture.wfm

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		msg.Fatalf("missing input WFM file")
	}

	if *oname == "" {
		fset.Usage()
		msg.Fatalf("invalid output curve file")
	}

	for _, arg := range fset.Args() {
		err := process(*oname, arg)
		if err != nil {
			msg.Fatalf("could not split WFM file %q: %+v", arg, err)
		}
	}
}

func process(oname, fname string) error {
	f, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open WFM file: %w", err)
	}
	defer f.Close()

	raw := f.Bytes()

	var hdr wfm.Header
	err = wfm.NewDecoder(raw).DecodeHeader(&hdr)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	for i := 0; i < hdr.Frames; i++ {
		beg, end := hdr.FrameSpan(i)
		if beg < 0 || end > len(raw) {
			return fmt.Errorf("frame %d curve data [%d, %d) out of range (file=%d)", i, beg, end, len(raw))
		}

		out := outFileFrom(oname, i)
		msg.Printf("creating output file %q...", out)
		err = os.WriteFile(out, raw[beg:end], 0644)
		if err != nil {
			return fmt.Errorf("could not create output file %q: %w", out, err)
		}
	}

	return nil
}

func outFileFrom(fname string, frame int) string {
	var (
		ext   = filepath.Ext(fname)
		oname = strings.Replace(fname, ext, fmt.Sprintf("-%03d%s", frame, ext), 1)
	)
	return oname
}
