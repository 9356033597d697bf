// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// wfm-dump decodes and displays Tektronix WFM capture files.
//
// Usage: wfm-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> wfm-dump ./testdata/capture.wfm
//	=== ./testdata/capture.wfm ===
//	version:     :WFM#002
//	byte order:  little-endian
//	record type:          2
//	frames:               1
//	fastframe:        false
//	summary:              0
//	samples:           1000
//	sample size:          2 byte(s)
//	vscale:      0.01 V
//	voffset:     0
//	tstart:      0 s
//	tscale:      1e-09 s
//	trigger:     2023-11-14 22:13:20.25 +0000 UTC (tfrac=0.5)
//	frame 0: 1000 sample(s)
//	  t=+0.000000e+00 s v=+1.000000e+00 V
//	  [...]
package main // import "github.com/go-tek/scope/cmd/wfm-dump"

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-tek/scope/internal/mmap"
	"github.com/go-tek/scope/wfm"
)

const usage = `wfm-dump decodes and displays Tektronix WFM capture files.

Usage: wfm-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> wfm-dump ./testdata/capture.wfm
 === ./testdata/capture.wfm ===
 version:     :WFM#002
 byte order:  little-endian
 record type:          2
 frames:               1
 fastframe:        false
 summary:              0
 samples:           1000
 sample size:          2 byte(s)
 vscale:      0.01 V
 voffset:     0
 tstart:      0 s
 tscale:      1e-09 s
 trigger:     2023-11-14 22:13:20.25 +0000 UTC (tfrac=0.5)
 frame 0: 1000 sample(s)
   t=+0.000000e+00 s v=+1.000000e+00 V
   [...]

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("wfm-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("wfm", flag.ExitOnError)

		nmax = fset.Int("n", 10, "maximum number of samples to display per frame (0: all)")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input WFM file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *nmax)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, nmax int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	var wf wfm.WFM
	err = wfm.NewDecoder(f.Bytes()).Decode(&wf)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	hdr := wf.Header
	fmt.Fprintf(wbuf, "=== %s ===\n", fname)
	fmt.Fprintf(wbuf, "version:     %s\n", hdr.Version)
	fmt.Fprintf(wbuf, "byte order:  %s\n", hdr.Order)
	fmt.Fprintf(wbuf, "record type: % 10d\n", hdr.RecordType)
	fmt.Fprintf(wbuf, "frames:      % 10d\n", hdr.Frames)
	fmt.Fprintf(wbuf, "fastframe:   %10t\n", hdr.FastFrame)
	fmt.Fprintf(wbuf, "summary:     % 10d\n", hdr.SummaryFrame)
	fmt.Fprintf(wbuf, "samples:     % 10d\n", hdr.Samples)
	fmt.Fprintf(wbuf, "sample size: % 10d byte(s)\n", hdr.BPS)
	fmt.Fprintf(wbuf, "vscale:      %v V\n", hdr.VScale)
	fmt.Fprintf(wbuf, "voffset:     %v\n", hdr.VOffset)
	fmt.Fprintf(wbuf, "tstart:      %v s\n", hdr.TStart)
	fmt.Fprintf(wbuf, "tscale:      %v s\n", hdr.TScale)
	fmt.Fprintf(wbuf, "trigger:     %v (tfrac=%v)\n", hdr.TriggerTime(), hdr.TFrac)

	for i, rec := range wf.Records {
		fmt.Fprintf(wbuf, "frame %d: %d sample(s)\n", i, len(rec.Y))
		n := len(rec.Y)
		if nmax > 0 && n > nmax {
			n = nmax
		}
		for k := 0; k < n; k++ {
			fmt.Fprintf(wbuf, "  t=%+e s v=%+e V\n", rec.X[k], rec.Y[k])
		}
		if n < len(rec.Y) {
			fmt.Fprintf(wbuf, "  [...]\n")
		}
	}

	return nil
}
