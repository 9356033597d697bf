// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wfm2csv converts a Tektronix WFM capture file to a CSV one.
package main // import "github.com/go-tek/scope/cmd/wfm2csv"

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go-hep.org/x/hep/csvutil"

	"github.com/go-tek/scope/internal/mmap"
	"github.com/go-tek/scope/internal/xcnv"
	"github.com/go-tek/scope/wfm"
)

var (
	msg = log.New(os.Stdout, "wfm2csv: ", 0)
)

func main() {
	var (
		oname = flag.String("o", "out.csv", "path to output CSV file")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: wfm2csv [OPTIONS] file.wfm

ex:
 $> wfm2csv -o out.csv ./capture.wfm

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		msg.Fatalf("missing input WFM file")
	}

	if *oname == "" {
		flag.Usage()
		msg.Fatalf("invalid output CSV file name")
	}

	err := process(*oname, flag.Arg(0))
	if err != nil {
		msg.Fatalf("could not convert WFM file: %+v", err)
	}
}

func process(oname, fname string) error {
	f, err := mmap.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open WFM file: %w", err)
	}
	defer f.Close()

	var w wfm.WFM
	err = wfm.NewDecoder(f.Bytes()).Decode(&w)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", fname, err)
	}

	tbl, err := csvutil.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output CSV file: %w", err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ','

	err = xcnv.WFM2CSV(tbl, &w, msg)
	if err != nil {
		return fmt.Errorf("could not convert WFM to CSV: %w", err)
	}

	err = tbl.Close()
	if err != nil {
		return fmt.Errorf("could not close output CSV file: %w", err)
	}

	return nil
}
