// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wfm-index scans Tektronix WFM capture files and records them
// in the capture catalog.
package main // import "github.com/go-tek/scope/cmd/wfm-index"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/go-tek/scope/catalog"
	"github.com/go-tek/scope/internal/mmap"
	"github.com/go-tek/scope/wfm"
)

var (
	msg = log.New(os.Stdout, "wfm-index: ", 0)
)

func main() {
	var (
		dbname = flag.String("db", "captures", "name of the capture database")
		dry    = flag.Bool("dry-run", false, "scan captures without recording them")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: wfm-index [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

ex:
 $> wfm-index -db captures ./runs/*.wfm

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		msg.Fatalf("missing path to input WFM file(s)")
	}

	cs, err := scan(flag.Args())
	if err != nil {
		msg.Fatalf("could not scan captures: %+v", err)
	}

	for _, c := range cs {
		msg.Printf("%s: %s, %d frame(s), %d sample(s)", c.Path, c.Version, c.Frames, c.Samples)
	}

	if *dry {
		return
	}

	db, err := catalog.Open(*dbname)
	if err != nil {
		msg.Fatalf("could not open capture db: %+v", err)
	}
	defer db.Close()

	err = record(db, cs)
	if err != nil {
		msg.Fatalf("could not record captures: %+v", err)
	}
}

// scan decodes the headers of all named captures, one goroutine per
// file, and returns the catalog rows in argument order.
func scan(fnames []string) ([]catalog.Capture, error) {
	var (
		grp errgroup.Group
		cs  = make([]catalog.Capture, len(fnames))
	)
	for i, fname := range fnames {
		i, fname := i, fname
		grp.Go(func() error {
			c, err := scan1(fname)
			if err != nil {
				return fmt.Errorf("could not scan %q: %w", fname, err)
			}
			cs[i] = c
			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func scan1(fname string) (catalog.Capture, error) {
	f, err := mmap.Open(fname)
	if err != nil {
		return catalog.Capture{}, fmt.Errorf("could not open WFM file: %w", err)
	}
	defer f.Close()

	var hdr wfm.Header
	err = wfm.NewDecoder(f.Bytes()).DecodeHeader(&hdr)
	if err != nil {
		return catalog.Capture{}, fmt.Errorf("could not decode header: %w", err)
	}

	return catalog.CaptureFrom(fname, hdr), nil
}

func record(db *catalog.DB, cs []catalog.Capture) error {
	ctx := context.Background()
	for _, c := range cs {
		err := db.AddCapture(ctx, c)
		if err != nil {
			return fmt.Errorf("could not record capture %q: %w", c.Path, err)
		}
		msg.Printf("recorded %q", c.Path)
	}
	return nil
}
