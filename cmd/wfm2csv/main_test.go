// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-tek/scope/internal/wfmtest"
)

func TestWFM2CSV(t *testing.T) {
	tmp, err := os.MkdirTemp("", "wfm2csv-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	fname := filepath.Join(tmp, "capture.wfm")
	err = os.WriteFile(fname, wfmtest.Capture{
		Int16:  [][]int16{{0, 100, -100}, {200, 300, -300}},
		VScale: 0.01,
		TScale: 1e-9,
	}.Bytes(), 0644)
	if err != nil {
		t.Fatalf("could not create WFM file: %+v", err)
	}

	oname := filepath.Join(tmp, "capture.csv")
	err = process(oname, fname)
	if err != nil {
		t.Fatalf("could not convert WFM file: %+v", err)
	}

	got, err := os.ReadFile(oname)
	if err != nil {
		t.Fatalf("could not read CSV file: %+v", err)
	}

	want := `# frame,time (s),volts (V)
0,0,0
0,1e-09,1
0,2e-09,-1
1,0,2
1,1e-09,3
1,2e-09,-3
`
	if string(got) != want {
		t.Fatalf("invalid CSV output:\ngot:\n%s\nwant:\n%s\n", got, want)
	}
}

func TestProcessInvalidFile(t *testing.T) {
	tmp, err := os.MkdirTemp("", "wfm2csv-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	fname := filepath.Join(tmp, "bad.wfm")
	err = os.WriteFile(fname, []byte("not a capture"), 0644)
	if err != nil {
		t.Fatalf("could not create WFM file: %+v", err)
	}

	err = process(filepath.Join(tmp, "bad.csv"), fname)
	if err == nil {
		t.Fatalf("expected an error")
	}
}
