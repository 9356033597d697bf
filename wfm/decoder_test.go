// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/go-tek/scope/internal/wfmtest"
)

func TestDecode(t *testing.T) {
	raw := wfmtest.Capture{
		Int16:  [][]int16{{0, 100, -100, 32767}},
		VScale: 0.01,
		TScale: 1e-9,
	}.Bytes()

	var w WFM
	err := NewDecoder(raw).Decode(&w)
	if err != nil {
		t.Fatalf("could not decode capture: %+v", err)
	}

	if got, want := w.Header.Order, LittleEndian; got != want {
		t.Fatalf("invalid order: got=%v, want=%v", got, want)
	}
	if got, want := w.Header.Version, V2; got != want {
		t.Fatalf("invalid version: got=%v, want=%v", got, want)
	}
	if got, want := len(w.Records), 1; got != want {
		t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
	}

	rec := w.Records[0]
	cmpF64(t, "y", rec.Y, []float64{0, 1, -1, 327.67})
	cmpF64(t, "x", rec.X, []float64{0, 1e-9, 2e-9, 3e-9})
	if got, want := rec.HorizInterval, 1e-9; got != want {
		t.Fatalf("invalid horizontal interval: got=%v, want=%v", got, want)
	}
}

func TestDecodeHeader(t *testing.T) {
	for _, tc := range []struct {
		name    string
		big     bool
		v1      bool
		order   Order
		version Version
	}{
		{name: "v1-little-endian", v1: true, order: LittleEndian, version: V1},
		{name: "v1-big-endian", v1: true, big: true, order: BigEndian, version: V1},
		{name: "v2-little-endian", order: LittleEndian, version: V2},
		{name: "v2-big-endian", big: true, order: BigEndian, version: V2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			raw := wfmtest.Capture{
				Big:          tc.big,
				V1:           tc.v1,
				Int8:         [][]int8{{1, 2, 3}, {4, 5, 6}},
				VScale:       0.125,
				VOffset:      -32,
				TStart:       1.25e-6,
				TScale:       2e-9,
				TFrac:        0.5,
				TDateFrac:    0.25,
				TDate:        1700000000,
				SummaryFrame: 1,
				ExpDimType:   3,
			}.Bytes()

			var hdr Header
			err := NewDecoder(raw).DecodeHeader(&hdr)
			if err != nil {
				t.Fatalf("could not decode header: %+v", err)
			}

			want := Header{
				Order:        tc.order,
				Version:      tc.version,
				ImpDim:       1,
				ExpDim:       1,
				RecordType:   2,
				ExpDimType:   3,
				FastFrame:    true,
				Frames:       2,
				SummaryFrame: 1,
				Code:         7,
				BPS:          1,
				VScale:       0.125,
				VOffset:      -32,
				TStart:       1.25e-6,
				TScale:       2e-9,
				TFrac:        0.5,
				TDateFrac:    0.25,
				TDate:        1700000000,
				CurveOffset:  892,
				CurveSize:    3,
				FrameStride:  3,
				Samples:      3,
			}
			if got := hdr; !reflect.DeepEqual(got, want) {
				t.Fatalf("invalid header:\ngot= %#v\nwant=%#v", got, want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	base := func() []byte {
		return wfmtest.Capture{
			Int16:  [][]int16{{0, 100, -100, 32767}},
			VScale: 0.01,
			TScale: 1e-9,
		}.Bytes()
	}

	for _, tc := range []struct {
		name string
		raw  func() []byte
		want string
		is   error
	}{
		{
			name: "empty-buffer",
			raw:  func() []byte { return nil },
			want: "wfm: buffer too small for byte-order marker (got=0): truncated capture",
			is:   ErrTruncated,
		},
		{
			name: "short-marker",
			raw:  func() []byte { return base()[:1] },
			want: "wfm: buffer too small for byte-order marker (got=1): truncated capture",
			is:   ErrTruncated,
		},
		{
			name: "bad-marker",
			raw: func() []byte {
				raw := base()
				raw[0] = 0xaa
				raw[1] = 0xbb
				return raw
			},
			want: "wfm: could not detect byte order (marker=0xbbaa): unrecognized byte-order marker",
			is:   ErrFormat,
		},
		{
			name: "bad-marker-short-buffer",
			raw:  func() []byte { return []byte{0xde, 0xad} },
			want: "wfm: could not detect byte order (marker=0xadde): unrecognized byte-order marker",
			is:   ErrFormat,
		},
		{
			name: "short-tag",
			raw:  func() []byte { return base()[:6] },
			want: "wfm: buffer too small for version tag (got=6): truncated capture",
			is:   ErrTruncated,
		},
		{
			name: "version-3",
			raw: func() []byte {
				raw := base()
				copy(raw[2:10], ":WFM#003")
				return raw
			},
			want: `wfm: unknown version tag ":WFM#003": unsupported format version`,
			is:   ErrVersion,
		},
		{
			name: "garbage-tag",
			raw: func() []byte {
				raw := base()
				copy(raw[2:10], "WFMWFMWF")
				return raw
			},
			want: `wfm: unknown version tag "WFMWFMWF": unsupported format version`,
			is:   ErrVersion,
		},
		{
			name: "short-header",
			raw:  func() []byte { return base()[:100] },
			want: "wfm: buffer too small for static header (got=100, want=838): truncated capture",
			is:   ErrTruncated,
		},
		{
			name: "bad-imp-dim",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffImpDim:], 2)
				return raw
			},
			want: "wfm: invalid implicit dimension count (got=2, want=1): malformed header",
			is:   ErrHeader,
		},
		{
			name: "bad-exp-dim",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffExpDim:], 0)
				return raw
			},
			want: "wfm: invalid explicit dimension count (got=0, want=1): malformed header",
			is:   ErrHeader,
		},
		{
			name: "bad-record-type",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffRecordType:], 1)
				return raw
			},
			want: "wfm: unsupported record type (got=1, want=2): malformed header",
			is:   ErrHeader,
		},
		{
			name: "bad-time-base",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffTimeBase:], 3)
				return raw
			},
			want: "wfm: unsupported time base (got=3, want=0): malformed header",
			is:   ErrHeader,
		},
		{
			name: "negative-curve-offset",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffCurveOffset:], 0xffffffff)
				return raw
			},
			want: "wfm: negative curve-buffer offset (got=-1): malformed header",
			is:   ErrHeader,
		},
		{
			name: "bad-sample-format",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffCode:], 5)
				return raw
			},
			want: "wfm: unknown sample format (code=5, bps=2): malformed header",
			is:   ErrHeader,
		},
		{
			name: "bad-curve-size",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffDSize:], 7)
				return raw
			},
			want: "wfm: curve size 7 not divisible by 2 bytes per sample: malformed header",
			is:   ErrHeader,
		},
		{
			name: "truncated-curve",
			raw: func() []byte {
				raw := base()
				return raw[:len(raw)-2]
			},
			want: "wfm: frame 0 curve data [838, 846) out of range (buffer=844): truncated capture",
			is:   ErrTruncated,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var w WFM
			err := NewDecoder(tc.raw()).Decode(&w)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot: %s\nwant:%s", got, want)
			}
			if !errors.Is(err, tc.is) {
				t.Fatalf("invalid error class: %+v", err)
			}
			if len(w.Records) != 0 {
				t.Fatalf("failed decode should not populate records")
			}
		})
	}
}

func TestDecodeFastFrame(t *testing.T) {
	raw := wfmtest.Capture{
		Int16:  [][]int16{{1, 2}, {3, 4}, {5, 6}},
		VScale: 0.5,
		TStart: -1e-6,
		TScale: 5e-7,
	}.Bytes()

	var w WFM
	err := NewDecoder(raw).Decode(&w)
	if err != nil {
		t.Fatalf("could not decode capture: %+v", err)
	}

	if got, want := w.Header.Frames, 3; got != want {
		t.Fatalf("invalid number of frames: got=%d, want=%d", got, want)
	}
	if !w.Header.FastFrame {
		t.Fatalf("fastframe flag not set")
	}
	if got, want := len(w.Records), 3; got != want {
		t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
	}

	for i, want := range [][]float64{{0.5, 1}, {1.5, 2}, {2.5, 3}} {
		cmpF64(t, fmt.Sprintf("frame %d y", i), w.Records[i].Y, want)
	}
	for i, rec := range w.Records {
		cmpF64(t, fmt.Sprintf("frame %d x", i), rec.X, []float64{-1e-6, -5e-7})
		if got, want := rec.HorizInterval, 5e-7; got != want {
			t.Fatalf("frame %d: invalid horizontal interval: got=%v, want=%v", i, got, want)
		}
	}
}

func TestDecodeFastFrameErrors(t *testing.T) {
	base := func() []byte {
		return wfmtest.Capture{
			Int16:  [][]int16{{1, 2}, {3, 4}, {5, 6}},
			VScale: 0.5,
		}.Bytes()
	}

	for _, tc := range []struct {
		name string
		raw  func() []byte
		want string
		is   error
	}{
		{
			name: "zero-stride",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffStride:], 0)
				return raw
			},
			want: "wfm: fastframe capture without frame stride (frames=3): malformed header",
			is:   ErrHeader,
		},
		{
			name: "overlapping-stride",
			raw: func() []byte {
				raw := base()
				binary.LittleEndian.PutUint32(raw[wfmtest.OffStride:], 2)
				return raw
			},
			want: "wfm: frame stride 2 smaller than curve size 4: malformed header",
			is:   ErrHeader,
		},
		{
			name: "truncated-frame",
			raw: func() []byte {
				raw := base()
				return raw[:len(raw)-1]
			},
			want: "wfm: frame 2 curve data [954, 958) out of range (buffer=957): truncated capture",
			is:   ErrTruncated,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var w WFM
			err := NewDecoder(tc.raw()).Decode(&w)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot: %s\nwant:%s", got, want)
			}
			if !errors.Is(err, tc.is) {
				t.Fatalf("invalid error class: %+v", err)
			}
		})
	}
}

func TestDecodeFrameStride(t *testing.T) {
	// frames separated by two bytes of padding.
	raw := wfmtest.Capture{
		Int16:  [][]int16{{100}, {200}},
		VScale: 0.01,
		Stride: 4,
	}.Bytes()

	var w WFM
	err := NewDecoder(raw).Decode(&w)
	if err != nil {
		t.Fatalf("could not decode capture: %+v", err)
	}
	if got, want := len(w.Records), 2; got != want {
		t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
	}
	cmpF64(t, "frame 0 y", w.Records[0].Y, []float64{1})
	cmpF64(t, "frame 1 y", w.Records[1].Y, []float64{2})
}

func TestDecodeSampleFormats(t *testing.T) {
	for _, tc := range []struct {
		name string
		c    wfmtest.Capture
		want []float64
	}{
		{
			name: "int8",
			c: wfmtest.Capture{
				Int8:   [][]int8{{-128, -1, 0, 127}},
				VScale: 0.5,
			},
			want: []float64{-64, -0.5, 0, 63.5},
		},
		{
			name: "int16-with-offset",
			c: wfmtest.Capture{
				Int16:   [][]int16{{100, 200}},
				VScale:  0.5,
				VOffset: 100,
			},
			want: []float64{0, 50},
		},
		{
			name: "float32",
			c: wfmtest.Capture{
				Float32: [][]float32{{1.5, -2.25, 0.125}},
				VScale:  1,
			},
			want: []float64{1.5, -2.25, 0.125},
		},
		{
			name: "big-endian-int16",
			c: wfmtest.Capture{
				Big:    true,
				Int16:  [][]int16{{-100, 100}},
				VScale: 0.01,
			},
			want: []float64{-1, 1},
		},
		{
			name: "v1-int16",
			c: wfmtest.Capture{
				V1:     true,
				Int16:  [][]int16{{1000}},
				VScale: 0.001,
			},
			want: []float64{1},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var w WFM
			err := NewDecoder(tc.c.Bytes()).Decode(&w)
			if err != nil {
				t.Fatalf("could not decode capture: %+v", err)
			}
			if got, want := len(w.Records), 1; got != want {
				t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
			}
			cmpF64(t, "y", w.Records[0].Y, tc.want)
		})
	}
}

func TestDecodeEmptyCurve(t *testing.T) {
	raw := wfmtest.Capture{VScale: 1}.Bytes()

	var w WFM
	err := NewDecoder(raw).Decode(&w)
	if err != nil {
		t.Fatalf("could not decode capture: %+v", err)
	}
	if got, want := len(w.Records), 1; got != want {
		t.Fatalf("invalid number of records: got=%d, want=%d", got, want)
	}
	rec := w.Records[0]
	if rec.X == nil || rec.Y == nil {
		t.Fatalf("empty record should carry empty, non-nil samples")
	}
	if len(rec.X) != 0 || len(rec.Y) != 0 {
		t.Fatalf("invalid number of samples: x=%d, y=%d", len(rec.X), len(rec.Y))
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	raw := wfmtest.Capture{
		Int16:  [][]int16{{1, 2, 3}},
		VScale: 1,
	}.Bytes()
	raw = raw[:wfmtest.HdrSize] // strip the curve data

	var hdr Header
	err := NewDecoder(raw).DecodeHeader(&hdr)
	if err != nil {
		t.Fatalf("could not decode header: %+v", err)
	}
	if got, want := hdr.Samples, 3; got != want {
		t.Fatalf("invalid number of samples: got=%d, want=%d", got, want)
	}

	var w WFM
	err = NewDecoder(raw).Decode(&w)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("invalid error class: %+v", err)
	}
}

func cmpF64(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: invalid length: got=%d, want=%d", name, len(got), len(want))
	}
	for i := range got {
		if !near(got[i], want[i]) {
			t.Fatalf("%s[%d]: got=%v, want=%v", name, i, got[i], want[i])
		}
	}
}

func near(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= 1e-12*scale
}
