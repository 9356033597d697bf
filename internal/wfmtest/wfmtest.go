// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wfmtest builds synthetic WFM captures for tests.
package wfmtest // import "github.com/go-tek/scope/internal/wfmtest"

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Field offsets of the revision-2 static header. Revision 1 stores the
// fields from OffVScale on down two bytes earlier, except OffTDateFrac.
const (
	OffBPS         = 15
	OffCurveOffset = 16
	OffFrames      = 72
	OffFastFrame   = 78
	OffImpDim      = 114
	OffExpDim      = 118
	OffRecordType  = 122
	OffSummary     = 154
	OffVScale      = 168
	OffVOffset     = 176
	OffCode        = 240
	OffExpDimType  = 244
	OffTStart      = 488
	OffTScale      = 536
	OffTimeBase    = 768
	OffTFrac       = 788
	OffTDateFrac   = 796
	OffTDate       = 804
	OffDSize       = 818
	OffStride      = 822
)

// HdrSize is the size of the static header.
const HdrSize = 838

const updSize = 54 // size of one fastframe update record

// Capture describes a synthetic waveform capture. The zero value
// encodes a little-endian revision-2 capture holding one frame with no
// samples.
type Capture struct {
	Big bool // encode big-endian
	V1  bool // encode as revision 1

	Int8    [][]int8    // per-frame curves, sample format int8
	Int16   [][]int16   // per-frame curves, sample format int16
	Float32 [][]float32 // per-frame curves, sample format float32

	VScale  float64
	VOffset float64
	TStart  float64
	TScale  float64

	TFrac     float64
	TDateFrac float64
	TDate     uint32

	SummaryFrame int16
	ExpDimType   uint32

	CurveOffset int // start of the curve data; computed when zero
	Stride      int // frame stride; the frame curve size when zero
}

// Bytes encodes the capture. Bytes panics when the capture is
// inconsistent.
func (c Capture) Bytes() []byte {
	var (
		frames int
		bps    int
		code   uint32
	)
	switch {
	case c.Int8 != nil && c.Int16 == nil && c.Float32 == nil:
		frames, bps, code = len(c.Int8), 1, 7
	case c.Int16 != nil && c.Int8 == nil && c.Float32 == nil:
		frames, bps, code = len(c.Int16), 2, 0
	case c.Float32 != nil && c.Int8 == nil && c.Int16 == nil:
		frames, bps, code = len(c.Float32), 4, 4
	case c.Int8 == nil && c.Int16 == nil && c.Float32 == nil:
		frames, bps, code = 1, 2, 0
	default:
		panic("wfmtest: multiple sample formats")
	}
	if frames == 0 {
		panic("wfmtest: no frames")
	}

	n := c.samples(0)
	for i := 1; i < frames; i++ {
		if c.samples(i) != n {
			panic(fmt.Sprintf("wfmtest: frame %d has %d samples, want %d", i, c.samples(i), n))
		}
	}

	dsize := n * bps
	stride := c.Stride
	if stride == 0 {
		stride = dsize
	}
	curve := c.CurveOffset
	if curve == 0 {
		curve = HdrSize + (frames-1)*updSize
	}

	var (
		ord    = binary.ByteOrder(binary.LittleEndian)
		marker = uint16(0x0f0f)
		tag    = ":WFM#002"
	)
	if c.Big {
		ord = binary.BigEndian
		marker = 0xf0f0
	}
	if c.V1 {
		tag = ":WFM#001"
	}

	buf := make([]byte, curve+(frames-1)*stride+dsize)
	ord.PutUint16(buf[0:], marker)
	copy(buf[2:10], tag)

	e := enc{buf: buf, ord: ord, v1: c.V1}
	e.i8(OffBPS, int8(bps))
	e.u32(OffCurveOffset, uint32(curve))
	e.u32(OffFrames, uint32(frames-1))
	if frames > 1 {
		e.u32(OffFastFrame, 1)
	}
	e.u32(OffImpDim, 1)
	e.u32(OffExpDim, 1)
	e.u32(OffRecordType, 2)
	e.i16(OffSummary, c.SummaryFrame)
	e.f64(OffVScale, c.VScale)
	e.f64(OffVOffset, c.VOffset)
	e.u32(OffCode, code)
	e.u32(OffExpDimType, c.ExpDimType)
	e.f64(OffTStart, c.TStart)
	e.f64(OffTScale, c.TScale)
	e.u32(OffTimeBase, 0)
	e.f64(OffTFrac, c.TFrac)
	e.f64(OffTDateFrac, c.TDateFrac)
	e.u32(OffTDate, c.TDate)
	e.u32(OffDSize, uint32(dsize))
	e.u32(OffStride, uint32(stride))

	for i := 0; i < frames; i++ {
		off := curve + i*stride
		switch {
		case c.Int8 != nil:
			for _, v := range c.Int8[i] {
				buf[off] = uint8(v)
				off++
			}
		case c.Int16 != nil:
			for _, v := range c.Int16[i] {
				ord.PutUint16(buf[off:], uint16(v))
				off += 2
			}
		case c.Float32 != nil:
			for _, v := range c.Float32[i] {
				ord.PutUint32(buf[off:], math.Float32bits(v))
				off += 4
			}
		}
	}
	return buf
}

func (c Capture) samples(i int) int {
	switch {
	case c.Int8 != nil:
		return len(c.Int8[i])
	case c.Int16 != nil:
		return len(c.Int16[i])
	case c.Float32 != nil:
		return len(c.Float32[i])
	}
	return 0
}

type enc struct {
	buf []byte
	ord binary.ByteOrder
	v1  bool
}

// off shifts a revision-2 offset to its revision-1 position.
func (e enc) off(off int) int {
	if e.v1 && off >= OffVScale && off != OffTDateFrac {
		return off - 2
	}
	return off
}

func (e enc) i8(off int, v int8)     { e.buf[e.off(off)] = uint8(v) }
func (e enc) i16(off int, v int16)   { e.ord.PutUint16(e.buf[e.off(off):], uint16(v)) }
func (e enc) u32(off int, v uint32)  { e.ord.PutUint32(e.buf[e.off(off):], v) }
func (e enc) f64(off int, v float64) { e.ord.PutUint64(e.buf[e.off(off):], math.Float64bits(v)) }
