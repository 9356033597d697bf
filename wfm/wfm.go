// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wfm decodes Tektronix WFM oscilloscope captures.
//
// A capture file carries one static header followed by one curve
// buffer per acquired frame. Decode turns the whole file into
// physical-unit records: sample times in seconds, sample values in
// volts. Format revisions 1 and 2 are supported, in either byte order.
package wfm // import "github.com/go-tek/scope/wfm"

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Decoding errors are classified by the sentinels below.
// Use errors.Is to test a decode error against them.
var (
	// ErrOutOfBounds reports a read past the end of the capture buffer.
	ErrOutOfBounds = errors.New("read out of bounds")
	// ErrFormat reports a byte-order marker that is not a WFM marker.
	ErrFormat = errors.New("unrecognized byte-order marker")
	// ErrVersion reports a format revision this package does not decode.
	ErrVersion = errors.New("unsupported format version")
	// ErrHeader reports a header with invalid or inconsistent fields.
	ErrHeader = errors.New("malformed header")
	// ErrTruncated reports a buffer shorter than the content it declares.
	ErrTruncated = errors.New("truncated capture")
)

// Order is the byte order a capture was written with. Its value is the
// on-disk byte-order marker.
type Order uint16

const (
	LittleEndian Order = 0x0f0f
	BigEndian    Order = 0xf0f0
)

func (o Order) String() string {
	switch o {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	}
	return fmt.Sprintf("Order(0x%04x)", uint16(o))
}

func (o Order) byteOrder() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Version is the revision of the WFM file format.
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
)

// String returns the on-disk version tag.
func (v Version) String() string {
	switch v {
	case V1:
		return tagV1
	case V2:
		return tagV2
	}
	return fmt.Sprintf("Version(%d)", uint8(v))
}

// WFM represents a decoded waveform capture.
type WFM struct {
	Header  Header
	Records []Record // one per acquired frame, in acquisition order
}

// Header holds the decoded static header of a capture.
type Header struct {
	Order   Order   // byte order of the capture
	Version Version // format revision

	ImpDim     uint32 // implicit (time) dimension count
	ExpDim     uint32 // explicit (voltage) dimension count
	RecordType uint32 // waveform record type
	TimeBase   uint32 // sweep time base
	ExpDimType uint32 // explicit dimension data type

	FastFrame    bool  // fastframe acquisition flag
	Frames       int   // number of acquired frames
	SummaryFrame int16 // summary frame flag

	Code int32 // sample format code
	BPS  int8  // bytes per sample

	VScale  float64 // vertical scale (volts per level)
	VOffset float64 // vertical offset (levels)
	TStart  float64 // time of the first sample (s)
	TScale  float64 // time between samples (s)

	TFrac     float64 // trigger position, as a fraction of the sample interval
	TDateFrac float64 // fractional second of the trigger timestamp
	TDate     uint32  // trigger timestamp (epoch seconds)

	CurveOffset int // start of the curve buffers in the capture
	CurveSize   int // curve-buffer size of one frame (bytes)
	FrameStride int // distance between consecutive frame buffers (bytes)
	Samples     int // samples per frame
}

// FrameSpan returns the [beg, end) byte range of the curve data of
// frame i within the capture buffer.
func (h *Header) FrameSpan(i int) (beg, end int) {
	beg = h.CurveOffset + i*h.FrameStride
	return beg, beg + h.CurveSize
}

// TriggerTime returns the trigger timestamp of the capture, in UTC.
func (h *Header) TriggerTime() time.Time {
	return time.Unix(int64(h.TDate), int64(h.TDateFrac*1e9)).UTC()
}

// Record is one acquired frame, in physical units.
type Record struct {
	X             []float64 // sample times (s)
	Y             []float64 // sample values (V)
	HorizInterval float64   // time between samples (s)
}
