// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"encoding/binary"
	"fmt"
)

// Decoder reads (and validates) a WFM capture from a fully resident
// byte buffer.
type Decoder struct {
	data []byte
	r    *rbuf
	err  error
}

// NewDecoder creates a decoder for the capture held in data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Decode decodes the whole capture into w: the static header, then one
// record per acquired frame, in acquisition order. On error, w is left
// untouched.
func (dec *Decoder) Decode(w *WFM) error {
	var hdr Header
	err := dec.DecodeHeader(&hdr)
	if err != nil {
		return err
	}

	recs, err := dec.curves(&hdr)
	if err != nil {
		return err
	}

	w.Header = hdr
	w.Records = recs
	return nil
}

// DecodeHeader decodes and validates the static header into hdr,
// leaving the curve buffers alone. On error, hdr is left untouched.
func (dec *Decoder) DecodeHeader(hdr *Header) error {
	var h Header

	if len(dec.data) < 2 {
		return fmt.Errorf("wfm: buffer too small for byte-order marker (got=%d): %w", len(dec.data), ErrTruncated)
	}
	// The two markers are byte-order images of each other, so a fixed
	// interpretation identifies both.
	switch m := binary.LittleEndian.Uint16(dec.data[:2]); Order(m) {
	case LittleEndian, BigEndian:
		h.Order = Order(m)
	default:
		return fmt.Errorf("wfm: could not detect byte order (marker=0x%04x): %w", m, ErrFormat)
	}

	if len(dec.data) < 10 {
		return fmt.Errorf("wfm: buffer too small for version tag (got=%d): %w", len(dec.data), ErrTruncated)
	}

	dec.r = newRbuf(dec.data, h.Order.byteOrder())
	dec.err = nil
	dec.r.skip(2) // the byte-order marker

	var lay layout
	switch tag := string(dec.r.load(8)); tag {
	case tagV1:
		h.Version = V1
		lay = layoutV1
	case tagV2:
		h.Version = V2
		lay = layoutV2
	default:
		return fmt.Errorf("wfm: unknown version tag %q: %w", tag, ErrVersion)
	}

	if len(dec.data) < hdrSize {
		return fmt.Errorf("wfm: buffer too small for static header (got=%d, want=%d): %w", len(dec.data), hdrSize, ErrTruncated)
	}

	h.BPS = dec.i8Field("bps", lay.bps)
	h.CurveOffset = int(dec.i32Field("curve_offset", lay.curveOffset))
	h.Frames = int(dec.u32Field("frames", lay.frames)) + 1
	h.FastFrame = dec.u32Field("fastframe", lay.fastframe) != 0
	h.ImpDim = dec.u32Field("imp_dim_count", lay.impDim)
	h.ExpDim = dec.u32Field("exp_dim_count", lay.expDim)
	h.RecordType = dec.u32Field("record_type", lay.recordType)
	h.SummaryFrame = dec.i16Field("summary_frame", lay.summary)
	h.VScale = dec.f64Field("vscale", lay.vscale)
	h.VOffset = dec.f64Field("voffset", lay.voffset)
	h.Code = dec.i32Field("code", lay.code)
	h.ExpDimType = dec.u32Field("exp_dim_type", lay.expDimType)
	h.TStart = dec.f64Field("tstart", lay.tstart)
	h.TScale = dec.f64Field("tscale", lay.tscale)
	h.TimeBase = dec.u32Field("time_base", lay.timeBase)
	h.TFrac = dec.f64Field("tfrac", lay.tfrac)
	h.TDateFrac = dec.f64Field("tdatefrac", lay.tdateFrac)
	h.TDate = dec.u32Field("tdate", lay.tdate)
	h.CurveSize = int(dec.u32Field("dsize", lay.dsize))
	h.FrameStride = int(dec.u32Field("stride", lay.stride))
	if dec.err != nil {
		return dec.err
	}

	err := h.validate()
	if err != nil {
		return err
	}
	h.Samples = h.CurveSize / int(h.BPS)

	*hdr = h
	return nil
}

func (h *Header) validate() error {
	if h.ImpDim != 1 {
		return fmt.Errorf("wfm: invalid implicit dimension count (got=%d, want=1): %w", h.ImpDim, ErrHeader)
	}
	if h.ExpDim != 1 {
		return fmt.Errorf("wfm: invalid explicit dimension count (got=%d, want=1): %w", h.ExpDim, ErrHeader)
	}
	if h.RecordType != recordVector {
		return fmt.Errorf("wfm: unsupported record type (got=%d, want=%d): %w", h.RecordType, recordVector, ErrHeader)
	}
	if h.TimeBase != timeBase0 {
		return fmt.Errorf("wfm: unsupported time base (got=%d, want=%d): %w", h.TimeBase, timeBase0, ErrHeader)
	}
	if h.CurveOffset < 0 {
		return fmt.Errorf("wfm: negative curve-buffer offset (got=%d): %w", h.CurveOffset, ErrHeader)
	}
	switch {
	case h.Code == codeInt8 && h.BPS == 1:
	case h.Code == codeInt16 && h.BPS == 2:
	case h.Code == codeFloat32 && h.BPS == 4:
	default:
		return fmt.Errorf("wfm: unknown sample format (code=%d, bps=%d): %w", h.Code, h.BPS, ErrHeader)
	}
	if h.CurveSize%int(h.BPS) != 0 {
		return fmt.Errorf("wfm: curve size %d not divisible by %d bytes per sample: %w", h.CurveSize, h.BPS, ErrHeader)
	}
	if h.Frames > 1 {
		switch {
		case h.FrameStride == 0:
			return fmt.Errorf("wfm: fastframe capture without frame stride (frames=%d): %w", h.Frames, ErrHeader)
		case h.FrameStride < h.CurveSize:
			return fmt.Errorf("wfm: frame stride %d smaller than curve size %d: %w", h.FrameStride, h.CurveSize, ErrHeader)
		}
	}
	return nil
}

func (dec *Decoder) curves(h *Header) ([]Record, error) {
	recs := make([]Record, 0, h.Frames)
	for i := 0; i < h.Frames; i++ {
		beg, end := h.FrameSpan(i)
		if beg < 0 || end > len(dec.data) {
			return nil, fmt.Errorf("wfm: frame %d curve data [%d, %d) out of range (buffer=%d): %w", i, beg, end, len(dec.data), ErrTruncated)
		}
		rec, err := dec.scaleFrame(h, beg)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (dec *Decoder) scaleFrame(h *Header, beg int) (Record, error) {
	rec := Record{
		X:             make([]float64, h.Samples),
		Y:             make([]float64, h.Samples),
		HorizInterval: h.TScale,
	}

	dec.r.seek(beg)
	switch {
	case h.Code == codeInt8 && h.BPS == 1:
		for k := range rec.Y {
			rec.Y[k] = (float64(dec.r.i8()) - h.VOffset) * h.VScale
		}
	case h.Code == codeInt16 && h.BPS == 2:
		for k := range rec.Y {
			rec.Y[k] = (float64(dec.r.i16()) - h.VOffset) * h.VScale
		}
	case h.Code == codeFloat32 && h.BPS == 4:
		for k := range rec.Y {
			rec.Y[k] = (float64(dec.r.f32()) - h.VOffset) * h.VScale
		}
	default:
		return Record{}, fmt.Errorf("wfm: unknown sample format (code=%d, bps=%d): %w", h.Code, h.BPS, ErrHeader)
	}
	if dec.r.err != nil {
		return Record{}, fmt.Errorf("wfm: could not read curve data: %w", dec.r.err)
	}

	for k := range rec.X {
		rec.X[k] = h.TStart + float64(k)*h.TScale
	}
	return rec, nil
}

func (dec *Decoder) i8Field(name string, off int) int8 {
	dec.r.seek(off)
	v := dec.r.i8()
	dec.fieldErr(name, off)
	return v
}

func (dec *Decoder) i16Field(name string, off int) int16 {
	dec.r.seek(off)
	v := dec.r.i16()
	dec.fieldErr(name, off)
	return v
}

func (dec *Decoder) i32Field(name string, off int) int32 {
	dec.r.seek(off)
	v := dec.r.i32()
	dec.fieldErr(name, off)
	return v
}

func (dec *Decoder) u32Field(name string, off int) uint32 {
	dec.r.seek(off)
	v := dec.r.u32()
	dec.fieldErr(name, off)
	return v
}

func (dec *Decoder) f64Field(name string, off int) float64 {
	dec.r.seek(off)
	v := dec.r.f64()
	dec.fieldErr(name, off)
	return v
}

func (dec *Decoder) fieldErr(name string, off int) {
	if dec.err != nil || dec.r.err == nil {
		return
	}
	dec.err = fmt.Errorf("wfm: could not read header field %q at offset %d: %w", name, off, dec.r.err)
}
