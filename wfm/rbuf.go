// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// rbuf is a cursor over a resident capture buffer. Multi-byte reads go
// through the configured byte order. Errors are sticky: after a failed
// seek or read, every further operation is a no-op and the position
// does not move.
type rbuf struct {
	p   []byte
	pos int
	ord binary.ByteOrder
	err error
}

func newRbuf(p []byte, ord binary.ByteOrder) *rbuf {
	return &rbuf{p: p, ord: ord}
}

func (r *rbuf) seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.p) {
		r.err = fmt.Errorf("wfm: could not seek to offset %d (buffer=%d): %w", off, len(r.p), ErrOutOfBounds)
		return
	}
	r.pos = off
}

func (r *rbuf) skip(n int) {
	if r.err != nil {
		return
	}
	r.seek(r.pos + n)
}

func (r *rbuf) load(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.p) {
		r.err = fmt.Errorf("wfm: could not read %d bytes at offset %d (buffer=%d): %w", n, r.pos, len(r.p), ErrOutOfBounds)
		return nil
	}
	p := r.p[r.pos : r.pos+n]
	r.pos += n
	return p
}

func (r *rbuf) u8() uint8 {
	p := r.load(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (r *rbuf) u16() uint16 {
	p := r.load(2)
	if p == nil {
		return 0
	}
	return r.ord.Uint16(p)
}

func (r *rbuf) u32() uint32 {
	p := r.load(4)
	if p == nil {
		return 0
	}
	return r.ord.Uint32(p)
}

func (r *rbuf) u64() uint64 {
	p := r.load(8)
	if p == nil {
		return 0
	}
	return r.ord.Uint64(p)
}

func (r *rbuf) i8() int8   { return int8(r.u8()) }
func (r *rbuf) i16() int16 { return int16(r.u16()) }
func (r *rbuf) i32() int32 { return int32(r.u32()) }

func (r *rbuf) f32() float32 { return math.Float32frombits(r.u32()) }
func (r *rbuf) f64() float64 { return math.Float64frombits(r.u64()) }
