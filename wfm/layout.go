// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

const (
	tagV1 = ":WFM#001" // version tag of revision 1
	tagV2 = ":WFM#002" // version tag of revision 2

	hdrSize = 838 // size of the static header

	recordVector = 2 // record type: vector waveform
	timeBase0    = 0 // time base: evenly spaced samples

	codeInt16   = 0 // sample format code: int16
	codeFloat32 = 4 // sample format code: float32
	codeInt8    = 7 // sample format code: int8
)

// layout maps the static-header fields of one format revision to
// their byte offsets. Revision 1 stores most fields two bytes before
// their revision-2 position; bps through summary sit before the shift
// point, and tdatefrac escaped the shift altogether.
type layout struct {
	bps         int
	curveOffset int
	frames      int
	fastframe   int
	impDim      int
	expDim      int
	recordType  int
	summary     int
	vscale      int
	voffset     int
	code        int
	expDimType  int
	tstart      int
	tscale      int
	timeBase    int
	tfrac       int
	tdateFrac   int
	tdate       int
	dsize       int
	stride      int
}

var (
	layoutV1 = layout{
		bps:         15,
		curveOffset: 16,
		frames:      72,
		fastframe:   78,
		impDim:      114,
		expDim:      118,
		recordType:  122,
		summary:     154,
		vscale:      166,
		voffset:     174,
		code:        238,
		expDimType:  242,
		tstart:      486,
		tscale:      534,
		timeBase:    766,
		tfrac:       786,
		tdateFrac:   796,
		tdate:       802,
		dsize:       816,
		stride:      820,
	}

	layoutV2 = layout{
		bps:         15,
		curveOffset: 16,
		frames:      72,
		fastframe:   78,
		impDim:      114,
		expDim:      118,
		recordType:  122,
		summary:     154,
		vscale:      168,
		voffset:     176,
		code:        240,
		expDimType:  244,
		tstart:      488,
		tscale:      536,
		timeBase:    768,
		tfrac:       788,
		tdateFrac:   796,
		tdate:       804,
		dsize:       818,
		stride:      822,
	}
)
