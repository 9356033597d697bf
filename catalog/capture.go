// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import (
	"database/sql"
	"time"

	"github.com/go-tek/scope/wfm"
)

// Capture describes one recorded waveform capture.
type Capture struct {
	ID      int64     // primary key in the capture database
	Path    string    // path of the capture file
	Version string    // on-disk version tag
	Order   string    // byte order of the capture
	Frames  int       // number of acquired frames
	Samples int       // samples per frame
	BPS     int       // bytes per sample
	VScale  float64   // vertical scale (volts per level)
	VOffset float64   // vertical offset (levels)
	TStart  float64   // time of the first sample (s)
	TScale  float64   // time between samples (s)
	Trigger time.Time // trigger timestamp
}

// CaptureFrom builds the catalog row for the capture file at path,
// described by its decoded header.
func CaptureFrom(path string, hdr wfm.Header) Capture {
	return Capture{
		Path:    path,
		Version: hdr.Version.String(),
		Order:   hdr.Order.String(),
		Frames:  hdr.Frames,
		Samples: hdr.Samples,
		BPS:     int(hdr.BPS),
		VScale:  hdr.VScale,
		VOffset: hdr.VOffset,
		TStart:  hdr.TStart,
		TScale:  hdr.TScale,
		Trigger: hdr.TriggerTime(),
	}
}

func (c *Capture) scan(rows *sql.Rows) error {
	return rows.Scan(
		&c.ID, &c.Path, &c.Version, &c.Order,
		&c.Frames, &c.Samples, &c.BPS,
		&c.VScale, &c.VOffset, &c.TStart, &c.TScale,
		&c.Trigger,
	)
}
