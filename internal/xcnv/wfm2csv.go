// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"
	"log"

	"go-hep.org/x/hep/csvutil"

	"github.com/go-tek/scope/wfm"
)

// WFM2CSV writes a decoded capture to tbl, one row per sample:
// frame index, sample time (s), sample value (V).
func WFM2CSV(tbl *csvutil.Table, w *wfm.WFM, msg *log.Logger) error {
	err := tbl.WriteHeader(fmt.Sprintf("# frame%[1]ctime (s)%[1]cvolts (V)\n", tbl.Writer.Comma))
	if err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}

	for i, rec := range w.Records {
		msg.Printf("converting frame %d (%d samples)...", i, len(rec.Y))
		for k := range rec.Y {
			err = tbl.WriteRow(int64(i), rec.X[k], rec.Y[k])
			if err != nil {
				return fmt.Errorf("could not write frame %d, sample %d: %w", i, k, err)
			}
		}
	}
	return nil
}
