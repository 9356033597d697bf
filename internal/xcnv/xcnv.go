// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert WFM captures to other formats.
package xcnv // import "github.com/go-tek/scope/internal/xcnv"
