// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

import "errors"

// Error kinds returned by the dynamic region and attribute-change APIs (see
// spec §7). Static-path misuse (add_region after init, pool exhaustion
// during the initial build) is a programmer error and panics instead, it
// never reaches these values.
var (
	// ErrInvalid indicates malformed input: misaligned address/size/
	// granularity, zero size, an illegal attribute combination, or an
	// unknown region passed to RemoveDynamicRegion.
	ErrInvalid = errors.New("xlat: invalid region")

	// ErrRange indicates the region overflows its address space or
	// exceeds the context's configured PA/VA ceiling.
	ErrRange = errors.New("xlat: address out of range")

	// ErrNoMemory indicates the region list is full or the sub-table
	// pool is exhausted.
	ErrNoMemory = errors.New("xlat: out of memory")

	// ErrOverlap indicates the region conflicts with an existing one
	// under the overlap rules of §4.2.
	ErrOverlap = errors.New("xlat: region overlap")

	// ErrNotPermitted indicates an attempt to remove a static region, or
	// add a dynamic region before initialization.
	ErrNotPermitted = errors.New("xlat: operation not permitted")
)
