// ARMv8-A AArch64 stage-1 translation table engine
// https://github.com/usbarmory/xlattables
//
// Copyright (c) The xlattables Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package xlat

// AddDynamicRegion adds r at runtime, after Init (spec §4.2/§4.4). On
// success the new mapping is published with a single store barrier; TLB
// invalidation is unnecessary because only INVALID entries were
// replaced, and hardware never caches those. On mapper failure (pool
// exhaustion), the partially built mapping is torn down with the
// unmapper and the region is removed from the list before returning
// ErrNoMemory.
func (c *Context) AddDynamicRegion(r Region) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return ErrNotPermitted
	}

	r.Attr.Dynamic = true

	idx, err := c.insertRegion(r)
	if err != nil {
		return err
	}

	last := c.mapRegion(r, 0, c.baseTable, c.baseCount, c.baseLevel)

	if last != r.VA+r.Size-1 {
		c.unmapRegion(r, 0, c.baseTable, c.baseCount, c.baseLevel)
		c.removeRegionAt(idx)
		return ErrNoMemory
	}

	c.arch.StoreBarrier()

	return nil
}

// RemoveDynamicRegion removes the dynamic region identified by (va,
// size) (spec §4.5). Only a region added via AddDynamicRegion may be
// removed; attempting to remove a static region returns ErrNotPermitted,
// and an unknown (va, size) pair returns ErrInvalid.
func (c *Context) RemoveDynamicRegion(va, size uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return ErrNotPermitted
	}

	idx, err := c.findRegion(va, size)
	if err != nil {
		return err
	}

	r := c.regions[idx]

	if !r.Attr.Dynamic {
		return ErrNotPermitted
	}

	c.unmapRegion(r, 0, c.baseTable, c.baseCount, c.baseLevel)
	c.arch.TLBISync()

	c.removeRegionAt(idx)

	return nil
}
